// Package ingest imports daily price feeds into the catalog.
// It coordinates: fetch → parse → upsert products → insert changed records →
// retag → clear stale tags
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// ObjectFetcher retrieves a named feed object from a remote store.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// Importer imports one daily price feed per run.
type Importer struct {
	products storage.ProductStore
	history  storage.PriceHistoryStore
	tagger   *Tagger
	fetcher  ObjectFetcher

	keyPattern string
	clock      domain.Clock
	verbose    bool
}

// Options for creating Importer.
type Options struct {
	// Required stores
	ProductStore storage.ProductStore
	HistoryStore storage.PriceHistoryStore

	// Fetcher is required for ImportDate/ImportDaily. ImportFrom works
	// without one.
	Fetcher ObjectFetcher

	// KeyPattern is a time layout producing the object key for a date,
	// e.g. "prices-2006-01-02.csv".
	KeyPattern string

	Clock   domain.Clock
	Verbose bool
}

// DefaultKeyPattern names feed objects by date.
const DefaultKeyPattern = "2006-01-02.csv"

// New creates a new Importer.
func New(opts Options) *Importer {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock
	}
	pattern := opts.KeyPattern
	if pattern == "" {
		pattern = DefaultKeyPattern
	}
	return &Importer{
		products:   opts.ProductStore,
		history:    opts.HistoryStore,
		tagger:     NewTagger(opts.ProductStore, opts.HistoryStore),
		fetcher:    opts.Fetcher,
		keyPattern: pattern,
		clock:      clock,
		verbose:    opts.Verbose,
	}
}

// Report contains results from one import run.
type Report struct {
	RunID             string
	Date              time.Time
	RowsRead          int
	RecordsInserted   int
	UnchangedSkipped  int
	DuplicatesSkipped int
	Errors            []string
	Elapsed           time.Duration
}

// ImportDaily imports the feed for today according to the clock.
func (im *Importer) ImportDaily(ctx context.Context) (*Report, error) {
	return im.ImportDate(ctx, im.clock())
}

// ImportDate fetches and imports the feed for the given date.
func (im *Importer) ImportDate(ctx context.Context, date time.Time) (*Report, error) {
	if im.fetcher == nil {
		return nil, errors.New("ingest: no fetcher configured")
	}

	key := domain.DateOf(date).Format(im.keyPattern)
	im.log("Fetching feed %s", key)

	body, err := im.fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", key, err)
	}
	defer body.Close()

	return im.ImportFrom(ctx, body, date)
}

// ImportFrom imports a feed from an already opened reader, recording
// prices under the given date. Row-level failures are collected in the
// report; the run keeps going.
func (im *Importer) ImportFrom(ctx context.Context, r io.Reader, date time.Time) (*Report, error) {
	started := im.clock()
	report := &Report{
		RunID: uuid.NewString(),
		Date:  domain.DateOf(date),
	}

	rows, err := ParseRows(r)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	report.RowsRead = len(rows)
	im.log("Run %s: parsed %d rows", report.RunID, len(rows))

	// seen holds every product present in the feed, inserted row or not;
	// touched only those with a new record.
	seen := make([]int64, 0, len(rows))
	touched := make([]int64, 0, len(rows))
	for _, row := range rows {
		id, err := im.products.Upsert(ctx, &row.Product)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("sku %s: upsert product: %v", row.Product.SKU, err))
			continue
		}
		seen = append(seen, id)

		inserted, err := im.insertIfChanged(ctx, id, row, report.Date)
		if err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				report.DuplicatesSkipped++
				continue
			}
			report.Errors = append(report.Errors, fmt.Sprintf("sku %s: %v", row.Product.SKU, err))
			continue
		}
		if !inserted {
			report.UnchangedSkipped++
			continue
		}
		touched = append(touched, id)
		report.RecordsInserted++
	}

	for _, id := range touched {
		if err := im.tagger.Retag(ctx, id); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("retag product %d: %v", id, err))
		}
	}

	// A product absent from today's feed is no longer a live deal.
	if err := im.products.ClearTagsExcept(ctx, seen); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("clear stale tags: %v", err))
	}

	report.Elapsed = im.clock().Sub(started)
	im.log("Run %s: %d inserted, %d unchanged, %d duplicates, %d errors",
		report.RunID, report.RecordsInserted, report.UnchangedSkipped,
		report.DuplicatesSkipped, len(report.Errors))

	return report, nil
}

// insertIfChanged stores the row's price under date unless the product's
// latest record already carries the same price and discount. Repeat
// values need no row of their own; the series is extended to today when
// it is read back.
func (im *Importer) insertIfChanged(ctx context.Context, productID int64, row Row, date time.Time) (bool, error) {
	latest, err := im.history.GetLatest(ctx, productID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return false, fmt.Errorf("load latest record: %w", err)
	}
	if err == nil && latest.Price == row.Price && latest.DiscountPercent == row.DiscountPercent {
		return false, nil
	}

	err = im.history.Insert(ctx, &domain.PriceRecord{
		ProductID:       productID,
		Price:           row.Price,
		DiscountPercent: row.DiscountPercent,
		RecordDate:      date,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (im *Importer) log(format string, args ...any) {
	if im.verbose {
		log.Printf("[ingest] "+format, args...)
	}
}
