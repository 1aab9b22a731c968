package clickhouse

import (
	"context"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
// The MergeTree engine does not enforce uniqueness, so duplicate dates
// are rejected with explicit checks before insert.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert adds one record. Returns ErrDuplicateKey if the product already
// has a record for that date.
func (s *PriceHistoryStore) Insert(ctx context.Context, r *domain.PriceRecord) error {
	return s.InsertBulk(ctx, []*domain.PriceRecord{r})
}

// InsertBulk adds multiple records. Fails entire batch on duplicate
// (product_id, record_date).
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	for _, r := range records {
		if err := validRecord(r); err != nil {
			return err
		}
	}

	// Check for intra-batch duplicates
	type key struct {
		productID  int64
		recordDate time.Time
	}
	seen := make(map[key]struct{})
	for _, r := range records {
		k := key{r.ProductID, domain.DateOf(r.RecordDate)}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// Check for duplicates against existing DB rows
	for _, r := range records {
		exists, err := s.exists(ctx, r.ProductID, r.RecordDate)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			product_id, price, discount, record_date
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range records {
		err = batch.Append(
			uint64(r.ProductID), r.Price, uint8(r.DiscountPercent),
			domain.DateOf(r.RecordDate),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByProductID retrieves all records for a product, newest first.
func (s *PriceHistoryStore) GetByProductID(ctx context.Context, productID int64) ([]*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = ?
		ORDER BY record_date DESC
	`

	rows, err := s.conn.Query(ctx, query, uint64(productID))
	if err != nil {
		return nil, fmt.Errorf("query by product id: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// GetByDateRange retrieves records within [from, to], newest first.
// A nil bound leaves that side open.
func (s *PriceHistoryStore) GetByDateRange(ctx context.Context, productID int64, from, to *time.Time) ([]*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = ?
	`
	args := []any{uint64(productID)}

	if from != nil {
		query += " AND record_date >= ?"
		args = append(args, domain.DateOf(*from))
	}
	if to != nil {
		query += " AND record_date <= ?"
		args = append(args, domain.DateOf(*to))
	}
	query += " ORDER BY record_date DESC"

	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanPriceRecords(rows)
}

// GetLatest retrieves the most recent record for a product.
func (s *PriceHistoryStore) GetLatest(ctx context.Context, productID int64) (*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = ?
		ORDER BY record_date DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, uint64(productID))
	if err != nil {
		return nil, fmt.Errorf("query latest: %w", err)
	}
	defer rows.Close()

	records, err := scanPriceRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// AllTimeMinEffective returns the lowest discounted price ever recorded.
func (s *PriceHistoryStore) AllTimeMinEffective(ctx context.Context, productID int64) (int64, error) {
	query := `
		SELECT count(*), min(intDiv(price * (100 - discount) + 50, 100))
		FROM price_history
		WHERE product_id = ?
	`

	var count uint64
	var min int64
	if err := s.conn.QueryRow(ctx, query, uint64(productID)).Scan(&count, &min); err != nil {
		return 0, fmt.Errorf("query all-time min: %w", err)
	}
	if count == 0 {
		return 0, storage.ErrNotFound
	}
	return min, nil
}

// exists checks if a record for the given product and date exists.
func (s *PriceHistoryStore) exists(ctx context.Context, productID int64, date time.Time) (bool, error) {
	query := `
		SELECT count(*) FROM price_history
		WHERE product_id = ? AND record_date = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, uint64(productID), domain.DateOf(date)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func validRecord(r *domain.PriceRecord) error {
	if r == nil || r.ProductID == 0 || r.Price < 0 ||
		r.DiscountPercent < 0 || r.DiscountPercent > 100 || r.RecordDate.IsZero() {
		return storage.ErrInvalidInput
	}
	return nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

// scanPriceRecords scans multiple rows.
func scanPriceRecords(rows chRows) ([]*domain.PriceRecord, error) {
	var records []*domain.PriceRecord

	for rows.Next() {
		var r domain.PriceRecord
		var productID uint64
		var discount uint8

		if err := rows.Scan(&productID, &r.Price, &discount, &r.RecordDate); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		r.ProductID = int64(productID)
		r.DiscountPercent = int(discount)
		r.RecordDate = domain.DateOf(r.RecordDate)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return records, nil
}
