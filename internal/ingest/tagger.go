package ingest

import (
	"context"
	"errors"
	"fmt"

	"pricewatch/internal/domain"
	"pricewatch/internal/pricing"
	"pricewatch/internal/storage"
)

// goodTagMarginPercent is how far above the all-time minimum an
// effective price may sit and still count as a good deal.
const goodTagMarginPercent = 5

// Tagger maintains deal tags on products after each import.
type Tagger struct {
	products storage.ProductStore
	history  storage.PriceHistoryStore
}

// NewTagger creates a Tagger over the given stores.
func NewTagger(products storage.ProductStore, history storage.PriceHistoryStore) *Tagger {
	return &Tagger{products: products, history: history}
}

// Retag recomputes the deal tag for one product based on its latest
// record. An undiscounted product carries no tag. A discounted price at
// or below the all-time minimum is tagged best; within the margin above
// it, good.
func (t *Tagger) Retag(ctx context.Context, productID int64) error {
	latest, err := t.history.GetLatest(ctx, productID)
	if errors.Is(err, storage.ErrNotFound) {
		return t.products.SetTag(ctx, productID, domain.TagNone)
	}
	if err != nil {
		return fmt.Errorf("load latest record: %w", err)
	}

	tag, err := t.classify(ctx, latest)
	if err != nil {
		return err
	}
	if err := t.products.SetTag(ctx, productID, tag); err != nil {
		return fmt.Errorf("set tag: %w", err)
	}
	return nil
}

func (t *Tagger) classify(ctx context.Context, latest *domain.PriceRecord) (domain.Tag, error) {
	if latest.DiscountPercent == 0 {
		return domain.TagNone, nil
	}

	effective, err := pricing.EffectivePrice(latest.Price, latest.DiscountPercent)
	if err != nil {
		return domain.TagNone, fmt.Errorf("effective price: %w", err)
	}

	min, err := t.history.AllTimeMinEffective(ctx, latest.ProductID)
	if err != nil {
		return domain.TagNone, fmt.Errorf("all-time min: %w", err)
	}

	switch {
	case effective <= min:
		return domain.TagBest, nil
	case effective*100 <= min*(100+goodTagMarginPercent):
		return domain.TagGood, nil
	default:
		return domain.TagNone, nil
	}
}
