package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// StoreSource fetches price history from a PriceHistoryStore.
//
// A bounded query that matches nothing falls back to the product's
// latest record, so a chart for a sparsely tracked product still shows
// its current price instead of going blank.
type StoreSource struct {
	store storage.PriceHistoryStore
}

// NewStoreSource creates a StoreSource backed by the given store.
func NewStoreSource(store storage.PriceHistoryStore) *StoreSource {
	return &StoreSource{store: store}
}

// FetchHistory returns records within [from, to]. Nil bounds leave that
// side open.
func (s *StoreSource) FetchHistory(ctx context.Context, productID int64, from, to *time.Time) ([]domain.PriceRecord, error) {
	records, err := s.store.GetByDateRange(ctx, productID, from, to)
	if err != nil {
		return nil, fmt.Errorf("fetch price history: %w", err)
	}

	if len(records) == 0 && (from != nil || to != nil) {
		latest, err := s.store.GetLatest(ctx, productID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("fetch latest price record: %w", err)
		}
		return []domain.PriceRecord{*latest}, nil
	}

	out := make([]domain.PriceRecord, len(records))
	for i, r := range records {
		out[i] = *r
	}
	return out, nil
}
