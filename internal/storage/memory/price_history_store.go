package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/pricing"
	"pricewatch/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string]*domain.PriceRecord // keyed by (product_id, record_date)
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string]*domain.PriceRecord),
	}
}

var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// recordKey generates a unique key for a price record.
func recordKey(productID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", productID, domain.DateOf(date).Format("2006-01-02"))
}

func validRecord(r *domain.PriceRecord) bool {
	return r != nil && r.ProductID != 0 && r.Price >= 0 &&
		r.DiscountPercent >= 0 && r.DiscountPercent <= 100 &&
		!r.RecordDate.IsZero()
}

// Insert adds one record. Returns ErrDuplicateKey if the product already
// has a record for that date.
func (s *PriceHistoryStore) Insert(ctx context.Context, r *domain.PriceRecord) error {
	return s.InsertBulk(ctx, []*domain.PriceRecord{r})
}

// InsertBulk adds multiple records. Fails the whole batch on any duplicate.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// First pass: validate and detect duplicates, existing and intra-batch.
	batchKeys := make(map[string]struct{}, len(records))
	for _, r := range records {
		if !validRecord(r) {
			return storage.ErrInvalidInput
		}
		key := recordKey(r.ProductID, r.RecordDate)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all.
	for _, r := range records {
		recordCopy := *r
		recordCopy.RecordDate = domain.DateOf(r.RecordDate)
		s.data[recordKey(r.ProductID, r.RecordDate)] = &recordCopy
	}
	return nil
}

// GetByProductID retrieves all records for a product, newest first.
func (s *PriceHistoryStore) GetByProductID(_ context.Context, productID int64) ([]*domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceRecord
	for _, r := range s.data {
		if r.ProductID == productID {
			recordCopy := *r
			result = append(result, &recordCopy)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

// GetByDateRange retrieves records within the bounds, newest first.
func (s *PriceHistoryStore) GetByDateRange(_ context.Context, productID int64, from, to *time.Time) ([]*domain.PriceRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceRecord
	for _, r := range s.data {
		if r.ProductID != productID {
			continue
		}
		if from != nil && r.RecordDate.Before(domain.DateOf(*from)) {
			continue
		}
		if to != nil && r.RecordDate.After(domain.DateOf(*to)) {
			continue
		}
		recordCopy := *r
		result = append(result, &recordCopy)
	}
	sortNewestFirst(result)
	return result, nil
}

// GetLatest retrieves the most recent record for a product.
func (s *PriceHistoryStore) GetLatest(ctx context.Context, productID int64) (*domain.PriceRecord, error) {
	records, err := s.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// AllTimeMinEffective returns the lowest discounted price ever recorded.
func (s *PriceHistoryStore) AllTimeMinEffective(_ context.Context, productID int64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var min int64
	found := false
	for _, r := range s.data {
		if r.ProductID != productID {
			continue
		}
		effective, err := pricing.EffectivePrice(r.Price, r.DiscountPercent)
		if err != nil {
			return 0, storage.ErrInvalidInput
		}
		if !found || effective < min {
			min = effective
			found = true
		}
	}
	if !found {
		return 0, storage.ErrNotFound
	}
	return min, nil
}

func sortNewestFirst(records []*domain.PriceRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].RecordDate.After(records[j].RecordDate)
	})
}
