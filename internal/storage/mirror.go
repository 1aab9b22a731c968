package storage

import (
	"context"
	"errors"
	"log"
	"time"

	"pricewatch/internal/domain"
)

// MirroredHistoryStore serves reads from a primary store and copies
// writes to a secondary analytics store. Secondary failures are logged,
// not returned; the analytics copy is best effort and duplicates there
// are ignored since the primary already enforces uniqueness.
type MirroredHistoryStore struct {
	primary   PriceHistoryStore
	secondary PriceHistoryStore
	logger    *log.Logger
}

// NewMirroredHistoryStore wraps primary with write mirroring to secondary.
func NewMirroredHistoryStore(primary, secondary PriceHistoryStore, logger *log.Logger) *MirroredHistoryStore {
	if logger == nil {
		logger = log.Default()
	}
	return &MirroredHistoryStore{primary: primary, secondary: secondary, logger: logger}
}

// Compile-time interface check.
var _ PriceHistoryStore = (*MirroredHistoryStore)(nil)

func (m *MirroredHistoryStore) Insert(ctx context.Context, r *domain.PriceRecord) error {
	if err := m.primary.Insert(ctx, r); err != nil {
		return err
	}
	if err := m.secondary.Insert(ctx, r); err != nil && !errors.Is(err, ErrDuplicateKey) {
		m.logger.Printf("mirror insert product %d: %v", r.ProductID, err)
	}
	return nil
}

func (m *MirroredHistoryStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if err := m.primary.InsertBulk(ctx, records); err != nil {
		return err
	}
	if err := m.secondary.InsertBulk(ctx, records); err != nil && !errors.Is(err, ErrDuplicateKey) {
		m.logger.Printf("mirror bulk insert %d records: %v", len(records), err)
	}
	return nil
}

func (m *MirroredHistoryStore) GetByProductID(ctx context.Context, productID int64) ([]*domain.PriceRecord, error) {
	return m.primary.GetByProductID(ctx, productID)
}

func (m *MirroredHistoryStore) GetByDateRange(ctx context.Context, productID int64, from, to *time.Time) ([]*domain.PriceRecord, error) {
	return m.primary.GetByDateRange(ctx, productID, from, to)
}

func (m *MirroredHistoryStore) GetLatest(ctx context.Context, productID int64) (*domain.PriceRecord, error) {
	return m.primary.GetLatest(ctx, productID)
}

func (m *MirroredHistoryStore) AllTimeMinEffective(ctx context.Context, productID int64) (int64, error) {
	return m.primary.AllTimeMinEffective(ctx, productID)
}
