package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceHistoryStore_InsertBulkAndGet(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	records := []*domain.PriceRecord{
		{ProductID: 1, Price: 100000, DiscountPercent: 0, RecordDate: day(2025, 6, 1)},
		{ProductID: 1, Price: 120000, DiscountPercent: 10, RecordDate: day(2025, 6, 2)},
		{ProductID: 2, Price: 50000, DiscountPercent: 0, RecordDate: day(2025, 6, 1)},
	}

	if err := store.InsertBulk(ctx, records); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByProductID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByProductID failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 records, got %d", len(result))
	}
	// Newest first, matching the backend delivery order.
	if !result[0].RecordDate.After(result[1].RecordDate) {
		t.Error("expected newest-first ordering")
	}
}

func TestPriceHistoryStore_DuplicateDate(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	r := &domain.PriceRecord{ProductID: 1, Price: 100000, RecordDate: day(2025, 6, 1)}
	if err := store.Insert(ctx, r); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err := store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 90000, RecordDate: day(2025, 6, 1)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestPriceHistoryStore_IntraBatchDuplicate(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	records := []*domain.PriceRecord{
		{ProductID: 1, Price: 100000, RecordDate: day(2025, 6, 1)},
		{ProductID: 1, Price: 110000, RecordDate: day(2025, 6, 1)}, // duplicate date
	}

	err := store.InsertBulk(ctx, records)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}

	// Verify nothing was inserted.
	result, _ := store.GetByProductID(ctx, 1)
	if len(result) != 0 {
		t.Errorf("expected 0 records (rollback), got %d", len(result))
	}
}

func TestPriceHistoryStore_InvalidDiscountRejected(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	err := store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 100, DiscountPercent: 150, RecordDate: day(2025, 6, 1)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPriceHistoryStore_NegativePriceRejected(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	err := store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: -1, RecordDate: day(2025, 6, 1)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPriceHistoryStore_GetByDateRange(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	for d := 1; d <= 10; d++ {
		_ = store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 100000, RecordDate: day(2025, 6, d)})
	}

	from := day(2025, 6, 3)
	to := day(2025, 6, 5)

	result, err := store.GetByDateRange(ctx, 1, &from, &to)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 records, got %d", len(result))
	}

	// Open-ended bounds.
	result, _ = store.GetByDateRange(ctx, 1, &from, nil)
	if len(result) != 8 {
		t.Errorf("expected 8 records from 6/3, got %d", len(result))
	}
	result, _ = store.GetByDateRange(ctx, 1, nil, &to)
	if len(result) != 5 {
		t.Errorf("expected 5 records up to 6/5, got %d", len(result))
	}
	result, _ = store.GetByDateRange(ctx, 1, nil, nil)
	if len(result) != 10 {
		t.Errorf("expected all 10 records, got %d", len(result))
	}
}

func TestPriceHistoryStore_GetLatest(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	if _, err := store.GetLatest(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 100000, RecordDate: day(2025, 6, 1)})
	_ = store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 110000, RecordDate: day(2025, 6, 5)})

	latest, err := store.GetLatest(ctx, 1)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if !latest.RecordDate.Equal(day(2025, 6, 5)) {
		t.Errorf("expected 2025-06-05, got %v", latest.RecordDate)
	}
}

func TestPriceHistoryStore_AllTimeMinEffective(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	if _, err := store.AllTimeMinEffective(ctx, 1); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 100000, DiscountPercent: 0, RecordDate: day(2025, 6, 1)})
	_ = store.Insert(ctx, &domain.PriceRecord{ProductID: 1, Price: 120000, DiscountPercent: 30, RecordDate: day(2025, 6, 2)})

	min, err := store.AllTimeMinEffective(ctx, 1)
	if err != nil {
		t.Fatalf("AllTimeMinEffective failed: %v", err)
	}
	// 120000 at 30% off = 84000, below the listed 100000.
	if min != 84000 {
		t.Errorf("expected 84000, got %d", min)
	}
}
