package pricing

import (
	"errors"
	"testing"
	"time"

	"pricewatch/internal/domain"
)

func TestEffectivePrice_NoDiscount(t *testing.T) {
	got, err := EffectivePrice(100000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 100000 {
		t.Errorf("expected 100000, got %d", got)
	}
}

func TestEffectivePrice_TwentyPercent(t *testing.T) {
	got, err := EffectivePrice(200000, 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 160000 {
		t.Errorf("expected 160000, got %d", got)
	}
}

func TestEffectivePrice_RoundsHalfUp(t *testing.T) {
	// 333 * 85 / 100 = 283.05 -> 283; 333 * 75 / 100 = 249.75 -> 250
	got, err := EffectivePrice(333, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 283 {
		t.Errorf("expected 283, got %d", got)
	}

	got, err = EffectivePrice(333, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 250 {
		t.Errorf("expected 250, got %d", got)
	}

	// exact half: 150 * 99 / 100 = 148.5 -> 149 (away from zero)
	got, err = EffectivePrice(150, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 149 {
		t.Errorf("expected 149, got %d", got)
	}
}

func TestEffectivePrice_FullDiscount(t *testing.T) {
	got, err := EffectivePrice(100000, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0, got %d", got)
	}
}

func TestEffectivePrice_InvalidDiscount(t *testing.T) {
	for _, pct := range []int{-1, 101, 1000} {
		_, err := EffectivePrice(100000, pct)
		if !errors.Is(err, ErrInvalidDiscount) {
			t.Errorf("discount %d: expected ErrInvalidDiscount, got %v", pct, err)
		}
	}
}

func TestEffectivePrice_Bounds(t *testing.T) {
	// 0 <= effective <= listed holds across the whole discount domain.
	for _, listed := range []int64{0, 1, 999, 100000, 123456789} {
		for pct := 0; pct <= 100; pct++ {
			got, err := EffectivePrice(listed, pct)
			if err != nil {
				t.Fatalf("listed=%d pct=%d: %v", listed, pct, err)
			}
			if got < 0 || got > listed {
				t.Errorf("listed=%d pct=%d: effective %d out of [0,%d]", listed, pct, got, listed)
			}
			if pct == 0 && got != listed {
				t.Errorf("listed=%d pct=0: expected identity, got %d", listed, got)
			}
		}
	}
}

func TestEffectiveAll(t *testing.T) {
	day := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []domain.PriceRecord{
		{Price: 200000, DiscountPercent: 20, RecordDate: day},
		{Price: 100000, DiscountPercent: 0, RecordDate: day.AddDate(0, 0, 1)},
	}

	out, err := EffectiveAll(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].EffectivePrice != 160000 {
		t.Errorf("expected 160000, got %d", out[0].EffectivePrice)
	}
	if out[1].EffectivePrice != 100000 {
		t.Errorf("expected 100000, got %d", out[1].EffectivePrice)
	}
}

func TestEffectiveAll_Empty(t *testing.T) {
	out, err := EffectiveAll(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil, got %v", out)
	}
}

func TestEffectiveAll_PropagatesInvalidDiscount(t *testing.T) {
	records := []domain.PriceRecord{
		{Price: 100000, DiscountPercent: 120},
	}
	_, err := EffectiveAll(records)
	if !errors.Is(err, ErrInvalidDiscount) {
		t.Errorf("expected ErrInvalidDiscount, got %v", err)
	}
}
