package selection

import (
	"testing"
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/window"
)

func record(d time.Time, price int64) domain.PriceRecord {
	return domain.PriceRecord{Price: price, RecordDate: d}
}

func TestBeginSelect_FromIdle(t *testing.T) {
	series := []domain.PriceRecord{record(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 100)}
	s := NewIdle(window.All, series)

	next, ok := s.BeginSelect(window.ThreeMonths)
	if !ok {
		t.Fatal("expected transition to be accepted")
	}
	if next.Phase != Loading {
		t.Errorf("expected Loading, got %v", next.Phase)
	}
	if next.Window != window.ThreeMonths {
		t.Errorf("expected window 3M, got %s", next.Window)
	}
	if next.PrevWindow != window.All {
		t.Errorf("expected previous window ALL, got %s", next.PrevWindow)
	}
	if len(next.Series) != 1 {
		t.Error("previous series must stay displayed while loading")
	}
}

func TestBeginSelect_SameWindowRejected(t *testing.T) {
	s := NewIdle(window.All, nil)
	next, ok := s.BeginSelect(window.All)
	if ok {
		t.Error("selecting the current window must be a no-op")
	}
	if next.Phase != Idle {
		t.Error("state must be unchanged")
	}
}

func TestBeginSelect_WhileLoadingRejected(t *testing.T) {
	s := NewIdle(window.All, nil)
	loading, _ := s.BeginSelect(window.OneMonth)

	next, ok := loading.BeginSelect(window.SixMonths)
	if ok {
		t.Error("selection while loading must be rejected, not queued")
	}
	if next.Window != window.OneMonth {
		t.Error("in-flight selection must be unchanged")
	}
}

func TestComplete_ReplacesSeriesWholesale(t *testing.T) {
	old := []domain.PriceRecord{record(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 100)}
	s := NewIdle(window.All, old)
	loading, _ := s.BeginSelect(window.OneMonth)

	fresh := []domain.PriceRecord{
		record(time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), 200),
		record(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), 210),
	}
	done := loading.Complete(fresh)

	if done.Phase != Idle {
		t.Errorf("expected Idle, got %v", done.Phase)
	}
	if done.Window != window.OneMonth {
		t.Errorf("expected 1M, got %s", done.Window)
	}
	if len(done.Series) != 2 || done.Series[0].Price != 200 {
		t.Errorf("series not replaced: %+v", done.Series)
	}
}

func TestFail_RevertsToPreviousSelection(t *testing.T) {
	old := []domain.PriceRecord{record(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), 100)}
	s := NewIdle(window.ThreeMonths, old)
	loading, _ := s.BeginSelect(window.OneYear)

	reverted := loading.Fail()
	if reverted.Phase != Idle {
		t.Errorf("expected Idle, got %v", reverted.Phase)
	}
	if reverted.Window != window.ThreeMonths {
		t.Errorf("expected revert to 3M, got %s", reverted.Window)
	}
	if len(reverted.Series) != 1 || reverted.Series[0].Price != 100 {
		t.Errorf("series not restored: %+v", reverted.Series)
	}
}
