package window

import (
	"testing"
	"time"

	"pricewatch/internal/domain"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestThreshold(t *testing.T) {
	p := NewPolicy(fixedClock)

	cases := []struct {
		window Window
		want   time.Time
	}{
		{OneMonth, day(2025, 5, 15)},
		{ThreeMonths, day(2025, 3, 15)},
		{SixMonths, day(2024, 12, 15)},
		{OneYear, day(2024, 6, 15)},
	}

	for _, tc := range cases {
		got, ok := p.Threshold(tc.window)
		if !ok {
			t.Fatalf("%s: expected ok=true", tc.window)
		}
		if !got.Equal(tc.want) {
			t.Errorf("%s: expected %v, got %v", tc.window, tc.want, got)
		}
	}

	if _, ok := p.Threshold(All); ok {
		t.Error("All has no threshold")
	}
}

func TestThreshold_Midnight(t *testing.T) {
	// Threshold must ignore the clock's time of day.
	p := NewPolicy(fixedClock)
	got, _ := p.Threshold(OneMonth)
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 {
		t.Errorf("threshold not at midnight: %v", got)
	}
}

func TestSelectable_AllAlways(t *testing.T) {
	p := NewPolicy(fixedClock)
	if !p.Selectable(All, time.Time{}, false) {
		t.Error("All must be selectable with no records")
	}
	if !p.Selectable(All, day(2025, 6, 15), true) {
		t.Error("All must be selectable with records")
	}
}

func TestSelectable_EarliestVsThreshold(t *testing.T) {
	p := NewPolicy(fixedClock)

	// 40 days of history: 1M selectable. 20 days: not.
	if !p.Selectable(OneMonth, day(2025, 5, 6), true) {
		t.Error("earliest 40 days old: 1M should be selectable")
	}
	if p.Selectable(OneMonth, day(2025, 5, 26), true) {
		t.Error("earliest 20 days old: 1M should not be selectable")
	}

	// Boundary: earliest exactly on the threshold is selectable.
	if !p.Selectable(OneMonth, day(2025, 5, 15), true) {
		t.Error("earliest on threshold should be selectable")
	}
	if p.Selectable(OneMonth, day(2025, 5, 16), true) {
		t.Error("earliest one day after threshold should not be selectable")
	}
}

func TestSelectable_NoRecordsDisablesBounded(t *testing.T) {
	p := NewPolicy(fixedClock)
	for _, w := range Ordered {
		if w == All {
			continue
		}
		if p.Selectable(w, time.Time{}, false) {
			t.Errorf("%s selectable without records", w)
		}
	}
}

func TestSelectable_Monotonic(t *testing.T) {
	p := NewPolicy(fixedClock)

	// If a window is selectable, every window with a smaller offset is too.
	for _, earliest := range []time.Time{
		day(2025, 6, 1), day(2025, 4, 1), day(2024, 12, 1), day(2023, 1, 1),
	} {
		for i := 1; i < len(Ordered)-1; i++ { // bounded windows only
			wider, narrower := Ordered[i], Ordered[i-1]
			if p.Selectable(wider, earliest, true) && !p.Selectable(narrower, earliest, true) {
				t.Errorf("earliest %v: %s selectable but %s not", earliest, wider, narrower)
			}
		}
	}
}

func TestSelectable_TimeOfDayIgnored(t *testing.T) {
	p := NewPolicy(fixedClock)
	withTime := time.Date(2025, 5, 15, 23, 59, 59, 0, time.UTC)
	if !p.Selectable(OneMonth, withTime, true) {
		t.Error("comparison must be date-only")
	}
}

func TestBoundsFor(t *testing.T) {
	p := NewPolicy(fixedClock)

	b := p.BoundsFor(ThreeMonths)
	if b.From == nil {
		t.Fatal("expected From for bounded window")
	}
	if !b.From.Equal(day(2025, 3, 15)) {
		t.Errorf("expected From 2025-03-15, got %v", b.From)
	}
	if !b.To.Equal(day(2025, 6, 15)) {
		t.Errorf("expected To 2025-06-15, got %v", b.To)
	}

	b = p.BoundsFor(All)
	if b.From != nil {
		t.Errorf("expected nil From for All, got %v", b.From)
	}
	if !b.To.Equal(day(2025, 6, 15)) {
		t.Errorf("expected To 2025-06-15, got %v", b.To)
	}
}

func TestWindowValid(t *testing.T) {
	for _, w := range Ordered {
		if !w.Valid() {
			t.Errorf("%s should be valid", w)
		}
	}
	if Window("2W").Valid() {
		t.Error("2W should not be valid")
	}
}

var _ domain.Clock = fixedClock
