// Package window defines the selectable time windows over a price series
// and the date arithmetic behind them.
package window

import (
	"time"

	"pricewatch/internal/domain"
)

// Window names a display time range over the price series.
type Window string

// Supported windows, in display order.
const (
	OneMonth    Window = "1M"
	ThreeMonths Window = "3M"
	SixMonths   Window = "6M"
	OneYear     Window = "1Y"
	All         Window = "ALL"
)

// Ordered lists all windows in display order.
var Ordered = []Window{OneMonth, ThreeMonths, SixMonths, OneYear, All}

// monthOffsets maps each bounded window to its month offset.
var monthOffsets = map[Window]int{
	OneMonth:    1,
	ThreeMonths: 3,
	SixMonths:   6,
	OneYear:     12,
}

// Months returns the month offset of a bounded window.
// ok is false for All and for unknown windows.
func (w Window) Months() (int, bool) {
	m, ok := monthOffsets[w]
	return m, ok
}

// Valid reports whether w is one of the supported windows.
func (w Window) Valid() bool {
	if w == All {
		return true
	}
	_, ok := monthOffsets[w]
	return ok
}

// Bounds is the date range a window selection requests from the backend.
// From is nil for the unbounded All window; To is always the current date.
type Bounds struct {
	From *time.Time
	To   time.Time
}

// Policy decides window selectability and request bounds against an
// injected clock.
type Policy struct {
	clock domain.Clock
}

// NewPolicy creates a Policy reading the current date from clock.
func NewPolicy(clock domain.Clock) *Policy {
	return &Policy{clock: clock}
}

// Threshold returns today minus the window's month offset, at midnight.
// ok is false for the unbounded All window.
func (p *Policy) Threshold(w Window) (time.Time, bool) {
	months, ok := w.Months()
	if !ok {
		return time.Time{}, false
	}
	today := domain.DateOf(p.clock())
	return today.AddDate(0, -months, 0), true
}

// Selectable reports whether w can be selected given the earliest known
// record date. All is always selectable; a bounded window requires the
// earliest record to be on or before its threshold, so hasRecords=false
// disables every bounded window.
func (p *Policy) Selectable(w Window, earliest time.Time, hasRecords bool) bool {
	if w == All {
		return true
	}
	if !hasRecords {
		return false
	}
	threshold, ok := p.Threshold(w)
	if !ok {
		return false
	}
	return !domain.DateOf(earliest).After(threshold)
}

// BoundsFor computes the fetch bounds for a window selection.
func (p *Policy) BoundsFor(w Window) Bounds {
	today := domain.DateOf(p.clock())
	threshold, ok := p.Threshold(w)
	if !ok {
		return Bounds{To: today}
	}
	return Bounds{From: &threshold, To: today}
}
