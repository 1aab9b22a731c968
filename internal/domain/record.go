package domain

import "time"

// PriceRecord is one observed price for a product on a calendar day.
// Corresponds to the price_history table. Records are immutable once stored;
// a product has at most one record per record date.
type PriceRecord struct {
	ProductID       int64
	Price           int64     // listed price in whole currency units
	DiscountPercent int       // integer percentage in [0,100]
	RecordDate      time.Time // date only, normalized to midnight
}

// EffectiveRecord is a PriceRecord with the discount applied.
type EffectiveRecord struct {
	Date            time.Time
	ListedPrice     int64
	DiscountPercent int
	EffectivePrice  int64
}

// DateOf truncates t to midnight in its own location.
// All record-date and window comparisons are date-only.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDate reports whether a and b fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return DateOf(a).Equal(DateOf(b))
}
