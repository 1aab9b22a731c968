// Package history turns raw price-history records into the ordered,
// gap-free series the chart pipeline consumes.
package history

import (
	"sort"
	"time"

	"pricewatch/internal/domain"
)

// Normalize sorts records ascending by date and collapses duplicate dates,
// keeping the last record by arrival order. The result ends on the clock's
// current date unless the data runs past it (see ExtendToToday) and never
// has fewer than two points unless the input is empty (see DuplicateSingle).
//
// Normalize is idempotent: feeding its output back in returns it unchanged.
// An empty input yields an empty series; callers treat that as "no chart".
func Normalize(records []domain.PriceRecord, clock domain.Clock) []domain.PriceRecord {
	if len(records) == 0 {
		return nil
	}

	// Last arrival wins per date, regardless of value.
	byDate := make(map[time.Time]domain.PriceRecord, len(records))
	for _, r := range records {
		r.RecordDate = domain.DateOf(r.RecordDate)
		byDate[r.RecordDate] = r
	}

	out := make([]domain.PriceRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordDate.Before(out[j].RecordDate)
	})

	out = ExtendToToday(out, clock)
	return DuplicateSingle(out)
}

// ExtendToToday appends a synthetic record for the current date when the
// series ends before it. The synthetic record copies the most recent price
// and discount: the price is assumed to have held steady since the last
// observation, so the rendered line reaches "today". A series already
// ending on or after today is returned unchanged; appending behind a
// future-dated record would break the ascending order.
func ExtendToToday(sorted []domain.PriceRecord, clock domain.Clock) []domain.PriceRecord {
	if len(sorted) == 0 {
		return sorted
	}

	today := domain.DateOf(clock())
	last := sorted[len(sorted)-1]
	if !last.RecordDate.Before(today) {
		return sorted
	}

	synthetic := last
	synthetic.RecordDate = today
	return append(sorted, synthetic)
}

// DuplicateSingle turns a one-point series into two identical points so the
// chart surface can draw a flat segment. A single point cannot be rendered
// as a line.
func DuplicateSingle(series []domain.PriceRecord) []domain.PriceRecord {
	if len(series) != 1 {
		return series
	}
	return []domain.PriceRecord{series[0], series[0]}
}

// EarliestDate returns the first record date of a normalized series.
// ok is false when the series is empty.
func EarliestDate(series []domain.PriceRecord) (time.Time, bool) {
	if len(series) == 0 {
		return time.Time{}, false
	}
	return series[0].RecordDate, true
}
