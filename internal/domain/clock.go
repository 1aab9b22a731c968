package domain

import "time"

// Clock supplies the current time. Components that reason about "today"
// take a Clock instead of reading the wall clock so tests can pin the date.
type Clock func() time.Time

// SystemClock reads the wall clock.
func SystemClock() time.Time {
	return time.Now()
}

// FixedClock returns a Clock pinned to t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}
