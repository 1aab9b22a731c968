package chart

import (
	"fmt"
	"time"

	"pricewatch/internal/window"
)

// PointLabel maps a record date to its X-axis label for the active window.
//
// The one-month window shows day granularity as "M/D" with no leading
// zeros. Wider windows show the three-letter month abbreviation, except
// January, which shows the two-digit year so year boundaries stay readable
// when only months are labeled. The full date stays on the point for
// tooltips and sorting.
func PointLabel(date time.Time, active window.Window) string {
	if active == window.OneMonth {
		return fmt.Sprintf("%d/%d", int(date.Month()), date.Day())
	}
	if date.Month() == time.January {
		return fmt.Sprintf("%02d", date.Year()%100)
	}
	return date.Format("Jan")
}
