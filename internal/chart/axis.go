// Package chart builds the renderable chart specification: value points,
// axis domain, reference markers, and layout hints. Everything here is a
// pure transform; the pixel rendering lives elsewhere.
package chart

import (
	"math"

	"github.com/dustin/go-humanize"

	"pricewatch/internal/domain"
)

// Axis layout constants. Bounds are padded 10% outward and quantized to
// the nearest quantStep so gridlines land on round numbers; width hints
// reserve perDigitWidth pixels per grouped digit plus widthPadding.
const (
	quantStep     = 1000
	paddingFactor = 0.1
	perDigitWidth = 10
	widthPadding  = 20
)

// Axis is the planned Y-axis: quantized domain, tick count, the highest
// and lowest effective prices, and width hints for both chart edges.
type Axis struct {
	Min       int64
	Max       int64
	TickCount int
	Highest   int64
	Lowest    int64
	// Width reserves space for the left tick labels, derived from the
	// grouped digit length of the highest price.
	Width int
	// RightMargin reserves space for the reference-line labels on the
	// opposite edge, derived from the longer of the two.
	RightMargin int
}

// PlanAxis derives the Y-axis from an effective-price series.
// ok is false for an empty series. The domain always satisfies
// Min <= Lowest, Max >= Highest, and Max > Min even for a flat series.
func PlanAxis(series []domain.EffectiveRecord) (Axis, bool) {
	if len(series) == 0 {
		return Axis{}, false
	}

	highest := series[0].EffectivePrice
	lowest := series[0].EffectivePrice
	for _, r := range series[1:] {
		if r.EffectivePrice > highest {
			highest = r.EffectivePrice
		}
		if r.EffectivePrice < lowest {
			lowest = r.EffectivePrice
		}
	}

	rawMin := float64(lowest) * (1 - paddingFactor)
	rawMax := float64(highest) * (1 + paddingFactor)
	min := int64(math.Floor(rawMin/quantStep)) * quantStep
	max := int64(math.Ceil(rawMax/quantStep)) * quantStep
	if max == min {
		// Flat series at a quantization boundary still needs a span.
		max = min + quantStep
	}

	return Axis{
		Min:         min,
		Max:         max,
		TickCount:   int((max-min)/quantStep) + 1,
		Highest:     highest,
		Lowest:      lowest,
		Width:       len(groupDigits(highest))*perDigitWidth + widthPadding,
		RightMargin: maxInt(len(groupDigits(highest)), len(groupDigits(lowest)))*perDigitWidth + widthPadding,
	}, true
}

// groupDigits formats a price with thousands separators for display.
func groupDigits(v int64) string {
	return humanize.Comma(v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
