package chart

import (
	"testing"

	"pricewatch/internal/domain"
)

func effectiveSeries(prices ...int64) []domain.EffectiveRecord {
	out := make([]domain.EffectiveRecord, 0, len(prices))
	for _, p := range prices {
		out = append(out, domain.EffectiveRecord{ListedPrice: p, EffectivePrice: p})
	}
	return out
}

func TestPlanAxis_Empty(t *testing.T) {
	if _, ok := PlanAxis(nil); ok {
		t.Error("expected ok=false for empty series")
	}
}

func TestPlanAxis_Example(t *testing.T) {
	// Flat series at 100000: min = floor(90000/1000)*1000, max = ceil(110000/1000)*1000.
	axis, ok := PlanAxis(effectiveSeries(100000, 100000))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if axis.Min != 90000 {
		t.Errorf("expected Min 90000, got %d", axis.Min)
	}
	if axis.Max != 110000 {
		t.Errorf("expected Max 110000, got %d", axis.Max)
	}
	if axis.TickCount != 21 {
		t.Errorf("expected 21 ticks, got %d", axis.TickCount)
	}
	if axis.Highest != 100000 || axis.Lowest != 100000 {
		t.Errorf("unexpected reference values: %d, %d", axis.Highest, axis.Lowest)
	}
}

func TestPlanAxis_BoundsContainSeries(t *testing.T) {
	cases := [][]int64{
		{100000, 120000, 95000},
		{999, 1001},
		{1, 2, 3},
		{250000},
	}

	for _, prices := range cases {
		axis, ok := PlanAxis(effectiveSeries(prices...))
		if !ok {
			t.Fatalf("%v: expected ok=true", prices)
		}
		if axis.Min > axis.Lowest {
			t.Errorf("%v: Min %d above Lowest %d", prices, axis.Min, axis.Lowest)
		}
		if axis.Max < axis.Highest {
			t.Errorf("%v: Max %d below Highest %d", prices, axis.Max, axis.Highest)
		}
		if axis.Max <= axis.Min {
			t.Errorf("%v: degenerate domain [%d,%d]", prices, axis.Min, axis.Max)
		}
	}
}

func TestPlanAxis_FlatZeroSeries(t *testing.T) {
	// Both padded bounds quantize to 0; the span must still be forced open.
	axis, ok := PlanAxis(effectiveSeries(0, 0))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if axis.Max <= axis.Min {
		t.Errorf("expected forced span, got [%d,%d]", axis.Min, axis.Max)
	}
	if axis.Max-axis.Min != quantStep {
		t.Errorf("expected one quantization step, got %d", axis.Max-axis.Min)
	}
}

func TestPlanAxis_FlatSmallSeries(t *testing.T) {
	// 500*0.9=450 -> floor 0; 500*1.1=550 -> ceil 1000.
	axis, ok := PlanAxis(effectiveSeries(500))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if axis.Min != 0 || axis.Max != 1000 {
		t.Errorf("expected [0,1000], got [%d,%d]", axis.Min, axis.Max)
	}
	if axis.TickCount != 2 {
		t.Errorf("expected 2 ticks, got %d", axis.TickCount)
	}
}

func TestPlanAxis_WidthHints(t *testing.T) {
	// "120,000" has 7 grouped characters.
	axis, ok := PlanAxis(effectiveSeries(120000, 95000))
	if !ok {
		t.Fatal("expected ok=true")
	}
	if want := 7*perDigitWidth + widthPadding; axis.Width != want {
		t.Errorf("expected width %d, got %d", want, axis.Width)
	}
	// Right margin uses the longer of "120,000" and "95,000".
	if want := 7*perDigitWidth + widthPadding; axis.RightMargin != want {
		t.Errorf("expected right margin %d, got %d", want, axis.RightMargin)
	}
}
