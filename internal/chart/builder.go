package chart

import (
	"time"

	"pricewatch/internal/domain"
	"pricewatch/internal/pricing"
	"pricewatch/internal/window"
)

// Point is one chart value with its display label. Date keeps the full
// record date for tooltips; Label is what the axis shows.
type Point struct {
	Label           string    `json:"label"`
	Date            time.Time `json:"date"`
	EffectivePrice  int64     `json:"effectivePrice"`
	ListedPrice     int64     `json:"listedPrice"`
	DiscountPercent int       `json:"discountPercent"`
}

// ReferenceLine marks the highest or lowest effective price with its
// grouped display label.
type ReferenceLine struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
}

// WindowOption is one window button with its enablement flag.
type WindowOption struct {
	Window     window.Window `json:"window"`
	Selectable bool          `json:"selectable"`
}

// Spec is the complete data+layout contract handed to the rendering
// surface. It is rebuilt whole on every window change or record update,
// never mutated in place.
type Spec struct {
	Points       []Point        `json:"points"`
	YMin         int64          `json:"yMin"`
	YMax         int64          `json:"yMax"`
	TickCount    int            `json:"tickCount"`
	Highest      ReferenceLine  `json:"highest"`
	Lowest       ReferenceLine  `json:"lowest"`
	AxisWidth    int            `json:"axisWidth"`
	RightMargin  int            `json:"rightMargin"`
	ActiveWindow window.Window  `json:"activeWindow"`
	Windows      []WindowOption `json:"windows"`
}

// Build composes a normalized series into a Spec for the active window.
// Deterministic and side-effect free: identical inputs produce identical
// specs. An empty series yields a nil spec ("no chart"), not an error;
// an out-of-range discount propagates pricing.ErrInvalidDiscount.
func Build(series []domain.PriceRecord, active window.Window, windows []WindowOption) (*Spec, error) {
	effective, err := pricing.EffectiveAll(series)
	if err != nil {
		return nil, err
	}

	axis, ok := PlanAxis(effective)
	if !ok {
		return nil, nil
	}

	points := make([]Point, 0, len(effective))
	for _, r := range effective {
		points = append(points, Point{
			Label:           PointLabel(r.Date, active),
			Date:            r.Date,
			EffectivePrice:  r.EffectivePrice,
			ListedPrice:     r.ListedPrice,
			DiscountPercent: r.DiscountPercent,
		})
	}

	return &Spec{
		Points:       points,
		YMin:         axis.Min,
		YMax:         axis.Max,
		TickCount:    axis.TickCount,
		Highest:      ReferenceLine{Value: axis.Highest, Label: groupDigits(axis.Highest)},
		Lowest:       ReferenceLine{Value: axis.Lowest, Label: groupDigits(axis.Lowest)},
		AxisWidth:    axis.Width,
		RightMargin:  axis.RightMargin,
		ActiveWindow: active,
		Windows:      windows,
	}, nil
}
