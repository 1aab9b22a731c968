// Package pricing converts listed prices and discount percentages into
// effective prices. All arithmetic is integer; no floating point drift.
package pricing

import (
	"errors"

	"pricewatch/internal/domain"
)

// ErrInvalidDiscount is returned when a discount percentage falls outside [0,100].
// Out-of-range input is a caller contract violation and is never clamped.
var ErrInvalidDiscount = errors.New("discount percent outside [0,100]")

// EffectivePrice applies discountPercent to listed and rounds half away
// from zero to the nearest whole currency unit.
func EffectivePrice(listed int64, discountPercent int) (int64, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return 0, ErrInvalidDiscount
	}

	raw := listed * int64(100-discountPercent)
	if raw >= 0 {
		return (raw + 50) / 100, nil
	}
	return (raw - 50) / 100, nil
}

// Effective derives an EffectiveRecord from a PriceRecord.
func Effective(r domain.PriceRecord) (domain.EffectiveRecord, error) {
	effective, err := EffectivePrice(r.Price, r.DiscountPercent)
	if err != nil {
		return domain.EffectiveRecord{}, err
	}
	return domain.EffectiveRecord{
		Date:            r.RecordDate,
		ListedPrice:     r.Price,
		DiscountPercent: r.DiscountPercent,
		EffectivePrice:  effective,
	}, nil
}

// EffectiveAll derives effective records for a whole series.
// Fails on the first invalid discount.
func EffectiveAll(records []domain.PriceRecord) ([]domain.EffectiveRecord, error) {
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]domain.EffectiveRecord, 0, len(records))
	for _, r := range records {
		e, err := Effective(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
