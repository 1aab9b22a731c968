package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pricewatch/internal/domain"
)

// ErrMissingColumn indicates a required CSV column is absent.
var ErrMissingColumn = errors.New("ingest: missing csv column")

// Row is one parsed line of a daily price feed.
type Row struct {
	Product         domain.Product
	Price           int64
	DiscountPercent int
}

var requiredColumns = []string{"sku", "name", "price"}

// ParseRows reads a daily price feed in CSV form. The first line is a
// header; columns may appear in any order. Required: sku, name, price.
// Optional: url, image_url, description, category, discount.
func ParseRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	field := func(record []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		price, err := strconv.ParseInt(field(record, "price"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse price on line %d: %w", line, err)
		}

		discount := 0
		if raw := field(record, "discount"); raw != "" {
			discount, err = strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("parse discount on line %d: %w", line, err)
			}
		}

		rows = append(rows, Row{
			Product: domain.Product{
				SKU:         field(record, "sku"),
				Name:        field(record, "name"),
				URL:         field(record, "url"),
				ImageURL:    field(record, "image_url"),
				Description: field(record, "description"),
				Category:    field(record, "category"),
			},
			Price:           price,
			DiscountPercent: discount,
		})
	}

	return rows, nil
}
