package storage

import (
	"context"
	"time"

	"pricewatch/internal/domain"
)

// ProductStore provides access to the products catalog.
type ProductStore interface {
	// Upsert inserts a product by SKU if absent and returns its ID.
	// An existing product keeps its ID; descriptive fields are refreshed.
	Upsert(ctx context.Context, p *domain.Product) (int64, error)

	// GetByID retrieves a product. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
	GetBySKU(ctx context.Context, sku string) (*domain.Product, error)

	// List retrieves all products ordered by ID.
	List(ctx context.Context) ([]*domain.Product, error)

	// ListTagged retrieves tagged products (current deals) with paging.
	ListTagged(ctx context.Context, page, limit int) ([]*domain.Product, error)

	// SetTag updates a product's deal tag.
	SetTag(ctx context.Context, id int64, tag domain.Tag) error

	// ClearTagsExcept removes the deal tag from every product whose ID
	// is not in keep. An empty keep clears all tags.
	ClearTagsExcept(ctx context.Context, keep []int64) error

	// SearchSuggestions returns up to limit product names matching keyword.
	SearchSuggestions(ctx context.Context, keyword string, limit int) ([]string, error)
}

// PriceHistoryStore provides access to per-product price records.
type PriceHistoryStore interface {
	// Insert adds one record. Returns ErrDuplicateKey if the product
	// already has a record for that date.
	Insert(ctx context.Context, r *domain.PriceRecord) error

	// InsertBulk adds multiple records. Fails the whole batch on any
	// duplicate (product_id, record_date).
	InsertBulk(ctx context.Context, records []*domain.PriceRecord) error

	// GetByProductID retrieves all records for a product, newest first.
	GetByProductID(ctx context.Context, productID int64) ([]*domain.PriceRecord, error)

	// GetByDateRange retrieves records within the given bounds, newest
	// first. A nil bound leaves that side open.
	GetByDateRange(ctx context.Context, productID int64, from, to *time.Time) ([]*domain.PriceRecord, error)

	// GetLatest retrieves the most recent record for a product.
	// Returns ErrNotFound when the product has no history.
	GetLatest(ctx context.Context, productID int64) (*domain.PriceRecord, error)

	// AllTimeMinEffective returns the lowest discounted price ever
	// recorded for a product. Returns ErrNotFound with no history.
	AllTimeMinEffective(ctx context.Context, productID int64) (int64, error)
}
