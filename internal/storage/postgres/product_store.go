package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// ProductStore implements storage.ProductStore using PostgreSQL.
type ProductStore struct {
	pool *Pool
}

// NewProductStore creates a new ProductStore.
func NewProductStore(pool *Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ProductStore = (*ProductStore)(nil)

// Upsert inserts a product by SKU if absent and returns its ID.
// Descriptive fields of an existing product are refreshed; the deal tag
// is left to the tagger.
func (s *ProductStore) Upsert(ctx context.Context, p *domain.Product) (int64, error) {
	if p == nil || p.SKU == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO products (sku, name, url, image_url, description, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			image_url = EXCLUDED.image_url,
			description = EXCLUDED.description,
			category = EXCLUDED.category
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		p.SKU, p.Name, p.URL, p.ImageURL, p.Description, p.Category,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert product: %w", err)
	}
	return id, nil
}

// GetByID retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, url, image_url, description, category, tag
		FROM products
		WHERE id = $1
	`

	p, err := scanProduct(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return p, nil
}

// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
func (s *ProductStore) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `
		SELECT id, sku, name, url, image_url, description, category, tag
		FROM products
		WHERE sku = $1
	`

	p, err := scanProduct(s.pool.QueryRow(ctx, query, sku))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return p, nil
}

// List retrieves all products ordered by ID.
func (s *ProductStore) List(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, sku, name, url, image_url, description, category, tag
		FROM products
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// ListTagged retrieves tagged products (current deals) with paging.
func (s *ProductStore) ListTagged(ctx context.Context, page, limit int) ([]*domain.Product, error) {
	if page < 0 || limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	query := `
		SELECT id, sku, name, url, image_url, description, category, tag
		FROM products
		WHERE tag IS NOT NULL
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.pool.Query(ctx, query, limit, page*limit)
	if err != nil {
		return nil, fmt.Errorf("list tagged products: %w", err)
	}
	defer rows.Close()

	return scanProducts(rows)
}

// SetTag updates a product's deal tag. TagNone stores NULL.
func (s *ProductStore) SetTag(ctx context.Context, id int64, tag domain.Tag) error {
	var value any
	if tag != domain.TagNone {
		value = string(tag)
	}

	ct, err := s.pool.Exec(ctx, `UPDATE products SET tag = $1 WHERE id = $2`, value, id)
	if err != nil {
		return fmt.Errorf("set product tag: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ClearTagsExcept removes the deal tag from every product whose ID is
// not in keep.
func (s *ProductStore) ClearTagsExcept(ctx context.Context, keep []int64) error {
	if keep == nil {
		keep = []int64{}
	}

	_, err := s.pool.Exec(ctx,
		`UPDATE products SET tag = NULL WHERE tag IS NOT NULL AND NOT (id = ANY($1))`, keep)
	if err != nil {
		return fmt.Errorf("clear stale tags: %w", err)
	}
	return nil
}

// SearchSuggestions returns up to limit product names matching keyword,
// ordered by trigram similarity.
func (s *ProductStore) SearchSuggestions(ctx context.Context, keyword string, limit int) ([]string, error) {
	if keyword == "" || limit <= 0 {
		return nil, nil
	}

	query := `
		SELECT name FROM products
		WHERE name ILIKE '%' || $1 || '%' OR name % $1
		ORDER BY similarity(name, $1) DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, keyword, limit)
	if err != nil {
		return nil, fmt.Errorf("search suggestions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	var tag sql.NullString
	if err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.URL, &p.ImageURL, &p.Description, &p.Category, &tag); err != nil {
		return nil, err
	}
	if tag.Valid {
		p.Tag = domain.Tag(tag.String)
	}
	return &p, nil
}

func scanProducts(rows pgx.Rows) ([]*domain.Product, error) {
	var result []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
