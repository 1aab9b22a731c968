package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using PostgreSQL.
type PriceHistoryStore struct {
	pool *Pool
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(pool *Pool) *PriceHistoryStore {
	return &PriceHistoryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// Insert adds one record. Returns ErrDuplicateKey if the product already
// has a record for that date.
func (s *PriceHistoryStore) Insert(ctx context.Context, r *domain.PriceRecord) error {
	if !validRecord(r) {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO price_history (product_id, price, discount, record_date)
		VALUES ($1, $2, $3, $4)
	`

	_, err := s.pool.Exec(ctx, query, r.ProductID, r.Price, r.DiscountPercent, domain.DateOf(r.RecordDate))
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert price record: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records in one transaction. Fails the whole
// batch on any duplicate (product_id, record_date).
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, records []*domain.PriceRecord) error {
	if len(records) == 0 {
		return nil
	}
	for _, r := range records {
		if !validRecord(r) {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO price_history (product_id, price, discount, record_date)
		VALUES ($1, $2, $3, $4)
	`
	for _, r := range records {
		if _, err := tx.Exec(ctx, query, r.ProductID, r.Price, r.DiscountPercent, domain.DateOf(r.RecordDate)); err != nil {
			if isDuplicateKeyError(err) {
				return storage.ErrDuplicateKey
			}
			return fmt.Errorf("bulk insert price record: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bulk insert: %w", err)
	}
	return nil
}

// GetByProductID retrieves all records for a product, newest first.
func (s *PriceHistoryStore) GetByProductID(ctx context.Context, productID int64) ([]*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = $1
		ORDER BY record_date DESC
	`

	rows, err := s.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("get price history: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetByDateRange retrieves records within the bounds, newest first.
// A nil bound leaves that side open.
func (s *PriceHistoryStore) GetByDateRange(ctx context.Context, productID int64, from, to *time.Time) ([]*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = $1
		  AND ($2::date IS NULL OR record_date >= $2)
		  AND ($3::date IS NULL OR record_date <= $3)
		ORDER BY record_date DESC
	`

	rows, err := s.pool.Query(ctx, query, productID, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("get price history by range: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// GetLatest retrieves the most recent record for a product.
func (s *PriceHistoryStore) GetLatest(ctx context.Context, productID int64) (*domain.PriceRecord, error) {
	query := `
		SELECT product_id, price, discount, record_date
		FROM price_history
		WHERE product_id = $1
		ORDER BY record_date DESC
		LIMIT 1
	`

	r, err := scanRecord(s.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest price record: %w", err)
	}
	return r, nil
}

// AllTimeMinEffective returns the lowest discounted price ever recorded,
// rounded half up as in the application pricing rules.
func (s *PriceHistoryStore) AllTimeMinEffective(ctx context.Context, productID int64) (int64, error) {
	query := `
		SELECT MIN((price * (100 - discount) + 50) / 100)
		FROM price_history
		WHERE product_id = $1
	`

	var min *int64
	if err := s.pool.QueryRow(ctx, query, productID).Scan(&min); err != nil {
		return 0, fmt.Errorf("all-time min effective price: %w", err)
	}
	if min == nil {
		return 0, storage.ErrNotFound
	}
	return *min, nil
}

func validRecord(r *domain.PriceRecord) bool {
	return r != nil && r.ProductID != 0 && r.DiscountPercent >= 0 && r.DiscountPercent <= 100 &&
		!r.RecordDate.IsZero()
}

func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return domain.DateOf(*t)
}

func scanRecord(row pgx.Row) (*domain.PriceRecord, error) {
	var r domain.PriceRecord
	if err := row.Scan(&r.ProductID, &r.Price, &r.DiscountPercent, &r.RecordDate); err != nil {
		return nil, err
	}
	r.RecordDate = domain.DateOf(r.RecordDate)
	return &r, nil
}

func scanRecords(rows pgx.Rows) ([]*domain.PriceRecord, error) {
	var result []*domain.PriceRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan price record: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
