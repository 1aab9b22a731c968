package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"pricewatch/internal/domain"
	"pricewatch/internal/storage"
)

// ProductStore is an in-memory implementation of storage.ProductStore.
type ProductStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.Product
	bySKU  map[string]int64
	nextID int64
}

// NewProductStore creates a new in-memory product store.
func NewProductStore() *ProductStore {
	return &ProductStore{
		data:   make(map[int64]*domain.Product),
		bySKU:  make(map[string]int64),
		nextID: 1,
	}
}

var _ storage.ProductStore = (*ProductStore)(nil)

// Upsert inserts a product by SKU if absent and returns its ID.
func (s *ProductStore) Upsert(_ context.Context, p *domain.Product) (int64, error) {
	if p == nil || p.SKU == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.bySKU[p.SKU]; ok {
		existing := s.data[id]
		existing.Name = p.Name
		existing.URL = p.URL
		existing.ImageURL = p.ImageURL
		existing.Description = p.Description
		existing.Category = p.Category
		return id, nil
	}

	id := s.nextID
	s.nextID++
	stored := *p
	stored.ID = id
	s.data[id] = &stored
	s.bySKU[p.SKU] = id
	return id, nil
}

// GetByID retrieves a product. Returns ErrNotFound if not exists.
func (s *ProductStore) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	productCopy := *p
	return &productCopy, nil
}

// GetBySKU retrieves a product by SKU. Returns ErrNotFound if not exists.
func (s *ProductStore) GetBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySKU[sku]
	if !ok {
		return nil, storage.ErrNotFound
	}
	productCopy := *s.data[id]
	return &productCopy, nil
}

// List retrieves all products ordered by ID.
func (s *ProductStore) List(_ context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Product, 0, len(s.data))
	for _, p := range s.data {
		productCopy := *p
		result = append(result, &productCopy)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// ListTagged retrieves tagged products (current deals) with paging.
func (s *ProductStore) ListTagged(_ context.Context, page, limit int) ([]*domain.Product, error) {
	if page < 0 || limit <= 0 {
		return nil, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var tagged []*domain.Product
	for _, p := range s.data {
		if p.Tag != domain.TagNone {
			productCopy := *p
			tagged = append(tagged, &productCopy)
		}
	}
	sort.Slice(tagged, func(i, j int) bool { return tagged[i].ID < tagged[j].ID })

	start := page * limit
	if start >= len(tagged) {
		return nil, nil
	}
	end := start + limit
	if end > len(tagged) {
		end = len(tagged)
	}
	return tagged[start:end], nil
}

// SetTag updates a product's deal tag.
func (s *ProductStore) SetTag(_ context.Context, id int64, tag domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}
	p.Tag = tag
	return nil
}

// ClearTagsExcept removes the deal tag from every product whose ID is
// not in keep.
func (s *ProductStore) ClearTagsExcept(_ context.Context, keep []int64) error {
	keepSet := make(map[int64]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.data {
		if _, ok := keepSet[id]; !ok {
			p.Tag = domain.TagNone
		}
	}
	return nil
}

// SearchSuggestions returns up to limit product names containing keyword,
// case-insensitive, ordered by name.
func (s *ProductStore) SearchSuggestions(_ context.Context, keyword string, limit int) ([]string, error) {
	if keyword == "" || limit <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(keyword)
	var names []string
	for _, p := range s.data {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			names = append(names, p.Name)
		}
	}
	sort.Strings(names)
	if len(names) > limit {
		names = names[:limit]
	}
	return names, nil
}
