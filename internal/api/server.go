// Package api serves the product catalog and price-history charts over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"pricewatch/internal/chart"
	"pricewatch/internal/domain"
	"pricewatch/internal/history"
	"pricewatch/internal/pricing"
	"pricewatch/internal/storage"
	"pricewatch/internal/window"
)

// Server exposes the product and price-history endpoints.
type Server struct {
	products storage.ProductStore
	history  storage.PriceHistoryStore
	source   *history.StoreSource
	policy   *window.Policy
	clock    domain.Clock
	logger   *log.Logger
}

// Options for creating Server.
type Options struct {
	ProductStore storage.ProductStore
	HistoryStore storage.PriceHistoryStore

	// Clock defaults to domain.SystemClock.
	Clock  domain.Clock
	Logger *log.Logger
}

// New creates a new Server.
func New(opts Options) *Server {
	clock := opts.Clock
	if clock == nil {
		clock = domain.SystemClock
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[api] ", log.LstdFlags)
	}
	return &Server{
		products: opts.ProductStore,
		history:  opts.HistoryStore,
		source:   history.NewStoreSource(opts.HistoryStore),
		policy:   window.NewPolicy(clock),
		clock:    clock,
		logger:   logger,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/products", s.handleListProducts)
	mux.HandleFunc("GET /api/products/deals", s.handleDeals)
	mux.HandleFunc("GET /api/products/suggestions", s.handleSuggestions)
	mux.HandleFunc("GET /api/products/{id}", s.handleProductDetail)
	mux.HandleFunc("GET /api/products/{id}/prices", s.handleProductPrices)
	mux.HandleFunc("GET /api/products/{id}/chart", s.handleProductChart)

	return mux
}

// productResponse is the JSON shape of one product.
type productResponse struct {
	ID          int64  `json:"id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	URL         string `json:"url,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Tag         string `json:"tag,omitempty"`
}

// recordResponse is the JSON shape of one price record.
type recordResponse struct {
	Date            string `json:"date"`
	Price           int64  `json:"price"`
	DiscountPercent int    `json:"discountPercent"`
	EffectivePrice  int64  `json:"effectivePrice"`
}

// detailResponse is the JSON shape of the product detail endpoint.
type detailResponse struct {
	Product productResponse  `json:"product"`
	Prices  []recordResponse `json:"prices"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.products.List(r.Context())
	if err != nil {
		s.serverError(w, "list products", err)
		return
	}
	s.respondJSON(w, toProductResponses(products))
}

func (s *Server) handleDeals(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	limit := queryInt(r, "limit", 20)
	if page < 0 || limit <= 0 || limit > 100 {
		httpError(w, http.StatusBadRequest, "invalid paging parameters")
		return
	}

	products, err := s.products.ListTagged(r.Context(), page, limit)
	if err != nil {
		s.serverError(w, "list deals", err)
		return
	}
	s.respondJSON(w, toProductResponses(products))
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		httpError(w, http.StatusBadRequest, "keyword is required")
		return
	}
	limit := queryInt(r, "limit", 10)
	if limit <= 0 || limit > 50 {
		httpError(w, http.StatusBadRequest, "invalid limit")
		return
	}

	names, err := s.products.SearchSuggestions(r.Context(), keyword, limit)
	if err != nil {
		s.serverError(w, "search suggestions", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	s.respondJSON(w, names)
}

// handleProductDetail serves one product with its price records. Optional
// startDate/endDate (ISO dates) bound the records; an empty bounded range
// falls back to the latest record.
func (s *Server) handleProductDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	product, err := s.products.GetByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httpError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.serverError(w, "get product", err)
		return
	}

	from, ok := queryDate(w, r, "startDate")
	if !ok {
		return
	}
	to, ok := queryDate(w, r, "endDate")
	if !ok {
		return
	}

	records, err := s.source.FetchHistory(r.Context(), id, from, to)
	if err != nil {
		s.serverError(w, "fetch history", err)
		return
	}

	s.respondJSON(w, detailResponse{
		Product: toProductResponse(product),
		Prices:  toRecordResponses(records),
	})
}

func (s *Server) handleProductPrices(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.products.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "product not found")
			return
		}
		s.serverError(w, "get product", err)
		return
	}

	records, err := s.history.GetByProductID(r.Context(), id)
	if err != nil {
		s.serverError(w, "get price history", err)
		return
	}

	out := make([]domain.PriceRecord, len(records))
	for i, rec := range records {
		out[i] = *rec
	}
	s.respondJSON(w, toRecordResponses(out))
}

// handleProductChart serves the chart.Spec for a window. The series is
// normalized the same way the selection controller does it, so the
// response matches what an interactive view would render.
func (s *Server) handleProductChart(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	win := window.All
	if raw := r.URL.Query().Get("window"); raw != "" {
		win = window.Window(raw)
		if !win.Valid() {
			httpError(w, http.StatusBadRequest, "unknown window")
			return
		}
	}

	if _, err := s.products.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httpError(w, http.StatusNotFound, "product not found")
			return
		}
		s.serverError(w, "get product", err)
		return
	}

	var from, to *time.Time
	if win != window.All {
		bounds := s.policy.BoundsFor(win)
		from, to = bounds.From, &bounds.To
	}

	records, err := s.source.FetchHistory(r.Context(), id, from, to)
	if err != nil {
		s.serverError(w, "fetch history", err)
		return
	}

	series := history.Normalize(records, s.clock)
	earliest, hasRecords := history.EarliestDate(series)
	options := make([]chart.WindowOption, 0, len(window.Ordered))
	for _, opt := range window.Ordered {
		options = append(options, chart.WindowOption{
			Window:     opt,
			Selectable: s.policy.Selectable(opt, earliest, hasRecords),
		})
	}

	spec, err := chart.Build(series, win, options)
	if err != nil {
		s.serverError(w, "build chart", err)
		return
	}
	if spec == nil {
		httpError(w, http.StatusNotFound, "no price history")
		return
	}
	s.respondJSON(w, spec)
}

func (s *Server) respondJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Printf("encode response: %v", err)
	}
}

func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Printf("%s: %v", op, err)
	httpError(w, http.StatusInternalServerError, "internal error")
}

func httpError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		httpError(w, http.StatusBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func queryDate(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid "+name)
		return nil, false
	}
	return &t, true
}

func toProductResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		SKU:         p.SKU,
		Name:        p.Name,
		URL:         p.URL,
		ImageURL:    p.ImageURL,
		Description: p.Description,
		Category:    p.Category,
		Tag:         string(p.Tag),
	}
}

func toProductResponses(products []*domain.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	return out
}

func toRecordResponses(records []domain.PriceRecord) []recordResponse {
	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		effective := rec.Price
		if rec.DiscountPercent > 0 {
			// Stored records are validated at import time.
			if v, err := pricing.EffectivePrice(rec.Price, rec.DiscountPercent); err == nil {
				effective = v
			}
		}
		out = append(out, recordResponse{
			Date:            domain.DateOf(rec.RecordDate).Format("2006-01-02"),
			Price:           rec.Price,
			DiscountPercent: rec.DiscountPercent,
			EffectivePrice:  effective,
		})
	}
	return out
}
