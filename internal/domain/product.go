package domain

// Tag marks a product whose current effective price is a deal.
// Tags are recomputed on every daily import; a product with no deal carries TagNone.
type Tag string

const (
	// TagNone means the product is not currently a deal.
	TagNone Tag = ""
	// TagBest means the current effective price is the all-time low.
	TagBest Tag = "best"
	// TagGood means the current effective price is within ±5% of the all-time low.
	TagGood Tag = "good"
)

// Product represents a tracked marketplace listing.
// Corresponds to the products table.
type Product struct {
	ID          int64  // surrogate key assigned by storage
	SKU         string // marketplace item identifier, unique
	Name        string
	URL         string // listing page URL
	ImageURL    string
	Description string
	Category    string
	Tag         Tag // current deal tag, empty when not a deal
}
