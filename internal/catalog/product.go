// Package catalog holds the product domain: the upstream catalog types, the
// stock annotation rules and the pure filter/sort helpers.
package catalog

// Rating mirrors the upstream rating object.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

// RawProduct is a product record exactly as the upstream catalog returns it.
// It carries no inventory information.
type RawProduct struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Rating      Rating  `json:"rating"`
}

// Product is a catalog record enriched with stock information. Products are
// immutable once fetched. Invariant: InStock == (Stock > 0).
type Product struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Description string  `json:"description"`
	Rating      Rating  `json:"rating"`
	Stock       int     `json:"stock"`
	InStock     bool    `json:"in_stock"`
}

// Sort orders accepted by Apply. Anything else falls back to SortDefault.
const (
	SortDefault   = "default"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Filter is the search/category/sort selection driving which catalog subset
// is visible. The zero value selects the whole catalog in upstream order.
type Filter struct {
	Search   string
	Category string
	SortBy   string
}
