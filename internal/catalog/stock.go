package catalog

import "math/rand/v2"

// Stock bounds for the simulated inventory of in-stock products.
const (
	minStock = 5
	maxStock = 24
)

// Annotator derives stock levels for fetched products. The upstream catalog
// carries no inventory signal, so stock is simulated: every product id that
// is a multiple of five is out of stock, the rest get a pseudo-random level
// in [5, 24]. The parity rule is relied on by the out-of-stock paths and
// must not change; the random magnitude is flavor only.
type Annotator struct {
	rng *rand.Rand
}

// NewAnnotator creates an Annotator drawing stock levels from src.
// Tests pass a seeded source for reproducible catalogs.
func NewAnnotator(src rand.Source) *Annotator {
	return &Annotator{rng: rand.New(src)}
}

// Annotate enriches a raw product with stock and availability.
func (a *Annotator) Annotate(raw RawProduct) Product {
	stock := 0
	if raw.ID%5 != 0 {
		stock = minStock + a.rng.IntN(maxStock-minStock+1)
	}
	return Product{
		ID:          raw.ID,
		Title:       raw.Title,
		Price:       raw.Price,
		Category:    raw.Category,
		Image:       raw.Image,
		Description: raw.Description,
		Rating:      raw.Rating,
		Stock:       stock,
		InStock:     stock > 0,
	}
}

// AnnotateAll annotates a fetched catalog, preserving upstream order.
func (a *Annotator) AnnotateAll(raws []RawProduct) []Product {
	products := make([]Product, len(raws))
	for i, raw := range raws {
		products[i] = a.Annotate(raw)
	}
	return products
}
