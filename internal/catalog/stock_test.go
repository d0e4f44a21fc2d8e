package catalog

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestAnnotator() *Annotator {
	return NewAnnotator(rand.NewPCG(1, 2))
}

func Test_Annotate_ParityRule(t *testing.T) {
	annotator := newTestAnnotator()

	for id := 1; id <= 50; id++ {
		p := annotator.Annotate(RawProduct{ID: id})
		if id%5 == 0 {
			assert.Equal(t, 0, p.Stock, "id %d must be out of stock", id)
			assert.False(t, p.InStock, "id %d must not be in stock", id)
		} else {
			assert.GreaterOrEqual(t, p.Stock, 5, "id %d stock below range", id)
			assert.LessOrEqual(t, p.Stock, 24, "id %d stock above range", id)
			assert.True(t, p.InStock, "id %d must be in stock", id)
		}
		// invariant: availability is derived from stock
		assert.Equal(t, p.Stock > 0, p.InStock)
	}
}

func Test_Annotate_CopiesRawFields(t *testing.T) {
	// given
	raw := RawProduct{
		ID:          3,
		Title:       "Backpack",
		Price:       109.95,
		Category:    "men's clothing",
		Image:       "https://example.com/backpack.jpg",
		Description: "Fits 15in laptops",
		Rating:      Rating{Rate: 3.9, Count: 120},
	}
	// when
	p := newTestAnnotator().Annotate(raw)
	// then
	assert.Equal(t, raw.ID, p.ID)
	assert.Equal(t, raw.Title, p.Title)
	assert.Equal(t, raw.Price, p.Price)
	assert.Equal(t, raw.Category, p.Category)
	assert.Equal(t, raw.Image, p.Image)
	assert.Equal(t, raw.Description, p.Description)
	assert.Equal(t, raw.Rating, p.Rating)
}

func Test_AnnotateAll_PreservesOrder(t *testing.T) {
	// given
	raws := []RawProduct{{ID: 2}, {ID: 5}, {ID: 1}}
	// when
	products := newTestAnnotator().AnnotateAll(raws)
	// then
	assert.Len(t, products, 3)
	assert.Equal(t, 2, products[0].ID)
	assert.Equal(t, 5, products[1].ID)
	assert.Equal(t, 1, products[2].ID)
	assert.Equal(t, 0, products[1].Stock)
}
