// Package cart implements the cart domain: value-semantics operations over an
// ordered list of product/quantity entries, bounded by per-product stock.
package cart

import "github.com/elitestore/storefront/internal/catalog"

// Entry pairs a product with the quantity selected. Invariant:
// 1 <= Quantity <= Product.Stock.
type Entry struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Cart is an ordered sequence of entries with unique product ids. Insertion
// order is preserved for display only. Every operation returns a new cart
// value; the input stays valid for callers that retain it.
type Cart []Entry

// Find returns the entry holding productID, if any.
func Find(c Cart, productID int) (Entry, bool) {
	for _, e := range c {
		if e.Product.ID == productID {
			return e, true
		}
	}
	return Entry{}, false
}

// Add puts one unit of product into the cart. A new entry starts at quantity
// one; an existing entry grows until it reaches the product's stock, after
// which Add is a no-op. Zero-stock products never enter the cart, even when
// the caller forgot to check InStock first.
func Add(c Cart, p catalog.Product) Cart {
	entry, ok := Find(c, p.ID)
	switch {
	case !ok && p.Stock == 0:
		return c
	case !ok:
		return append(clone(c), Entry{Product: p, Quantity: 1})
	case entry.Quantity >= entry.Product.Stock:
		// stock ceiling reached
		return c
	default:
		next := clone(c)
		for i := range next {
			if next[i].Product.ID == p.ID {
				next[i].Quantity++
			}
		}
		return next
	}
}

// SetQuantity replaces the quantity for productID. Unknown ids and
// quantities below one or above the product's stock leave the cart untouched.
func SetQuantity(c Cart, productID, quantity int) Cart {
	entry, ok := Find(c, productID)
	if !ok || quantity < 1 || quantity > entry.Product.Stock {
		return c
	}
	next := clone(c)
	for i := range next {
		if next[i].Product.ID == productID {
			next[i].Quantity = quantity
		}
	}
	return next
}

// Remove drops the entry for productID, preserving the order of the rest.
// Removing an absent id is a no-op.
func Remove(c Cart, productID int) Cart {
	next := make(Cart, 0, len(c))
	for _, e := range c {
		if e.Product.ID != productID {
			next = append(next, e)
		}
	}
	return next
}

// TotalItems sums the quantities of all entries. Zero for an empty cart.
func TotalItems(c Cart) int {
	total := 0
	for _, e := range c {
		total += e.Quantity
	}
	return total
}

// TotalPrice sums price times quantity over all entries. Zero for an empty
// cart; no currency rounding is applied here.
func TotalPrice(c Cart) float64 {
	total := 0.0
	for _, e := range c {
		total += e.Product.Price * float64(e.Quantity)
	}
	return total
}

func clone(c Cart) Cart {
	next := make(Cart, len(c), len(c)+1)
	copy(next, c)
	return next
}
