package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Categories returns the distinct category strings present in products,
// sorted ascending (case-sensitive, as delivered by the upstream catalog).
func Categories(products []Product) []string {
	seen := make(map[string]struct{}, len(products))
	categories := make([]string, 0, len(products))
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}
	sort.Strings(categories)
	return categories
}

// Apply narrows products to the given filter: case-insensitive title
// substring search, then exact category match, then a stable price sort.
// Filtering always happens before sorting. The input slice is not modified.
func Apply(products []Product, f Filter) []Product {
	filtered := make([]Product, 0, len(products))
	search := strings.ToLower(f.Search)
	for _, p := range products {
		if search != "" && !strings.Contains(strings.ToLower(p.Title), search) {
			continue
		}
		if f.Category != "" && f.Category != CategoryAll && p.Category != f.Category {
			continue
		}
		filtered = append(filtered, p)
	}

	switch f.SortBy {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	}
	return filtered
}

// FormatPrice renders an amount for display with a currency symbol and two
// decimal places. Presentational only, never used in computation.
func FormatPrice(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}
