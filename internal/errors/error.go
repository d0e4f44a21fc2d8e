// Package errors provides custom error types for storefront operations.
package errors

import "errors"

var (
	// ErrProductNotFound is returned when an id is absent from the catalog.
	ErrProductNotFound = errors.New("product not found")

	// ErrCatalogUnavailable is returned while the catalog is loading or the
	// startup fetch has failed. Only a full reload clears it.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
)
