package cart

import (
	"context"
	"errors"
)

// Slot is the storage slot name the cart is persisted under.
const Slot = "cart"

// ErrSlotNotFound is returned by Storage.Load for a slot that has never been
// written. Callers treat it as an empty cart, never as a user-facing error.
var ErrSlotNotFound = errors.New("storage slot not found")

// Storage is the persistence collaborator: a named key-value slot holding a
// JSON blob. The cart slot is read once at startup and written after every
// mutation; writes are fire-and-forget, last write wins.
type Storage interface {
	// Load retrieves the blob stored under slot.
	// Returns ErrSlotNotFound if the slot was never written.
	Load(ctx context.Context, slot string) ([]byte, error)

	// Save stores the blob under slot, replacing any previous value.
	Save(ctx context.Context, slot string, data []byte) error
}
