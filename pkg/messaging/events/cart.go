package events

import (
	"encoding/json"
	"time"

	"github.com/elitestore/storefront/pkg/messaging"
)

// CartUpdatedEvent is published after every cart mutation. Consumers
// (analytics, abandoned-cart jobs) only need the resulting totals.
type CartUpdatedEvent struct {
	Action     string    `json:"action"` // add, set_quantity, remove
	ProductID  int       `json:"product_id"`
	TotalItems int       `json:"total_items"`
	TotalPrice float64   `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e CartUpdatedEvent) Subject() string {
	return messaging.CartUpdatedSubject
}

func (e CartUpdatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
