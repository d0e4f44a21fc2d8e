package messaging

import (
	"context"
)

// CartUpdatedSubject is the subject cart mutation events are published on.
const CartUpdatedSubject = "storefront.cart.updated"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher discards events. Used when event publishing is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(_ context.Context, _ Event) error {
	return nil
}
