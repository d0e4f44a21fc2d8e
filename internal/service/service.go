// Package service provides the implementation of storefront business logic:
// the catalog lifecycle, filtered product views and the persisted cart.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/elitestore/storefront/internal/cart"
	"github.com/elitestore/storefront/internal/catalog"
	storeerrors "github.com/elitestore/storefront/internal/errors"
	"github.com/elitestore/storefront/pkg/messaging"
	"github.com/elitestore/storefront/pkg/messaging/events"
)

// State is the catalog lifecycle state. The catalog starts in StateLoading,
// moves to StateReady on a successful fetch or StateFailed on any error, and
// leaves StateReady or StateFailed only through a full reload.
type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// Cart mutation actions reported in published events.
const (
	actionAdd         = "add"
	actionSetQuantity = "set_quantity"
	actionRemove      = "remove"
)

// StorefrontService defines the operations for browsing the catalog and
// managing the cart. Catalog and cart operations return ErrCatalogUnavailable
// unless the service is in StateReady.
type StorefrontService interface {
	// State reports the current catalog lifecycle state.
	State() State

	// Reload performs the full restart transition: back to StateLoading, one
	// fetch from scratch, then StateReady or StateFailed. The persisted cart
	// is re-read as part of the restart.
	Reload(ctx context.Context) error

	// Products returns the catalog narrowed to the given filter.
	Products(ctx context.Context, f catalog.Filter) ([]catalog.Product, error)

	// ProductByID retrieves a single product.
	// Returns ErrProductNotFound if the id is absent from the catalog.
	ProductByID(ctx context.Context, id int) (*catalog.Product, error)

	// Categories returns the sorted distinct categories of the catalog.
	Categories(ctx context.Context) ([]string, error)

	// Cart returns the current cart.
	Cart(ctx context.Context) (cart.Cart, error)

	// AddToCart puts one unit of the identified product into the cart.
	// Adding past the stock ceiling is a no-op, not an error.
	AddToCart(ctx context.Context, productID int) (cart.Cart, error)

	// SetQuantity replaces the quantity of a cart entry. Out-of-range
	// quantities and ids missing from the cart are no-ops.
	SetQuantity(ctx context.Context, productID, quantity int) (cart.Cart, error)

	// RemoveFromCart drops the entry for the identified product.
	RemoveFromCart(ctx context.Context, productID int) (cart.Cart, error)
}

// Service implements StorefrontService. A single mutex serializes cart
// mutations, so the slot write after each one is last-write-wins without any
// storage-level transactionality.
type Service struct {
	source    catalog.Source
	annotator *catalog.Annotator
	storage   cart.Storage
	publisher messaging.Publisher
	logger    *slog.Logger

	mu       sync.RWMutex
	state    State
	products []catalog.Product
	items    cart.Cart
}

// NewService creates a storefront service in StateLoading. Call Reload to
// perform the startup catalog fetch.
func NewService(source catalog.Source, annotator *catalog.Annotator, storage cart.Storage, publisher messaging.Publisher, logger *slog.Logger) *Service {
	return &Service{
		source:    source,
		annotator: annotator,
		storage:   storage,
		publisher: publisher,
		logger:    logger.With("component", "service"),
		state:     StateLoading,
	}
}

// State reports the current catalog lifecycle state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Reload performs the full restart transition. On failure the service ends in
// StateFailed and keeps answering ErrCatalogUnavailable; no partial catalog
// is ever served.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.state = StateLoading
	s.products = nil
	s.mu.Unlock()

	raws, err := s.source.Fetch(ctx)
	if err != nil {
		s.mu.Lock()
		s.state = StateFailed
		s.mu.Unlock()
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	products := s.annotator.AnnotateAll(raws)
	items := s.restoreCart(ctx)

	s.mu.Lock()
	s.products = products
	s.items = items
	s.state = StateReady
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Catalog loaded", "products", len(products), "cart_items", cart.TotalItems(items))
	return nil
}

// restoreCart reads the persisted cart slot. A missing or corrupt slot is
// treated as an empty cart and never surfaces to the user.
func (s *Service) restoreCart(ctx context.Context) cart.Cart {
	data, err := s.storage.Load(ctx, cart.Slot)
	if err != nil {
		if !errors.Is(err, cart.ErrSlotNotFound) {
			s.logger.WarnContext(ctx, "Failed to read persisted cart, starting empty", "error", err)
		}
		return cart.Cart{}
	}
	var items cart.Cart
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.WarnContext(ctx, "Persisted cart is corrupt, starting empty", "error", err)
		return cart.Cart{}
	}
	return items
}

// Products returns the catalog narrowed to the given filter.
func (s *Service) Products(_ context.Context, f catalog.Filter) ([]catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	return catalog.Apply(s.products, f), nil
}

// ProductByID retrieves a single product by its catalog id.
func (s *Service) ProductByID(_ context.Context, id int) (*catalog.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, storeerrors.ErrProductNotFound
}

// Categories returns the sorted distinct categories of the catalog.
func (s *Service) Categories(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	return catalog.Categories(s.products), nil
}

// Cart returns the current cart.
func (s *Service) Cart(_ context.Context) (cart.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	return s.items, nil
}

// AddToCart puts one unit of the identified product into the cart.
func (s *Service) AddToCart(ctx context.Context, productID int) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	var product *catalog.Product
	for _, p := range s.products {
		if p.ID == productID {
			product = &p
			break
		}
	}
	if product == nil {
		return nil, storeerrors.ErrProductNotFound
	}
	s.items = cart.Add(s.items, *product)
	s.persistAndPublish(ctx, actionAdd, productID)
	return s.items, nil
}

// SetQuantity replaces the quantity of a cart entry.
func (s *Service) SetQuantity(ctx context.Context, productID, quantity int) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	s.items = cart.SetQuantity(s.items, productID, quantity)
	s.persistAndPublish(ctx, actionSetQuantity, productID)
	return s.items, nil
}

// RemoveFromCart drops the entry for the identified product.
func (s *Service) RemoveFromCart(ctx context.Context, productID int) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateReady {
		return nil, storeerrors.ErrCatalogUnavailable
	}
	s.items = cart.Remove(s.items, productID)
	s.persistAndPublish(ctx, actionRemove, productID)
	return s.items, nil
}

// persistAndPublish writes the cart slot and publishes a mutation event.
// Both are fire-and-forget: failures are logged, never returned, and the
// in-memory cart stays authoritative for the session.
func (s *Service) persistAndPublish(ctx context.Context, action string, productID int) {
	data, err := json.Marshal(s.items)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to encode cart for persistence", "error", err)
		return
	}
	if err := s.storage.Save(ctx, cart.Slot, data); err != nil {
		s.logger.WarnContext(ctx, "Failed to persist cart", "error", err)
	}

	event := events.CartUpdatedEvent{
		Action:     action,
		ProductID:  productID,
		TotalItems: cart.TotalItems(s.items),
		TotalPrice: cart.TotalPrice(s.items),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish cart event", "action", action, "error", err)
	}
}
