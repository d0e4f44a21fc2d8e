package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"

	"github.com/elitestore/storefront/internal/cart"
	"github.com/elitestore/storefront/internal/catalog"
	storeerrors "github.com/elitestore/storefront/internal/errors"
	"github.com/elitestore/storefront/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSource is a mock implementation of the catalog.Source interface
type mockSource struct {
	raws    []catalog.RawProduct
	error   error
	fetches int
}

func (m *mockSource) Fetch(_ context.Context) ([]catalog.RawProduct, error) {
	m.fetches++
	if m.error != nil {
		return nil, m.error
	}
	return m.raws, nil
}

// recordingPublisher captures published events for assertions
type recordingPublisher struct {
	events []messaging.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.events = append(p.events, event)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(source catalog.Source, storage cart.Storage, publisher messaging.Publisher) *Service {
	return NewService(source, catalog.NewAnnotator(rand.NewPCG(7, 7)), storage, publisher, testLogger())
}

func readyService(t *testing.T, raws []catalog.RawProduct) (*Service, cart.Storage, *recordingPublisher) {
	t.Helper()
	storage := cart.NewMemoryStorage()
	publisher := &recordingPublisher{}
	svc := newTestService(&mockSource{raws: raws}, storage, publisher)
	require.NoError(t, svc.Reload(context.Background()))
	return svc, storage, publisher
}

func Test_Service_StateMachine(t *testing.T) {
	ctx := context.Background()

	t.Run("Starts in loading, operations unavailable", func(t *testing.T) {
		svc := newTestService(&mockSource{}, cart.NewMemoryStorage(), &recordingPublisher{})
		assert.Equal(t, StateLoading, svc.State())

		_, err := svc.Products(ctx, catalog.Filter{})
		assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
		_, err = svc.Cart(ctx)
		assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
		_, err = svc.AddToCart(ctx, 1)
		assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
	})

	t.Run("Successful reload moves to ready", func(t *testing.T) {
		svc := newTestService(&mockSource{raws: []catalog.RawProduct{{ID: 1}}}, cart.NewMemoryStorage(), &recordingPublisher{})
		require.NoError(t, svc.Reload(ctx))
		assert.Equal(t, StateReady, svc.State())
	})

	t.Run("Failed fetch moves to failed, no partial catalog", func(t *testing.T) {
		source := &mockSource{error: &catalog.NetworkError{URL: "http://catalog", Err: errors.New("boom")}}
		svc := newTestService(source, cart.NewMemoryStorage(), &recordingPublisher{})

		err := svc.Reload(ctx)
		require.Error(t, err)
		assert.Equal(t, StateFailed, svc.State())

		_, err = svc.Products(ctx, catalog.Filter{})
		assert.ErrorIs(t, err, storeerrors.ErrCatalogUnavailable)
	})

	t.Run("Reload recovers from failed", func(t *testing.T) {
		source := &mockSource{error: errors.New("boom")}
		svc := newTestService(source, cart.NewMemoryStorage(), &recordingPublisher{})
		require.Error(t, svc.Reload(ctx))
		assert.Equal(t, StateFailed, svc.State())

		// the upstream comes back
		source.error = nil
		source.raws = []catalog.RawProduct{{ID: 1}}
		require.NoError(t, svc.Reload(ctx))
		assert.Equal(t, StateReady, svc.State())
		assert.Equal(t, 2, source.fetches)
	})
}

func Test_Service_Products(t *testing.T) {
	svc, _, _ := readyService(t, []catalog.RawProduct{
		{ID: 1, Title: "Red Shirt", Price: 30, Category: "clothing"},
		{ID: 2, Title: "Blue Hat", Price: 10, Category: "clothing"},
		{ID: 3, Title: "Ring", Price: 20, Category: "jewelery"},
	})
	ctx := context.Background()

	// given/when
	all, err := svc.Products(ctx, catalog.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// search narrows before sort
	filtered, err := svc.Products(ctx, catalog.Filter{Category: "clothing", SortBy: catalog.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	assert.Equal(t, 2, filtered[0].ID)
	assert.Equal(t, 1, filtered[1].ID)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"clothing", "jewelery"}, categories)
}

func Test_Service_ProductByID(t *testing.T) {
	svc, _, _ := readyService(t, []catalog.RawProduct{{ID: 1, Title: "Shirt"}})
	ctx := context.Background()

	found, err := svc.ProductByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Shirt", found.Title)

	_, err = svc.ProductByID(ctx, 99)
	assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
}

func Test_Service_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown product", func(t *testing.T) {
		svc, _, _ := readyService(t, []catalog.RawProduct{{ID: 1}})
		_, err := svc.AddToCart(ctx, 99)
		assert.ErrorIs(t, err, storeerrors.ErrProductNotFound)
	})

	t.Run("Adds, persists and publishes", func(t *testing.T) {
		svc, storage, publisher := readyService(t, []catalog.RawProduct{{ID: 1, Price: 10}})

		items, err := svc.AddToCart(ctx, 1)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].Quantity)

		// the slot now holds the serialized cart
		data, err := storage.Load(ctx, cart.Slot)
		require.NoError(t, err)
		var persisted cart.Cart
		require.NoError(t, json.Unmarshal(data, &persisted))
		require.Len(t, persisted, 1)
		assert.Equal(t, 1, persisted[0].Product.ID)

		require.Len(t, publisher.events, 1)
	})

	t.Run("Out-of-stock product leaves the cart empty", func(t *testing.T) {
		// id 5 is a multiple of five, always out of stock
		svc, _, _ := readyService(t, []catalog.RawProduct{{ID: 5, Price: 10}})

		items, err := svc.AddToCart(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, items)
	})
}

func Test_Service_SetQuantity(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := readyService(t, []catalog.RawProduct{{ID: 1, Price: 10}})

	_, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)

	// stock is at least five for in-stock products, so three is always valid
	items, err := svc.SetQuantity(ctx, 1, 3)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)

	// above any possible stock: no-op, not an error
	items, err = svc.SetQuantity(ctx, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 3, items[0].Quantity)

	// unknown id: no-op
	items, err = svc.SetQuantity(ctx, 42, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func Test_Service_RemoveFromCart(t *testing.T) {
	ctx := context.Background()
	svc, storage, _ := readyService(t, []catalog.RawProduct{{ID: 1, Price: 10}, {ID: 2, Price: 5}})

	_, err := svc.AddToCart(ctx, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, 2)
	require.NoError(t, err)

	items, err := svc.RemoveFromCart(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Product.ID)

	// removal is persisted too
	data, err := storage.Load(ctx, cart.Slot)
	require.NoError(t, err)
	var persisted cart.Cart
	require.NoError(t, json.Unmarshal(data, &persisted))
	assert.Len(t, persisted, 1)
}

func Test_Service_RestoresPersistedCart(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	persisted := cart.Cart{{Product: catalog.Product{ID: 1, Price: 10, Stock: 5, InStock: true}, Quantity: 2}}
	data, err := json.Marshal(persisted)
	require.NoError(t, err)
	require.NoError(t, storage.Save(ctx, cart.Slot, data))

	svc := newTestService(&mockSource{raws: []catalog.RawProduct{{ID: 1, Price: 10}}}, storage, &recordingPublisher{})
	require.NoError(t, svc.Reload(ctx))

	items, err := svc.Cart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
}

func Test_Service_CorruptCartStartsEmpty(t *testing.T) {
	ctx := context.Background()
	storage := cart.NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, cart.Slot, []byte(`{not json`)))

	svc := newTestService(&mockSource{raws: []catalog.RawProduct{{ID: 1}}}, storage, &recordingPublisher{})
	require.NoError(t, svc.Reload(ctx))

	items, err := svc.Cart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
