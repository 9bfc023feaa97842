package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/backend/backendtest"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/localcart"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/pkg/errors"
)

func n(v uint64) domain.Nat {
	return domain.NewNat(v)
}

type harness struct {
	srv     *backendtest.Server
	kv      *storage.Memory
	catalog *CatalogService
	carts   *CartService
	orders  *OrderService
}

func newHarness(t *testing.T, ttl time.Duration) *harness {
	t.Helper()
	srv := backendtest.NewServer(
		domain.Product{ID: n(1), Title: "Brass Lamp", Price: n(1500), Stock: n(3), Category: "home"},
		domain.Product{ID: n(2), Title: "Cotton Kurta", Price: n(899), Stock: n(10), Category: "apparel"},
	)
	t.Cleanup(srv.Close)

	logger := zap.NewNop()
	client := backend.NewClient(config.BackendConfig{URL: srv.URL, Timeout: 5 * time.Second}, nil, logger)
	kv := storage.NewMemory()
	catalog := NewCatalogService(backend.NewCatalog(client), ttl, logger)
	carts := NewCartService(kv, backend.NewGateway(client), catalog, nil, logger)
	return &harness{
		srv:     srv,
		kv:      kv,
		catalog: catalog,
		carts:   carts,
		orders:  NewOrderService(backend.NewOrders(client), carts, nil, logger),
	}
}

func guest(device string) Caller {
	return Caller{DeviceID: device, Principal: domain.None[domain.Principal]()}
}

func member(device, principal string) Caller {
	return Caller{DeviceID: device, Principal: domain.Some(domain.Principal(principal))}
}

func TestGuestCartStaysLocal(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()

	resp, err := h.carts.AddItem(ctx, guest("dev-1"), AddItemRequest{ProductID: n(1), Quantity: n(2)})
	require.NoError(t, err)
	assert.Equal(t, "3000", resp.Subtotal.String())
	assert.Equal(t, "₹3,000", resp.SubtotalDisplay)
	assert.False(t, resp.Authenticated)

	_, found, err := h.kv.Get(ctx, localcart.KeyFor("dev-1"))
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, h.srv.Calls("addToCart"))

	other, err := h.carts.Cart(ctx, guest("dev-2"))
	require.NoError(t, err)
	assert.Empty(t, other.Items)
}

func TestSignInMergesGuestCart(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	h.srv.SetCart("alice", []domain.CartLine{{ProductID: n(2), Quantity: n(1)}})

	_, err := h.carts.AddItem(ctx, guest("dev-1"), AddItemRequest{ProductID: n(2), Quantity: n(2)})
	require.NoError(t, err)

	resp, err := h.carts.Cart(ctx, member("dev-1", "alice"))
	require.NoError(t, err)
	assert.True(t, resp.Authenticated)
	assert.Empty(t, resp.ReconcileError)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "3", resp.Items[0].Quantity.String())

	_, err = h.carts.Cart(ctx, member("dev-1", "alice"))
	require.NoError(t, err)
	assert.Equal(t, 1, h.srv.Calls("mergeCart"))

	_, found, err := h.kv.Get(ctx, localcart.KeyFor("dev-1"))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSignInMergeFailureIsReportedNotFatal(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	_, err := h.carts.AddItem(ctx, guest("dev-1"), AddItemRequest{ProductID: n(1), Quantity: n(1)})
	require.NoError(t, err)
	h.srv.Fail("mergeCart", "Cart service is read-only")

	resp, err := h.carts.Cart(ctx, member("dev-1", "alice"))
	require.NoError(t, err)
	assert.Contains(t, resp.ReconcileError, "Cart service is read-only")
	assert.Empty(t, resp.Items)

	_, found, err := h.kv.Get(ctx, localcart.KeyFor("dev-1"))
	require.NoError(t, err)
	assert.True(t, found)
}

func TestIdleSessionsAreEvicted(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	clock := time.Now()
	h.carts.now = func() time.Time { return clock }

	_, err := h.carts.AddItem(ctx, guest("dev-1"), AddItemRequest{ProductID: n(1), Quantity: n(1)})
	require.NoError(t, err)
	_, err = h.carts.Cart(ctx, guest("dev-2"))
	require.NoError(t, err)
	assert.Equal(t, 2, h.carts.Sessions())

	clock = clock.Add(SessionIdleTTL - time.Minute)
	_, err = h.carts.Cart(ctx, guest("dev-2"))
	require.NoError(t, err)
	assert.Equal(t, 2, h.carts.Sessions())

	clock = clock.Add(2 * time.Minute)
	_, err = h.carts.Cart(ctx, guest("dev-3"))
	require.NoError(t, err)
	assert.Equal(t, 2, h.carts.Sessions())

	// the guest cart outlives its session
	resp, err := h.carts.Cart(ctx, guest("dev-1"))
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "1", resp.Items[0].Quantity.String())
}

func TestUpdateAboveStockNeverReachesBackend(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	caller := member("dev-1", "alice")
	_, err := h.carts.AddItem(ctx, caller, AddItemRequest{ProductID: n(1), Quantity: n(1)})
	require.NoError(t, err)

	_, err = h.carts.UpdateItem(ctx, caller, n(1), UpdateItemRequest{Quantity: n(5)})
	var stock *errors.ErrStockExceeded
	require.ErrorAs(t, err, &stock)
	assert.Zero(t, h.srv.Calls("updateCartItem"))
}

func TestCatalogSnapshotCachesAndServesStale(t *testing.T) {
	h := newHarness(t, time.Hour)
	ctx := context.Background()

	first, err := h.catalog.Snapshot(ctx)
	require.NoError(t, err)
	_, err = h.catalog.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.srv.Calls("getAllProducts"))

	h.catalog.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	h.srv.Fail("getAllProducts", "catalog offline")
	stale, err := h.catalog.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, first, stale)
	assert.Equal(t, 2, h.srv.Calls("getAllProducts"))

	h.catalog.Invalidate()
	_, err = h.catalog.Snapshot(ctx)
	var remote *errors.ErrRemoteCall
	assert.ErrorAs(t, err, &remote)
}

func TestCatalogList(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()

	all, err := h.catalog.List(ctx, ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	found, err := h.catalog.List(ctx, ProductQuery{Term: "kurta"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "2", found[0].ID.String())

	home, err := h.catalog.List(ctx, ProductQuery{Category: "home"})
	require.NoError(t, err)
	require.Len(t, home, 1)

	desc, err := h.catalog.List(ctx, ProductQuery{Sort: SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, "1500", desc[0].Price.String())

	_, err = h.catalog.List(ctx, ProductQuery{Sort: "rating"})
	var validation *errors.ErrValidation
	assert.ErrorAs(t, err, &validation)
}

func checkoutForm() domain.CheckoutForm {
	return domain.CheckoutForm{
		Name:         "Jane Doe",
		Email:        "jane@x.com",
		Phone:        "9876543210",
		AddressLine1: "12 Main St",
		City:         "Springfield",
		PostalCode:   "560001",
	}
}

func TestCheckoutPlacesOrderFromRemoteCart(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	caller := member("dev-1", "alice")
	_, err := h.carts.AddItem(ctx, caller, AddItemRequest{ProductID: n(2), Quantity: n(2)})
	require.NoError(t, err)

	attempt, err := h.orders.Checkout(ctx, caller, checkoutForm())
	require.NoError(t, err)
	assert.Equal(t, domain.PlacementConfirmed, attempt.State)
	assert.Equal(t, "1798", attempt.Order.Total.String())
	assert.Equal(t, "/order-confirmation/1", attempt.ConfirmationRoute)

	orders, err := h.orders.ListOrders(ctx, caller)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	order, err := h.orders.Order(ctx, caller, n(1))
	require.NoError(t, err)
	assert.Equal(t, "12 Main St, Springfield, 560001", order.ShippingAddress)
}

func TestCheckoutStopsWhenGuestCartMergeFails(t *testing.T) {
	h := newHarness(t, time.Minute)
	ctx := context.Background()
	h.srv.SetCart("alice", []domain.CartLine{{ProductID: n(2), Quantity: n(1)}})
	_, err := h.carts.AddItem(ctx, guest("dev-1"), AddItemRequest{ProductID: n(1), Quantity: n(2)})
	require.NoError(t, err)
	h.srv.Fail("mergeCart", "Cart service is read-only")

	caller := member("dev-1", "alice")
	_, err = h.orders.Checkout(ctx, caller, checkoutForm())
	var remote *errors.ErrRemoteCall
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Cart service is read-only", remote.Message)
	assert.Zero(t, h.srv.Calls("placeOrder"))

	// still signed in, the guest lines are pending
	_, err = h.orders.Checkout(ctx, caller, checkoutForm())
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "mergeCart", remote.Operation)
	assert.Zero(t, h.srv.Calls("placeOrder"))
	assert.Equal(t, 1, h.srv.Calls("mergeCart"))

	// signing out and back in retries the merge
	h.srv.Recover("mergeCart")
	_, err = h.carts.Cart(ctx, guest("dev-1"))
	require.NoError(t, err)
	attempt, err := h.orders.Checkout(ctx, caller, checkoutForm())
	require.NoError(t, err)
	assert.Equal(t, domain.PlacementConfirmed, attempt.State)
	assert.Equal(t, "3899", attempt.Order.Total.String())
}

func TestCheckoutRequiresSignIn(t *testing.T) {
	h := newHarness(t, time.Minute)

	_, err := h.orders.Checkout(context.Background(), guest("dev-1"), domain.CheckoutForm{})
	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Zero(t, h.srv.Calls("placeOrder"))
}

func TestCheckoutEmptyCart(t *testing.T) {
	h := newHarness(t, time.Minute)

	_, err := h.orders.Checkout(context.Background(), member("dev-1", "alice"), domain.CheckoutForm{})
	var empty *errors.ErrEmptyCart
	require.ErrorAs(t, err, &empty)
}

func TestCheckoutDefaults(t *testing.T) {
	h := newHarness(t, time.Minute)
	h.srv.SetProfile("alice", domain.UserProfile{Name: "Alice", Email: "alice@x.com", Phone: "9876543210"})

	form, err := h.orders.Defaults(context.Background(), member("dev-1", "alice"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", form.Name)
	assert.Empty(t, form.City)
}
