package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend/backendtest"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func n(v uint64) domain.Nat {
	return domain.NewNat(v)
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{ID: n(1), Title: "Brass Lamp", Price: n(1500), Stock: n(3), Category: "home"},
		{ID: n(2), Title: "Cotton Kurta", Price: n(899), Stock: n(10), Category: "apparel"},
	}
}

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	return NewClient(config.BackendConfig{URL: url + "/", Timeout: 5 * time.Second}, nil, zap.NewNop())
}

func authed(p string) context.Context {
	return domain.ContextWithPrincipal(context.Background(), domain.Principal(p))
}

func TestGatewayCartRoundTrips(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	gw := NewGateway(newTestClient(t, srv.URL))
	ctx := authed("alice")

	require.NoError(t, gw.Add(ctx, n(1), n(1)))
	require.NoError(t, gw.Add(ctx, n(1), n(1)))
	require.NoError(t, gw.Add(ctx, n(2), n(4)))
	require.NoError(t, gw.SetQuantity(ctx, n(2), n(3)))
	require.NoError(t, gw.Remove(ctx, n(1)))

	lines, err := gw.Get(ctx)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "2", lines[0].ProductID.String())
	assert.Equal(t, "3", lines[0].Quantity.String())

	require.NoError(t, gw.Clear(ctx))
	lines, err = gw.Get(ctx)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestGatewayMergeSumsQuantities(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	srv.SetCart("alice", []domain.CartLine{{ProductID: n(1), Quantity: n(1)}})
	gw := NewGateway(newTestClient(t, srv.URL))

	err := gw.Merge(authed("alice"), []domain.CartLine{
		{ProductID: n(1), Quantity: n(2)},
		{ProductID: n(2), Quantity: n(5)},
	})
	require.NoError(t, err)

	cart := srv.Cart("alice")
	require.Len(t, cart, 2)
	assert.Equal(t, "3", cart[0].Quantity.String())
	assert.Equal(t, "5", cart[1].Quantity.String())
}

func TestGatewayWithoutPrincipalIsUnauthorized(t *testing.T) {
	srv := backendtest.NewServer()
	defer srv.Close()
	gw := NewGateway(newTestClient(t, srv.URL))

	_, err := gw.Get(context.Background())
	var unauthorized *errors.ErrUnauthorized
	require.ErrorAs(t, err, &unauthorized)
	assert.Equal(t, "Unauthorized: sign in required", unauthorized.Message)
}

func TestGatewayPropagatesBackendMessageVerbatim(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	srv.Fail("mergeCart", "Cart service is read-only")
	gw := NewGateway(newTestClient(t, srv.URL))

	err := gw.Merge(authed("alice"), []domain.CartLine{{ProductID: n(1), Quantity: n(1)}})
	var remote *errors.ErrRemoteCall
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "mergeCart", remote.Operation)
	assert.Equal(t, "Cart service is read-only", remote.Message)
	assert.Equal(t, 1, srv.Calls("mergeCart"), "no retry at the gateway")
}

func TestFailedOperationHoldsUntilRecover(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	gw := NewGateway(newTestClient(t, srv.URL))
	srv.Fail("getCart", "Cart service unavailable")

	for i := 0; i < 2; i++ {
		_, err := gw.Get(authed("alice"))
		var remote *errors.ErrRemoteCall
		require.ErrorAs(t, err, &remote)
		assert.Equal(t, "Cart service unavailable", remote.Message)
	}

	srv.Recover("getCart")
	_, err := gw.Get(authed("alice"))
	require.NoError(t, err)
	assert.Equal(t, 3, srv.Calls("getCart"))
}

func TestClientMapsHTTPStatuses(t *testing.T) {
	status := http.StatusForbidden
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Equal(t, "Bearer bob", r.Header.Get("Authorization"))
		w.WriteHeader(status)
	}))
	defer srv.Close()
	client := newTestClient(t, srv.URL)

	_, err := client.Execute(authed("bob"), "getCart", CartQuery, nil)
	var unauthorized *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)

	status = http.StatusBadGateway
	_, err = client.Execute(authed("bob"), "getCart", CartQuery, nil)
	var remote *errors.ErrRemoteCall
	require.ErrorAs(t, err, &remote)
	assert.Contains(t, remote.Message, "502")
}

func TestClientTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewGateway(newTestClient(t, url)).Get(authed("alice"))
	var remote *errors.ErrRemoteCall
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "service unavailable", remote.Message)
}

func TestCatalogQueries(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	catalog := NewCatalog(newTestClient(t, srv.URL))
	ctx := context.Background()

	all, err := catalog.AllProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	product, err := catalog.Product(ctx, n(2))
	require.NoError(t, err)
	assert.Equal(t, "Cotton Kurta", product.Title)

	_, err = catalog.Product(ctx, n(99))
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)

	found, err := catalog.Search(ctx, "lamp")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID.String())

	apparel, err := catalog.ByCategory(ctx, "apparel")
	require.NoError(t, err)
	assert.Len(t, apparel, 1)

	cheapFirst, err := catalog.ByPrice(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "899", cheapFirst[0].Price.String())
}

func TestOrdersPlaceAndRead(t *testing.T) {
	srv := backendtest.NewServer(seedProducts()...)
	defer srv.Close()
	srv.SetCart("alice", []domain.CartLine{{ProductID: n(1), Quantity: n(2)}})
	orders := NewOrders(newTestClient(t, srv.URL))
	ctx := authed("alice")

	order, err := orders.PlaceOrder(ctx, "12 Main St, Springfield, 560001", "Jane Doe, jane@x.com, 9876543210")
	require.NoError(t, err)
	assert.Equal(t, "3000", order.Total.String())
	assert.Equal(t, "12 Main St, Springfield, 560001", order.ShippingAddress)

	got, err := orders.Order(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID.String(), got.ID.String())

	list, err := orders.UserOrders(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = orders.Order(authed("mallory"), order.ID)
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestOrdersCallerProfile(t *testing.T) {
	srv := backendtest.NewServer()
	defer srv.Close()
	orders := NewOrders(newTestClient(t, srv.URL))

	profile, err := orders.CallerProfile(authed("alice"))
	require.NoError(t, err)
	assert.True(t, profile.IsNone())

	srv.SetProfile("alice", domain.UserProfile{Name: "Alice", Email: "alice@x.com", Phone: "9876543210"})
	profile, err = orders.CallerProfile(authed("alice"))
	require.NoError(t, err)
	got, ok := profile.Get()
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Name)
}
