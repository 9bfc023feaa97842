package backend

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Orders places and reads the caller's orders
type Orders struct {
	client *Client
}

func NewOrders(client *Client) *Orders {
	return &Orders{client: client}
}

// PlaceOrder asks the backend to turn the caller's current remote cart into an
// order. Items and total are computed server-side.
func (o *Orders) PlaceOrder(ctx context.Context, shippingAddress, contactInfo string) (*domain.Order, error) {
	resp, err := o.client.Execute(ctx, "placeOrder", PlaceOrderMutation, map[string]any{
		"shippingAddress": shippingAddress,
		"contactInfo":     contactInfo,
	})
	if err != nil {
		return nil, err
	}

	var result struct {
		PlaceOrder *domain.Order `json:"placeOrder"`
	}
	if err := decode("placeOrder", resp, &result); err != nil {
		return nil, err
	}
	if result.PlaceOrder == nil {
		return nil, &errors.ErrRemoteCall{Operation: "placeOrder", Message: "order was not created"}
	}
	return result.PlaceOrder, nil
}

// Order fetches one order by id
func (o *Orders) Order(ctx context.Context, id domain.Nat) (*domain.Order, error) {
	resp, err := o.client.Execute(ctx, "getOrder", OrderQuery, map[string]any{"id": id})
	if err != nil {
		return nil, err
	}

	var result struct {
		Order domain.Option[domain.Order] `json:"order"`
	}
	if err := decode("getOrder", resp, &result); err != nil {
		return nil, err
	}

	order, ok := result.Order.Get()
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	return &order, nil
}

// UserOrders lists the caller's orders
func (o *Orders) UserOrders(ctx context.Context) ([]domain.Order, error) {
	resp, err := o.client.Execute(ctx, "getUserOrders", UserOrdersQuery, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		UserOrders []domain.Order `json:"userOrders"`
	}
	if err := decode("getUserOrders", resp, &result); err != nil {
		return nil, err
	}
	if result.UserOrders == nil {
		return []domain.Order{}, nil
	}
	return result.UserOrders, nil
}

// CallerProfile returns the caller's saved profile, None when not set up
func (o *Orders) CallerProfile(ctx context.Context) (domain.Option[domain.UserProfile], error) {
	resp, err := o.client.Execute(ctx, "getCallerUserProfile", CallerProfileQuery, nil)
	if err != nil {
		return domain.None[domain.UserProfile](), err
	}

	var result struct {
		Profile domain.Option[domain.UserProfile] `json:"callerUserProfile"`
	}
	if err := decode("getCallerUserProfile", resp, &result); err != nil {
		return domain.None[domain.UserProfile](), err
	}
	return result.Profile, nil
}
