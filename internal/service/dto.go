package service

import (
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/money"
)

// Caller identifies who a request is for: the device owning the guest cart
// and, once signed in, the principal.
type Caller struct {
	DeviceID  string
	Principal domain.Option[domain.Principal]
}

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	ProductID domain.Nat `json:"productId"`
	Quantity  domain.Nat `json:"quantity"`
}

// UpdateItemRequest represents the quantity stepper payload
type UpdateItemRequest struct {
	Quantity domain.Nat `json:"quantity"`
}

// CartResponse is the priced cart returned to clients
type CartResponse struct {
	Items           []cart.ItemView `json:"items"`
	ItemCount       domain.Nat      `json:"itemCount"`
	Subtotal        domain.Nat      `json:"subtotal"`
	SubtotalDisplay string          `json:"subtotalDisplay"`
	Authenticated   bool            `json:"authenticated"`
	ReconcileError  string          `json:"reconcileError,omitempty"`
}

func newCartResponse(view cart.View, caller Caller, reconcileErr error) CartResponse {
	resp := CartResponse{
		Items:           view.Items,
		ItemCount:       view.ItemCount(),
		Subtotal:        view.Subtotal,
		SubtotalDisplay: money.Format(view.Subtotal),
		Authenticated:   caller.Principal.IsSome(),
	}
	if reconcileErr != nil {
		resp.ReconcileError = reconcileErr.Error()
	}
	return resp
}

// Services bundles the services the HTTP layer depends on
type Services struct {
	Catalog *CatalogService
	Carts   *CartService
	Orders  *OrderService
}
