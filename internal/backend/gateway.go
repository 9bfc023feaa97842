package backend

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
)

// Gateway is the typed contract over the backend's cart operations. It keeps
// no local state: every call is one round trip and errors propagate unchanged.
type Gateway struct {
	client *Client
}

// NewGateway creates a cart gateway over client
func NewGateway(client *Client) *Gateway {
	return &Gateway{client: client}
}

func (g *Gateway) Get(ctx context.Context) ([]domain.CartLine, error) {
	resp, err := g.client.Execute(ctx, "getCart", CartQuery, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Cart []domain.CartLine `json:"cart"`
	}
	if err := decode("getCart", resp, &result); err != nil {
		return nil, err
	}
	if result.Cart == nil {
		return []domain.CartLine{}, nil
	}
	return result.Cart, nil
}

func (g *Gateway) Add(ctx context.Context, productID, quantity domain.Nat) error {
	_, err := g.client.Execute(ctx, "addToCart", AddToCartMutation, map[string]any{
		"productId": productID,
		"quantity":  quantity,
	})
	return err
}

func (g *Gateway) SetQuantity(ctx context.Context, productID, quantity domain.Nat) error {
	_, err := g.client.Execute(ctx, "updateCartItem", UpdateCartItemMutation, map[string]any{
		"productId": productID,
		"quantity":  quantity,
	})
	return err
}

func (g *Gateway) Remove(ctx context.Context, productID domain.Nat) error {
	_, err := g.client.Execute(ctx, "removeFromCart", RemoveFromCartMutation, map[string]any{
		"productId": productID,
	})
	return err
}

func (g *Gateway) Clear(ctx context.Context) error {
	_, err := g.client.Execute(ctx, "clearCart", ClearCartMutation, nil)
	return err
}

// Merge sends lines to be summed into the caller's cart on the backend
func (g *Gateway) Merge(ctx context.Context, lines []domain.CartLine) error {
	items := make([]CartItemInput, 0, len(lines))
	for _, line := range lines {
		items = append(items, CartItemInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	_, err := g.client.Execute(ctx, "mergeCart", MergeCartMutation, map[string]any{
		"items": items,
	})
	return err
}
