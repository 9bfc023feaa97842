package backend

import "github.com/jafarshop/storefront/internal/domain"

// AddToCartMutation adds quantity of a product to the caller's cart
const AddToCartMutation = `
mutation addToCart($productId: Nat!, $quantity: Nat!) {
  addToCart(productId: $productId, quantity: $quantity)
}
`

// UpdateCartItemMutation replaces the quantity of a cart line
const UpdateCartItemMutation = `
mutation updateCartItem($productId: Nat!, $quantity: Nat!) {
  updateCartItem(productId: $productId, quantity: $quantity)
}
`

// RemoveFromCartMutation deletes a cart line
const RemoveFromCartMutation = `
mutation removeFromCart($productId: Nat!) {
  removeFromCart(productId: $productId)
}
`

// ClearCartMutation empties the caller's cart
const ClearCartMutation = `
mutation clearCart {
  clearCart
}
`

// MergeCartMutation folds guest cart lines into the caller's cart
const MergeCartMutation = `
mutation mergeCart($items: [CartItemInput!]!) {
  mergeCart(items: $items)
}
`

// PlaceOrderMutation turns the caller's current cart into an order
const PlaceOrderMutation = `
mutation placeOrder($shippingAddress: String!, $contactInfo: String!) {
  placeOrder(shippingAddress: $shippingAddress, contactInfo: $contactInfo) {` + orderFields + `}
}
`

// CartItemInput represents one line of a mergeCart call
type CartItemInput struct {
	ProductID domain.Nat `json:"productId"`
	Quantity  domain.Nat `json:"quantity"`
}
