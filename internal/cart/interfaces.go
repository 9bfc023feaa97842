package cart

import (
	"context"

	"github.com/jafarshop/storefront/internal/domain"
)

// LocalCart is the device-local guest cart (see localcart.Store).
type LocalCart interface {
	Read(ctx context.Context) ([]domain.CartLine, error)
	Add(ctx context.Context, productID, quantity domain.Nat) error
	SetQuantity(ctx context.Context, productID, quantity domain.Nat) error
	Remove(ctx context.Context, productID domain.Nat) error
	Clear(ctx context.Context) error
}

// RemoteCart is the authenticated server-held cart (see backend.Gateway).
// Implementations read the caller principal from ctx.
type RemoteCart interface {
	Get(ctx context.Context) ([]domain.CartLine, error)
	Add(ctx context.Context, productID, quantity domain.Nat) error
	SetQuantity(ctx context.Context, productID, quantity domain.Nat) error
	Remove(ctx context.Context, productID domain.Nat) error
	Clear(ctx context.Context) error
	Merge(ctx context.Context, lines []domain.CartLine) error
}
