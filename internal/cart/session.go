package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// Session routes one device's cart operations by identity state. While no
// caller identity is present every read and write goes to the local cart and
// the remote cart is never touched; once a principal is present the remote
// cart is the only source of truth.
type Session struct {
	mu       sync.Mutex
	identity domain.Option[domain.Principal]

	local      LocalCart
	remote     RemoteCart
	reconciler *Reconciler
	logger     *zap.Logger
}

func NewSession(local LocalCart, remote RemoteCart, reconciler *Reconciler, logger *zap.Logger) *Session {
	return &Session{
		identity:   domain.None[domain.Principal](),
		local:      local,
		remote:     remote,
		reconciler: reconciler,
		logger:     logger,
	}
}

// Identity returns the identity state last observed
func (s *Session) Identity() domain.Option[domain.Principal] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Observe applies the caller identity seen on the current request. The
// anonymous -> authenticated transition runs the reconciler exactly once; a
// merge error is returned but the session still switches to the remote cart,
// and the untouched local cart is retried on the next such transition.
func (s *Session) Observe(ctx context.Context, identity domain.Option[domain.Principal]) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.identity
	s.identity = identity

	principal, signedIn := identity.Get()
	if previous.IsSome() || !signedIn {
		if previous.IsSome() && !signedIn {
			s.logger.Debug("Caller signed out, routing cart to local store")
		}
		return nil
	}

	return s.reconciler.Reconcile(domain.ContextWithPrincipal(ctx, principal))
}

// Unmerged reports whether a signed-in session still holds guest lines. That
// happens when the merge at sign-in failed; the lines wait for the next
// sign-in.
func (s *Session) Unmerged(ctx context.Context) (bool, error) {
	if s.Identity().IsNone() {
		return false, nil
	}
	lines, err := s.local.Read(ctx)
	if err != nil {
		return false, err
	}
	return len(lines) > 0, nil
}

// route returns the context to use for the active cart and whether it is remote
func (s *Session) route(ctx context.Context) (context.Context, bool) {
	if principal, ok := s.Identity().Get(); ok {
		return domain.ContextWithPrincipal(ctx, principal), true
	}
	return ctx, false
}

// Lines returns the raw lines of the active cart
func (s *Session) Lines(ctx context.Context) ([]domain.CartLine, error) {
	ctx, remote := s.route(ctx)
	if remote {
		return s.remote.Get(ctx)
	}
	return s.local.Read(ctx)
}

// View returns the active cart priced against catalog
func (s *Session) View(ctx context.Context, catalog *Catalog) (View, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return View{}, err
	}
	return BuildView(lines, catalog), nil
}

// Add puts up to requested units of a product in the cart. The amount is
// clamped so the line never exceeds stock; the clamped amount is returned.
func (s *Session) Add(ctx context.Context, catalog *Catalog, productID, requested domain.Nat) (domain.Nat, error) {
	product, ok := catalog.Lookup(productID).Get()
	if !ok {
		return domain.Nat{}, &errors.ErrNotFound{Resource: "product", ID: productID.String()}
	}

	lines, err := s.Lines(ctx)
	if err != nil {
		return domain.Nat{}, err
	}
	existing := domain.Nat{}
	if line, found := domain.FindLine(lines, productID).Get(); found {
		existing = line.Quantity
	}

	quantity, ok := ClampQuantity(requested, product.Stock.Sub(existing))
	if !ok {
		return domain.Nat{}, &errors.ErrStockExceeded{
			ProductID: productID.String(),
			Requested: existing.Add(requested).String(),
			Available: product.Stock.String(),
		}
	}

	ctx, remote := s.route(ctx)
	if remote {
		err = s.remote.Add(ctx, productID, quantity)
	} else {
		err = s.local.Add(ctx, productID, quantity)
	}
	if err != nil {
		return domain.Nat{}, err
	}
	return quantity, nil
}

// UpdateQuantity sets a line's quantity. Requests below 1 or above current
// stock are rejected before reaching either cart.
func (s *Session) UpdateQuantity(ctx context.Context, catalog *Catalog, productID, quantity domain.Nat) error {
	product, ok := catalog.Lookup(productID).Get()
	if !ok {
		return &errors.ErrNotFound{Resource: "product", ID: productID.String()}
	}
	if err := CheckQuantity(product, quantity); err != nil {
		return err
	}

	ctx, remote := s.route(ctx)
	if remote {
		return s.remote.SetQuantity(ctx, productID, quantity)
	}
	return s.local.SetQuantity(ctx, productID, quantity)
}

// Remove deletes a line from the active cart
func (s *Session) Remove(ctx context.Context, productID domain.Nat) error {
	ctx, remote := s.route(ctx)
	if remote {
		return s.remote.Remove(ctx, productID)
	}
	return s.local.Remove(ctx, productID)
}

// Clear empties the active cart
func (s *Session) Clear(ctx context.Context) error {
	ctx, remote := s.route(ctx)
	if remote {
		return s.remote.Clear(ctx)
	}
	return s.local.Clear(ctx)
}
