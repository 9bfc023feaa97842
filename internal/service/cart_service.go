package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/localcart"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/internal/storage"
	"github.com/jafarshop/storefront/pkg/errors"
)

// SessionIdleTTL is how long a device's session is kept without requests.
// An evicted session loses only its identity state; the guest cart stays in
// kv and the signed-in cart on the backend.
const SessionIdleTTL = 30 * time.Minute

const sessionSweepInterval = time.Minute

// CartService owns one cart session per device. Guest carts persist in kv
// under a per-device key; signed-in carts live on the backend.
type CartService struct {
	kv      storage.KV
	remote  cart.RemoteCart
	catalog *CatalogService
	metrics *metrics.Metrics
	logger  *zap.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	sessions  map[string]*sessionEntry
	lastSweep time.Time
}

type sessionEntry struct {
	session  *cart.Session
	lastUsed time.Time
}

// NewCartService creates a new cart service
func NewCartService(kv storage.KV, remote cart.RemoteCart, catalog *CatalogService, m *metrics.Metrics, logger *zap.Logger) *CartService {
	return &CartService{
		kv:       kv,
		remote:   remote,
		catalog:  catalog,
		metrics:  m,
		logger:   logger,
		idleTTL:  SessionIdleTTL,
		now:      time.Now,
		sessions: make(map[string]*sessionEntry),
	}
}

func (s *CartService) session(deviceID string) *cart.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sessionSweepInterval {
		s.evictIdle(now)
		s.lastSweep = now
	}

	if entry, ok := s.sessions[deviceID]; ok {
		entry.lastUsed = now
		return entry.session
	}
	logger := s.logger.With(zap.String("device_id", deviceID))
	local := localcart.NewStore(s.kv, localcart.KeyFor(deviceID), logger)
	reconciler := cart.NewReconciler(local, s.remote, s.metrics, logger)
	sess := cart.NewSession(local, s.remote, reconciler, logger)
	s.sessions[deviceID] = &sessionEntry{session: sess, lastUsed: now}
	return sess
}

// evictIdle drops sessions unused for idleTTL. Callers hold s.mu.
func (s *CartService) evictIdle(now time.Time) {
	evicted := 0
	for deviceID, entry := range s.sessions {
		if now.Sub(entry.lastUsed) >= s.idleTTL {
			delete(s.sessions, deviceID)
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Debug("Evicted idle cart sessions",
			zap.Int("evicted", evicted),
			zap.Int("remaining", len(s.sessions)),
		)
	}
}

// Sessions returns the number of live device sessions
func (s *CartService) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// resolve applies the caller's identity to its session. A failed guest cart
// merge does not fail the request; it is returned separately so the caller
// can surface it.
func (s *CartService) resolve(ctx context.Context, caller Caller) (*cart.Session, error) {
	sess := s.session(caller.DeviceID)
	if err := sess.Observe(ctx, caller.Principal); err != nil {
		s.logger.Warn("Guest cart reconciliation failed",
			zap.String("device_id", caller.DeviceID),
			zap.Error(err),
		)
		return sess, err
	}
	return sess, nil
}

// View returns the caller's priced cart for checkout. Unlike the cart
// endpoints it fails while a guest cart is still unmerged, so an order is
// never placed without the lines the caller added before signing in.
func (s *CartService) View(ctx context.Context, caller Caller) (cart.View, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	if reconcileErr != nil {
		return cart.View{}, mergeFailure(reconcileErr)
	}
	unmerged, err := sess.Unmerged(ctx)
	if err != nil {
		return cart.View{}, err
	}
	if unmerged {
		return cart.View{}, &errors.ErrRemoteCall{
			Operation: "mergeCart",
			Message:   "Items added before sign-in could not be merged into your cart. Sign out and back in to retry.",
		}
	}

	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return cart.View{}, err
	}
	return sess.View(ctx, catalog)
}

func mergeFailure(err error) error {
	var remote *errors.ErrRemoteCall
	if stderrors.As(err, &remote) {
		return remote
	}
	return &errors.ErrRemoteCall{Operation: "mergeCart", Message: err.Error(), Err: err}
}

// Cart returns the caller's cart
func (s *CartService) Cart(ctx context.Context, caller Caller) (CartResponse, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	return s.respond(ctx, sess, caller, reconcileErr)
}

// AddItem adds a product, clamping the quantity to what is left in stock. A
// missing quantity adds one unit.
func (s *CartService) AddItem(ctx context.Context, caller Caller, req AddItemRequest) (CartResponse, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartResponse{}, err
	}

	added, err := sess.Add(ctx, catalog, req.ProductID, req.Quantity)
	if err != nil {
		return CartResponse{}, err
	}
	if !added.Equal(req.Quantity) {
		s.logger.Debug("Add quantity clamped",
			zap.String("product_id", req.ProductID.String()),
			zap.String("requested", req.Quantity.String()),
			zap.String("added", added.String()),
		)
	}
	return s.respond(ctx, sess, caller, reconcileErr)
}

// UpdateItem sets a line's quantity within [1, stock]
func (s *CartService) UpdateItem(ctx context.Context, caller Caller, productID domain.Nat, req UpdateItemRequest) (CartResponse, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartResponse{}, err
	}
	if err := sess.UpdateQuantity(ctx, catalog, productID, req.Quantity); err != nil {
		return CartResponse{}, err
	}
	return s.respond(ctx, sess, caller, reconcileErr)
}

// RemoveItem deletes a line
func (s *CartService) RemoveItem(ctx context.Context, caller Caller, productID domain.Nat) (CartResponse, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	if err := sess.Remove(ctx, productID); err != nil {
		return CartResponse{}, err
	}
	return s.respond(ctx, sess, caller, reconcileErr)
}

// Clear empties the caller's active cart
func (s *CartService) Clear(ctx context.Context, caller Caller) (CartResponse, error) {
	sess, reconcileErr := s.resolve(ctx, caller)
	if err := sess.Clear(ctx); err != nil {
		return CartResponse{}, err
	}
	return s.respond(ctx, sess, caller, reconcileErr)
}

func (s *CartService) respond(ctx context.Context, sess *cart.Session, caller Caller, reconcileErr error) (CartResponse, error) {
	catalog, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return CartResponse{}, err
	}
	view, err := sess.View(ctx, catalog)
	if err != nil {
		return CartResponse{}, err
	}
	return newCartResponse(view, caller, reconcileErr), nil
}
