package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/checkout"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/pkg/errors"
)

// OrderSource is the backend order surface (see backend.Orders).
type OrderSource interface {
	checkout.OrderPlacer
	Order(ctx context.Context, id domain.Nat) (*domain.Order, error)
	UserOrders(ctx context.Context) ([]domain.Order, error)
	CallerProfile(ctx context.Context) (domain.Option[domain.UserProfile], error)
}

type OrderService struct {
	orders   OrderSource
	carts    *CartService
	pipeline *checkout.Pipeline
	logger   *zap.Logger
}

// NewOrderService creates a new order service. Placements go through a
// single-flight guard keyed by caller.
func NewOrderService(orders OrderSource, carts *CartService, m *metrics.Metrics, logger *zap.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		carts:    carts,
		pipeline: checkout.NewPipeline(orders, checkout.NewGuard(), m, logger),
		logger:   logger,
	}
}

func authenticated(ctx context.Context, caller Caller) (context.Context, error) {
	principal, ok := caller.Principal.Get()
	if !ok {
		return ctx, &errors.ErrUnauthorized{Message: "please sign in to continue"}
	}
	return domain.ContextWithPrincipal(ctx, principal), nil
}

// Checkout places an order for the caller's current cart
func (s *OrderService) Checkout(ctx context.Context, caller Caller, form domain.CheckoutForm) (*checkout.Attempt, error) {
	ctx, err := authenticated(ctx, caller)
	if err != nil {
		return nil, err
	}

	view, err := s.carts.View(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.pipeline.Place(ctx, view, form)
}

// Defaults returns a checkout form pre-filled from the caller's profile
func (s *OrderService) Defaults(ctx context.Context, caller Caller) (domain.CheckoutForm, error) {
	ctx, err := authenticated(ctx, caller)
	if err != nil {
		return domain.CheckoutForm{}, err
	}

	profile, err := s.orders.CallerProfile(ctx)
	if err != nil {
		return domain.CheckoutForm{}, err
	}
	return checkout.FormFromProfile(profile), nil
}

// Order returns one of the caller's orders
func (s *OrderService) Order(ctx context.Context, caller Caller, id domain.Nat) (*domain.Order, error) {
	ctx, err := authenticated(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.orders.Order(ctx, id)
}

// ListOrders returns the caller's order history
func (s *OrderService) ListOrders(ctx context.Context, caller Caller) ([]domain.Order, error) {
	ctx, err := authenticated(ctx, caller)
	if err != nil {
		return nil, err
	}
	return s.orders.UserOrders(ctx)
}
