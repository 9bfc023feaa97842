package checkout

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
	"github.com/jafarshop/storefront/pkg/errors"
)

// ConfirmationPath prefixes the route shown after a confirmed order
const ConfirmationPath = "/order-confirmation/"

// OrderPlacer submits a canonicalized order for the principal on ctx (see backend.Orders).
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, shippingAddress, contactInfo string) (*domain.Order, error)
}

// Attempt is one run of the placement state machine.
type Attempt struct {
	State             domain.PlacementState `json:"state"`
	FieldErrors       FieldErrors           `json:"fieldErrors,omitempty"`
	Order             *domain.Order         `json:"order,omitempty"`
	ConfirmationRoute string                `json:"confirmationRoute,omitempty"`
}

func newAttempt() *Attempt {
	return &Attempt{State: domain.PlacementIdle}
}

func (a *Attempt) advance(next domain.PlacementState) error {
	if !a.State.CanTransitionTo(next) {
		return &errors.ErrInvalidStateTransition{From: a.State, To: next}
	}
	a.State = next
	return nil
}

// ConfirmationRoute returns the navigation target for a placed order
func ConfirmationRoute(orderID domain.Nat) string {
	return ConfirmationPath + orderID.String()
}

// Pipeline validates checkout input and submits exactly one order per attempt.
// It never retries and never mutates the cart.
type Pipeline struct {
	placer  OrderPlacer
	guard   *Guard
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewPipeline creates a pipeline. guard may be nil, in which case concurrent
// attempts for the same caller are not collapsed.
func NewPipeline(placer OrderPlacer, guard *Guard, m *metrics.Metrics, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		placer:  placer,
		guard:   guard,
		metrics: m,
		logger:  logger,
	}
}

// Place runs one attempt. A missing principal or an empty view fails before
// validation. On validation failure the returned error is *errors.ErrValidation
// and no request is sent; on backend failure it is the backend's error.
func (p *Pipeline) Place(ctx context.Context, view cart.View, form domain.CheckoutForm) (*Attempt, error) {
	attempt := newAttempt()

	principal, ok := domain.PrincipalFromContext(ctx).Get()
	if !ok {
		return attempt, &errors.ErrUnauthorized{Message: "please sign in to place an order"}
	}
	if view.IsEmpty() {
		return attempt, &errors.ErrEmptyCart{}
	}
	caller := principal.Fingerprint()
	logger := p.logger.With(zap.String("caller", caller))

	if err := p.step(logger, attempt, domain.PlacementValidating); err != nil {
		return attempt, err
	}
	fieldErrs, err := Validate(form)
	if err != nil {
		logger.Error("Checkout form validation could not run", zap.Error(err))
		return attempt, err
	}
	if len(fieldErrs) > 0 {
		attempt.FieldErrors = fieldErrs
		if err := p.step(logger, attempt, domain.PlacementInvalid); err != nil {
			return attempt, err
		}
		return attempt, &errors.ErrValidation{Fields: fieldErrs}
	}

	if err := p.step(logger, attempt, domain.PlacementSubmitting); err != nil {
		return attempt, err
	}
	shippingAddress, contactInfo := Canonicalize(form)
	order, err := p.submit(ctx, caller, shippingAddress, contactInfo)
	if err != nil {
		if stepErr := p.step(logger, attempt, domain.PlacementFailed); stepErr != nil {
			return attempt, stepErr
		}
		logger.Warn("Order placement failed", zap.Error(err))
		return attempt, err
	}

	attempt.Order = order
	attempt.ConfirmationRoute = ConfirmationRoute(order.ID)
	if err := p.step(logger, attempt, domain.PlacementConfirmed); err != nil {
		return attempt, err
	}
	logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("total", order.Total.String()),
	)
	return attempt, nil
}

func (p *Pipeline) submit(ctx context.Context, caller, shippingAddress, contactInfo string) (*domain.Order, error) {
	if p.guard == nil {
		return p.placer.PlaceOrder(ctx, shippingAddress, contactInfo)
	}

	// Joiners wait on the first caller's request, so it must outlive that
	// caller's cancellation. The backend client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	key := placementKey(caller, shippingAddress, contactInfo)
	order, joined, err := p.guard.Do(key, func() (*domain.Order, error) {
		return p.placer.PlaceOrder(shared, shippingAddress, contactInfo)
	})
	if joined {
		p.logger.Debug("Joined in-flight order placement", zap.String("caller", caller))
	}
	return order, err
}

// placementKey identifies one order: the same caller submitting the same
// address and contact details.
func placementKey(caller, shippingAddress, contactInfo string) string {
	return strings.Join([]string{caller, shippingAddress, contactInfo}, "\x00")
}

func (p *Pipeline) step(logger *zap.Logger, attempt *Attempt, next domain.PlacementState) error {
	from := attempt.State
	if err := attempt.advance(next); err != nil {
		logger.Error("Invalid placement transition", zap.Error(err))
		return err
	}
	logger.Debug("Placement state changed",
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	if next.IsTerminal() {
		p.metrics.IncPlacement(string(next))
	}
	return nil
}
