package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metrics"
)

// Reconciler folds the guest cart into the caller's remote cart at sign-in.
//
// It is only safe to run on the anonymous -> authenticated transition: after
// a successful run the local cart is empty, but a second run with fresh local
// lines would add them again.
type Reconciler struct {
	local   LocalCart
	remote  RemoteCart
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewReconciler(local LocalCart, remote RemoteCart, m *metrics.Metrics, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		local:   local,
		remote:  remote,
		metrics: m,
		logger:  logger,
	}
}

// Reconcile merges local lines into the remote cart, then clears the local
// cart. The local cart is cleared only after the merge is acknowledged; on
// merge failure it is left untouched and the error is returned.
func (r *Reconciler) Reconcile(ctx context.Context) error {
	caller := domain.PrincipalFromContext(ctx).OrElse("").Fingerprint()

	lines, err := r.local.Read(ctx)
	if err != nil {
		r.metrics.IncReconciliation("failed")
		return err
	}
	if len(lines) == 0 {
		r.metrics.IncReconciliation("skipped")
		return nil
	}

	if err := r.remote.Merge(ctx, lines); err != nil {
		r.metrics.IncReconciliation("failed")
		r.logger.Warn("Guest cart merge failed, keeping local cart",
			zap.String("caller", caller),
			zap.Int("lines", len(lines)),
			zap.Error(err),
		)
		return fmt.Errorf("failed to merge guest cart: %w", err)
	}

	if err := r.local.Clear(ctx); err != nil {
		// The merge already landed; a leftover local cart would be merged
		// twice on the next sign-in.
		r.metrics.IncReconciliation("failed")
		r.logger.Error("Guest cart merged but local clear failed",
			zap.String("caller", caller),
			zap.Error(err),
		)
		return err
	}

	r.metrics.IncReconciliation("merged")
	r.logger.Info("Guest cart merged",
		zap.String("caller", caller),
		zap.Int("lines", len(lines)),
	)
	return nil
}
