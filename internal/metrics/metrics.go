package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records backend traffic, reconciliation and placement outcomes.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	backendDuration *prometheus.HistogramVec
	backendCalls    *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	placements      *prometheus.CounterVec
}

// New registers the storefront metrics on the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	backendDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_backend_call_duration_seconds",
		Help:    "Duration of backend RPC calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	backendCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_backend_calls_total",
		Help: "Backend RPC calls by operation and outcome.",
	}, []string{"operation", "outcome"})
	reconciliations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_reconciliations_total",
		Help: "Guest cart reconciliations at sign-in by outcome.",
	}, []string{"outcome"})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_order_placements_total",
		Help: "Order placement attempts by final state.",
	}, []string{"state"})
	reg.MustRegister(backendDuration, backendCalls, reconciliations, placements)
	return &Metrics{
		backendDuration: backendDuration,
		backendCalls:    backendCalls,
		reconciliations: reconciliations,
		placements:      placements,
	}
}

// ObserveBackendCall records one backend round trip
func (m *Metrics) ObserveBackendCall(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.backendDuration.WithLabelValues(operation).Observe(d.Seconds())
	m.backendCalls.WithLabelValues(operation, outcome).Inc()
}

// IncReconciliation counts a reconciliation outcome: skipped, merged or failed
func (m *Metrics) IncReconciliation(outcome string) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(outcome).Inc()
}

// IncPlacement counts a placement attempt that ended in state
func (m *Metrics) IncPlacement(state string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(state).Inc()
}
