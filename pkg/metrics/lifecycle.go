package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcomes recorded by LifecycleMetrics.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// LifecycleMetrics records lifecycle engine transitions.
type LifecycleMetrics struct {
	transitions  *prometheus.CounterVec
	autoReleased prometheus.Counter
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lifecycle_transitions_total",
		Help: "Lifecycle engine operations by outcome.",
	}, []string{"operation", "outcome"})
	autoReleased := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "escrow_auto_released_total",
		Help: "Payments released to the hauler by the auto-release batch.",
	})
	reg.MustRegister(transitions, autoReleased)
	return &LifecycleMetrics{transitions: transitions, autoReleased: autoReleased}
}

// ObserveTransition counts one operation attempt; err selects the outcome.
func (l *LifecycleMetrics) ObserveTransition(operation string, err error) {
	if l == nil || l.transitions == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	l.transitions.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// AddAutoReleased adds n released payments.
func (l *LifecycleMetrics) AddAutoReleased(n int) {
	if l == nil || l.autoReleased == nil || n <= 0 {
		return
	}
	l.autoReleased.Add(float64(n))
}
