package metrics

import "github.com/prometheus/client_golang/prometheus"

// StatusMappingMetrics counts persisted status values the enum mapping did
// not recognise.
type StatusMappingMetrics struct {
	unknown *prometheus.CounterVec
}

func NewStatusMappingMetrics(reg prometheus.Registerer) *StatusMappingMetrics {
	if reg == nil {
		return &StatusMappingMetrics{}
	}
	unknown := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "status_mapping_unknown_total",
		Help: "Status values that fell back to the safe default during mapping.",
	}, []string{"kind"})
	reg.MustRegister(unknown)
	return &StatusMappingMetrics{unknown: unknown}
}

func (s *StatusMappingMetrics) IncUnknown(kind string) {
	if s == nil || s.unknown == nil {
		return
	}
	s.unknown.WithLabelValues(normalizeLabel(kind)).Inc()
}
