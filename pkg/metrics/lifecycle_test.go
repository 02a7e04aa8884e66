package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestLifecycleMetricsCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLifecycleMetrics(reg)

	m.ObserveTransition("accept_offer", nil)
	m.ObserveTransition("accept_offer", errors.New("conflict"))
	m.ObserveTransition("accept_offer", nil)
	m.AddAutoReleased(3)
	m.AddAutoReleased(0)

	require.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept_offer", OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.transitions.WithLabelValues("accept_offer", OutcomeError)))
	require.Equal(t, 3.0, testutil.ToFloat64(m.autoReleased))
}

func TestStatusMappingMetricsCountsByKind(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStatusMappingMetrics(reg)
	m.IncUnknown("trip")
	m.IncUnknown("trip")
	m.IncUnknown("")

	mfs, err := reg.Gather()
	require.NoError(t, err)

	got, err := fetchCounterValue(mfs, "status_mapping_unknown_total", "kind", "trip")
	require.NoError(t, err)
	require.Equal(t, 2.0, got)

	got, err = fetchCounterValue(mfs, "status_mapping_unknown_total", "kind", "unknown")
	require.NoError(t, err)
	require.Equal(t, 1.0, got)
}
