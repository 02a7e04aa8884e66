package lifecycle

import (
	"bytes"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/livehaul-backend/pkg/config"
	"github.com/angelmondragon/livehaul-backend/pkg/db"
	"github.com/angelmondragon/livehaul-backend/pkg/db/dbtest"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
	"github.com/angelmondragon/livehaul-backend/pkg/metrics"
)

func TestNewFromDB(t *testing.T) {
	client := db.NewWithConn(dbtest.Open(t))
	logg := logger.New(logger.Options{ServiceName: "bootstrap-test", Output: &bytes.Buffer{}})

	svc, err := NewFromDB(client, logg, nil, config.EscrowConfig{AutoReleaseBatchSize: 7, CommissionPercent: "2.5"})
	require.NoError(t, err)
	cfg := svc.(*service).cfg
	assert.Equal(t, 7, cfg.AutoReleaseBatchSize)
	assert.Equal(t, defaultAutoReleaseDelay, cfg.AutoReleaseDelay)
	assert.Equal(t, "2.5", cfg.CommissionPercent.String())

	_, err = NewFromDB(nil, logg, nil, config.EscrowConfig{})
	assert.Error(t, err)
}

func TestWatchStatusMapping(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "bootstrap-test", Output: &buf})
	reg := prometheus.NewRegistry()
	m := metrics.NewStatusMappingMetrics(reg)

	WatchStatusMapping(logg, m)
	t.Cleanup(func() { enums.SetUnknownStatusObserver(nil) })

	assert.Equal(t, enums.PaymentStatusAwaitingFunding, enums.PaymentStatusFromPersisted("mystery"))

	count, err := testutil.GatherAndCount(reg, "status_mapping_unknown_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Contains(t, buf.String(), "unknown persisted status mapped to default")
	assert.Contains(t, buf.String(), "mystery")
}
