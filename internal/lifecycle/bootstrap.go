package lifecycle

import (
	"context"
	"fmt"

	"github.com/angelmondragon/livehaul-backend/internal/disputes"
	"github.com/angelmondragon/livehaul-backend/internal/fleet"
	"github.com/angelmondragon/livehaul-backend/internal/loads"
	"github.com/angelmondragon/livehaul-backend/internal/offers"
	"github.com/angelmondragon/livehaul-backend/internal/payments"
	"github.com/angelmondragon/livehaul-backend/internal/trips"
	"github.com/angelmondragon/livehaul-backend/pkg/config"
	"github.com/angelmondragon/livehaul-backend/pkg/db"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
	"github.com/angelmondragon/livehaul-backend/pkg/metrics"
)

// NewFromDB wires the engine over the gorm repositories of dbClient.
func NewFromDB(dbClient *db.Client, logg *logger.Logger, m *metrics.LifecycleMetrics, cfg config.EscrowConfig) (Service, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	conn := dbClient.DB()
	provisioner, err := fleet.NewProvisioner(fleet.NewRepository(conn))
	if err != nil {
		return nil, err
	}
	return NewService(ServiceParams{
		Tx:       dbClient,
		Loads:    loads.NewRepository(conn),
		Offers:   offers.NewRepository(conn),
		Trips:    trips.NewRepository(conn),
		Payments: payments.NewRepository(conn),
		Disputes: disputes.NewRepository(conn),
		Fleet:    provisioner,
		Logger:   logg,
		Metrics:  m,
		Config: Config{
			AutoReleaseDelay:     cfg.AutoReleaseDelay,
			AutoReleaseBatchSize: cfg.AutoReleaseBatchSize,
			CommissionPercent:    cfg.Commission(),
		},
	})
}

// WatchStatusMapping reports persisted status values that fall back to a
// default: one warn log and one counter increment per occurrence.
func WatchStatusMapping(logg *logger.Logger, m *metrics.StatusMappingMetrics) {
	enums.SetUnknownStatusObserver(func(kind, raw string) {
		m.IncUnknown(kind)
		if logg == nil {
			return
		}
		ctx := logg.WithFields(context.Background(), map[string]any{
			"status_kind": kind,
			"raw_status":  raw,
		})
		logg.Warn(ctx, "unknown persisted status mapped to default")
	})
}
