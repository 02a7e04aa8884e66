package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/disputes"
	"github.com/angelmondragon/livehaul-backend/internal/fleet"
	"github.com/angelmondragon/livehaul-backend/internal/loads"
	"github.com/angelmondragon/livehaul-backend/internal/offers"
	"github.com/angelmondragon/livehaul-backend/internal/payments"
	"github.com/angelmondragon/livehaul-backend/internal/trips"
	"github.com/angelmondragon/livehaul-backend/pkg/db"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
	"github.com/angelmondragon/livehaul-backend/pkg/metrics"
)

const (
	defaultAutoReleaseDelay = 24 * time.Hour
	defaultBatchSize        = 100
)

// Config tunes the escrow behaviour of the engine.
type Config struct {
	AutoReleaseDelay     time.Duration
	AutoReleaseBatchSize int
	CommissionPercent    decimal.Decimal
}

// ServiceParams wires the lifecycle engine.
type ServiceParams struct {
	Tx       txRunner
	Loads    loads.Repository
	Offers   offers.Repository
	Trips    trips.Repository
	Payments payments.Repository
	Disputes disputes.Repository
	Fleet    fleet.Provisioner
	Logger   *logger.Logger
	Metrics  *metrics.LifecycleMetrics
	Config   Config
	Now      func() time.Time
}

type service struct {
	tx       txRunner
	loads    loads.Repository
	offers   offers.Repository
	trips    trips.Repository
	payments payments.Repository
	disputes disputes.Repository
	fleet    fleet.Provisioner
	logg     *logger.Logger
	metrics  *metrics.LifecycleMetrics
	cfg      Config
	now      func() time.Time
}

// NewService builds the lifecycle engine with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case params.Loads == nil:
		return nil, fmt.Errorf("loads repository required")
	case params.Offers == nil:
		return nil, fmt.Errorf("offers repository required")
	case params.Trips == nil:
		return nil, fmt.Errorf("trips repository required")
	case params.Payments == nil:
		return nil, fmt.Errorf("payments repository required")
	case params.Disputes == nil:
		return nil, fmt.Errorf("disputes repository required")
	case params.Fleet == nil:
		return nil, fmt.Errorf("fleet provisioner required")
	case params.Logger == nil:
		return nil, fmt.Errorf("logger required")
	}

	cfg := params.Config
	if cfg.AutoReleaseDelay <= 0 {
		cfg.AutoReleaseDelay = defaultAutoReleaseDelay
	}
	if cfg.AutoReleaseBatchSize <= 0 {
		cfg.AutoReleaseBatchSize = defaultBatchSize
	}
	if cfg.CommissionPercent.IsNegative() {
		return nil, fmt.Errorf("commission percent must not be negative")
	}

	now := params.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		tx:       params.Tx,
		loads:    params.Loads,
		offers:   params.Offers,
		trips:    params.Trips,
		payments: params.Payments,
		disputes: params.Disputes,
		fleet:    params.Fleet,
		logg:     params.Logger,
		metrics:  params.Metrics,
		cfg:      cfg,
		now:      now,
	}, nil
}

// repos are the repositories bound to one transaction.
type repos struct {
	loads    loads.Repository
	offers   offers.Repository
	trips    trips.Repository
	payments payments.Repository
	disputes disputes.Repository
}

func (s *service) bind(tx *gorm.DB) repos {
	return repos{
		loads:    s.loads.WithTx(tx),
		offers:   s.offers.WithTx(tx),
		trips:    s.trips.WithTx(tx),
		payments: s.payments.WithTx(tx),
		disputes: s.disputes.WithTx(tx),
	}
}

// inTx runs fn in a transaction. Untyped errors escaping the runner (begin
// or commit failures) are classified like any other store error.
func (s *service) inTx(ctx context.Context, fn func(r repos, tx *gorm.DB) error) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return fn(s.bind(tx), tx)
	})
	if err == nil || pkgerrors.As(err) != nil {
		return err
	}
	return storeErr(err, "transaction")
}

func (s *service) nowUTC() time.Time {
	return s.now().UTC()
}

// record logs a committed transition and counts the outcome.
func (s *service) record(ctx context.Context, operation string, err error, fields map[string]any) {
	s.metrics.ObserveTransition(operation, err)
	if fields == nil {
		fields = map[string]any{}
	}
	fields["operation"] = operation
	logCtx := s.logg.WithFields(ctx, fields)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeDependency || pkgerrors.CodeOf(err) == pkgerrors.CodeInternal {
			s.logg.Error(logCtx, "lifecycle operation failed", err)
			return
		}
		s.logg.Warn(s.logg.WithField(logCtx, "error", err.Error()), "lifecycle operation rejected")
		return
	}
	s.logg.Info(logCtx, "lifecycle transition committed")
}

func storeErr(err error, msg string) error {
	if db.IsConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, msg)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
}

func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "%s not found", entity)
	}
	return storeErr(err, "load "+entity)
}

func requireActor(actor Actor) error {
	if actor.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if !actor.Role.IsValid() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor role missing")
	}
	return nil
}

func requireAdmin(actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if !actor.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin role required")
	}
	return nil
}

func requireID(id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "%s required", name)
	}
	return nil
}

func (s *service) GetTrip(ctx context.Context, tripID uuid.UUID) (*models.Trip, error) {
	if err := requireID(tripID, "trip id"); err != nil {
		return nil, err
	}
	trip, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, lookupErr(err, "trip")
	}
	return trip, nil
}

func (s *service) GetTripPayment(ctx context.Context, tripID uuid.UUID) (*models.Payment, error) {
	if err := requireID(tripID, "trip id"); err != nil {
		return nil, err
	}
	payment, err := s.payments.FindByTripID(ctx, tripID)
	if err != nil {
		return nil, lookupErr(err, "payment")
	}
	return payment, nil
}

func (s *service) ListPaymentDisputes(ctx context.Context, paymentID uuid.UUID) ([]models.Dispute, error) {
	if err := requireID(paymentID, "payment id"); err != nil {
		return nil, err
	}
	if _, err := s.payments.FindByID(ctx, paymentID); err != nil {
		return nil, lookupErr(err, "payment")
	}
	list, err := s.disputes.ListByPayment(ctx, paymentID)
	if err != nil {
		return nil, storeErr(err, "list disputes")
	}
	return list, nil
}
