package lifecycle

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/internal/disputes"
	"github.com/angelmondragon/livehaul-backend/internal/fleet"
	"github.com/angelmondragon/livehaul-backend/internal/loads"
	"github.com/angelmondragon/livehaul-backend/internal/offers"
	"github.com/angelmondragon/livehaul-backend/internal/payments"
	"github.com/angelmondragon/livehaul-backend/internal/trips"
	"github.com/angelmondragon/livehaul-backend/pkg/db"
	"github.com/angelmondragon/livehaul-backend/pkg/db/dbtest"
	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
	"github.com/angelmondragon/livehaul-backend/pkg/metrics"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	svc   Service
	db    *gorm.DB
	clock *testClock
	logs  *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := dbtest.Open(t)
	prov, err := fleet.NewProvisioner(fleet.NewRepository(conn))
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	clock := &testClock{now: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)}
	svc, err := NewService(ServiceParams{
		Tx:       db.NewWithConn(conn),
		Loads:    loads.NewRepository(conn),
		Offers:   offers.NewRepository(conn),
		Trips:    trips.NewRepository(conn),
		Payments: payments.NewRepository(conn),
		Disputes: disputes.NewRepository(conn),
		Fleet:    prov,
		Logger:   logger.New(logger.Options{ServiceName: "lifecycle-test", Level: zerolog.DebugLevel, Output: logs}),
		Metrics:  metrics.NewLifecycleMetrics(prometheus.NewRegistry()),
		Config: Config{
			AutoReleaseDelay:     24 * time.Hour,
			AutoReleaseBatchSize: 50,
			CommissionPercent:    decimal.RequireFromString("10"),
		},
		Now: clock.Now,
	})
	require.NoError(t, err)
	return &harness{svc: svc, db: conn, clock: clock, logs: logs}
}

func shipper(p dbtest.Parties) Actor { return Actor{UserID: p.ShipperID, Role: enums.RoleShipper} }
func hauler(p dbtest.Parties) Actor  { return Actor{UserID: p.HaulerID, Role: enums.RoleHauler} }
func admin() Actor                   { return Actor{UserID: uuid.New(), Role: enums.RoleAdmin} }

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, pkgerrors.CodeOf(err), err.Error())
}

func reload[T any](t *testing.T, conn *gorm.DB, id uuid.UUID) *T {
	t.Helper()
	var out T
	require.NoError(t, conn.Where("id = ?", id).First(&out).Error)
	return &out
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestAcceptOfferCreatesTripAndPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()

	load := dbtest.SeedLoad(t, h.db, p, enums.LoadStatusPublished, "1500.00")
	offer := dbtest.SeedOffer(t, h.db, load, p.HaulerID, enums.OfferStatusPending, "1450.00")
	rival := dbtest.SeedOffer(t, h.db, load, uuid.New(), enums.OfferStatusPending, "1400.00")

	res, err := h.svc.AcceptOffer(ctx, AcceptOfferInput{OfferID: offer.ID, LoadID: load.ID, Actor: shipper(p)})
	require.NoError(t, err)

	assert.Equal(t, enums.OfferStatusAccepted, res.Offer.Status)
	assert.Equal(t, enums.LoadStatusAwaitingEscrow, res.Load.Status)
	require.NotNil(t, res.Load.AwardedOfferID)
	assert.Equal(t, offer.ID, *res.Load.AwardedOfferID)

	assert.Equal(t, enums.TripStatusPendingEscrow, res.Trip.Status)
	assert.Equal(t, p.HaulerID, res.Trip.HaulerID)
	assert.NotNil(t, res.Trip.DriverID)
	assert.NotNil(t, res.Trip.VehicleID)

	assert.Equal(t, enums.PaymentStatusAwaitingFunding, res.Payment.Status)
	assert.Equal(t, p.ShipperID, res.Payment.PayerUserID)
	assert.Equal(t, p.HaulerID, res.Payment.PayeeUserID)
	assert.True(t, res.Payment.Amount.Equal(decimal.RequireFromString("1450.00")))
	assert.True(t, res.Payment.PlatformFee.Equal(decimal.RequireFromString("145.00")))
	assert.True(t, res.Payment.IsEscrow)
	assert.Nil(t, res.Payment.AutoReleaseAt)

	assert.Equal(t, enums.OfferStatusExpired, reload[models.LoadOffer](t, h.db, rival.ID).Status)
	assert.Contains(t, h.logs.String(), "lifecycle transition committed")
}

func TestAcceptOfferSecondAwardConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()

	load := dbtest.SeedLoad(t, h.db, p, enums.LoadStatusPublished, "900.00")
	first := dbtest.SeedOffer(t, h.db, load, p.HaulerID, enums.OfferStatusPending, "900.00")
	second := dbtest.SeedOffer(t, h.db, load, uuid.New(), enums.OfferStatusPending, "850.00")

	_, err := h.svc.AcceptOffer(ctx, AcceptOfferInput{OfferID: first.ID, LoadID: load.ID, Actor: shipper(p)})
	require.NoError(t, err)

	_, err = h.svc.AcceptOffer(ctx, AcceptOfferInput{OfferID: second.ID, LoadID: load.ID, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeConflict)

	var tripCount int64
	require.NoError(t, h.db.Model(&models.Trip{}).Where("load_id = ?", load.ID).Count(&tripCount).Error)
	assert.EqualValues(t, 1, tripCount)
}

func TestAcceptOfferRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()

	load := dbtest.SeedLoad(t, h.db, p, enums.LoadStatusPublished, "500.00")
	offer := dbtest.SeedOffer(t, h.db, load, p.HaulerID, enums.OfferStatusPending, "500.00")
	draft := dbtest.SeedLoad(t, h.db, p, enums.LoadStatusDraft, "500.00")
	draftOffer := dbtest.SeedOffer(t, h.db, draft, p.HaulerID, enums.OfferStatusPending, "500.00")
	wrong := decimal.RequireFromString("499.99")

	cases := []struct {
		name  string
		input AcceptOfferInput
		code  pkgerrors.Code
	}{
		{"missing actor", AcceptOfferInput{OfferID: offer.ID, LoadID: load.ID}, pkgerrors.CodeUnauthorized},
		{"not the shipper", AcceptOfferInput{OfferID: offer.ID, LoadID: load.ID, Actor: hauler(p)}, pkgerrors.CodeForbidden},
		{"unknown offer", AcceptOfferInput{OfferID: uuid.New(), LoadID: load.ID, Actor: shipper(p)}, pkgerrors.CodeNotFound},
		{"offer on another load", AcceptOfferInput{OfferID: draftOffer.ID, LoadID: load.ID, Actor: shipper(p)}, pkgerrors.CodeValidation},
		{"amount mismatch", AcceptOfferInput{OfferID: offer.ID, LoadID: load.ID, Amount: &wrong, Actor: shipper(p)}, pkgerrors.CodeValidation},
		{"load not published", AcceptOfferInput{OfferID: draftOffer.ID, LoadID: draft.ID, Actor: shipper(p)}, pkgerrors.CodeInvalidState},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.svc.AcceptOffer(ctx, tc.input)
			requireCode(t, err, tc.code)
		})
	}

	assert.Equal(t, enums.OfferStatusPending, reload[models.LoadOffer](t, h.db, offer.ID).Status)
}

func TestHappyPathThroughAutoRelease(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()

	load := dbtest.SeedLoad(t, h.db, p, enums.LoadStatusPublished, "2000.00")
	offer := dbtest.SeedOffer(t, h.db, load, p.HaulerID, enums.OfferStatusPending, "2000.00")
	accepted, err := h.svc.AcceptOffer(ctx, AcceptOfferInput{OfferID: offer.ID, LoadID: load.ID, Actor: shipper(p)})
	require.NoError(t, err)
	tripID := accepted.Trip.ID

	_, err = h.svc.StartTrip(ctx, TripActionInput{TripID: tripID, Actor: hauler(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)

	_, err = h.svc.FundPayment(ctx, FundPaymentInput{TripID: tripID, Actor: hauler(p)})
	requireCode(t, err, pkgerrors.CodeForbidden)

	ref := "pi_123"
	funded, err := h.svc.FundPayment(ctx, FundPaymentInput{TripID: tripID, ProviderPaymentRef: &ref, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusEscrowFunded, funded.Status)
	require.NotNil(t, funded.FundedAt)
	assert.Equal(t, enums.TripStatusReadyToStart, reload[models.Trip](t, h.db, tripID).Status)

	again, err := h.svc.FundPayment(ctx, FundPaymentInput{TripID: tripID, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, funded.ID, again.ID)
	assert.Equal(t, enums.PaymentStatusEscrowFunded, again.Status)

	started, err := h.svc.StartTrip(ctx, TripActionInput{TripID: tripID, Actor: hauler(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusInProgress, started.Status)
	assert.Equal(t, enums.LoadStatusInTransit, reload[models.Load](t, h.db, load.ID).Status)

	_, err = h.svc.ConfirmDelivery(ctx, TripActionInput{TripID: tripID, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)

	delivered, err := h.svc.MarkDelivered(ctx, TripActionInput{TripID: tripID, Actor: hauler(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusDeliveredAwaitingConfirmation, delivered.Status)
	assert.Equal(t, enums.LoadStatusDelivered, reload[models.Load](t, h.db, load.ID).Status)

	confirmed, err := h.svc.ConfirmDelivery(ctx, TripActionInput{TripID: tripID, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusDeliveredConfirmed, confirmed.Trip.Status)
	require.NotNil(t, confirmed.Payment.AutoReleaseAt)
	assert.True(t, confirmed.Payment.AutoReleaseAt.Equal(h.clock.now.Add(24*time.Hour)))

	released, err := h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	assert.Empty(t, released)

	h.clock.Advance(25 * time.Hour)
	released, err = h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	require.Len(t, released, 1)
	assert.Equal(t, enums.PaymentStatusReleasedToHauler, released[0].Payment.Status)
	assert.Nil(t, released[0].Payment.AutoReleaseAt)
	assert.NotNil(t, released[0].Payment.ReleasedAt)
	assert.Equal(t, enums.TripStatusClosed, released[0].Trip.Status)
	assert.Equal(t, enums.LoadStatusCompleted, released[0].Load.Status)

	released, err = h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	assert.Empty(t, released)

	_, err = h.svc.FundPayment(ctx, FundPaymentInput{TripID: tripID, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)
}

func TestConfirmDeliveryRollsBackWhenPaymentNotInEscrow(t *testing.T) {
	h := newHarness(t)
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDeliveredAwaitingConfirmation, enums.PaymentStatusAwaitingFunding, "300.00", nil)

	_, err := h.svc.ConfirmDelivery(context.Background(), TripActionInput{TripID: e.Trip.ID, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)

	trip := reload[models.Trip](t, h.db, e.Trip.ID)
	assert.Equal(t, enums.TripStatusDeliveredAwaitingConfirmation, trip.Status)
	assert.Nil(t, trip.ConfirmedAt)
}

func TestOpenDisputeHoldsAutoReleaseAndCancelRearms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	due := h.clock.now.Add(-time.Minute)
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "1000.00", &due)

	opened, err := h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: e.Trip.ID, Reason: enums.DisputeReasonMortality, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusOpen, opened.Dispute.Status)
	assert.Equal(t, enums.RoleShipper, opened.Dispute.OpenedByRole)
	assert.Equal(t, enums.TripStatusDisputed, opened.Trip.Status)
	assert.Nil(t, opened.Payment.AutoReleaseAt)

	released, err := h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	assert.Empty(t, released)

	_, err = h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: e.Trip.ID, Reason: enums.DisputeReasonOther, Actor: hauler(p)})
	requireCode(t, err, pkgerrors.CodeConflict)

	_, err = h.svc.CancelDispute(ctx, DisputeActionInput{DisputeID: opened.Dispute.ID, Actor: hauler(p)})
	requireCode(t, err, pkgerrors.CodeForbidden)

	cancelled, err := h.svc.CancelDispute(ctx, DisputeActionInput{DisputeID: opened.Dispute.ID, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusCancelled, cancelled.Dispute.Status)
	assert.NotNil(t, cancelled.Dispute.CancelledAt)
	assert.Equal(t, enums.TripStatusDeliveredConfirmed, cancelled.Trip.Status)
	require.NotNil(t, cancelled.Payment.AutoReleaseAt)
	assert.True(t, cancelled.Payment.AutoReleaseAt.Equal(h.clock.now.Add(24*time.Hour)))

	again, err := h.svc.CancelDispute(ctx, DisputeActionInput{DisputeID: opened.Dispute.ID, Actor: shipper(p)})
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusCancelled, again.Dispute.Status)
}

func TestOpenDisputeRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	inTransit := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusInProgress, enums.PaymentStatusEscrowFunded, "400.00", nil)
	unfunded := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDeliveredAwaitingConfirmation, enums.PaymentStatusAwaitingFunding, "400.00", nil)
	delivered := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDeliveredAwaitingConfirmation, enums.PaymentStatusEscrowFunded, "400.00", nil)

	_, err := h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: inTransit.Trip.ID, Reason: enums.DisputeReasonLateDelivery, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)

	_, err = h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: unfunded.Trip.ID, Reason: enums.DisputeReasonLateDelivery, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeInvalidState)

	_, err = h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: delivered.Trip.ID, Reason: enums.DisputeReasonLateDelivery, Actor: admin()})
	requireCode(t, err, pkgerrors.CodeForbidden)

	_, err = h.svc.OpenDispute(ctx, OpenDisputeInput{TripID: delivered.Trip.ID, Reason: "bogus", Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeValidation)

	var count int64
	require.NoError(t, h.db.Model(&models.Dispute{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCancelDisputeRejectsUnderReview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "500.00", nil)
	dispute := dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusUnderReview)

	for _, actor := range []Actor{shipper(p), admin()} {
		_, err := h.svc.CancelDispute(ctx, DisputeActionInput{DisputeID: dispute.ID, Actor: actor})
		requireCode(t, err, pkgerrors.CodeInvalidState)
	}

	got := reload[models.Dispute](t, h.db, dispute.ID)
	assert.Equal(t, enums.DisputeStatusUnderReview, got.Status)
	assert.Nil(t, got.CancelledAt)

	trip := reload[models.Trip](t, h.db, e.Trip.ID)
	assert.Equal(t, enums.TripStatusDisputed, trip.Status)

	payment := reload[models.Payment](t, h.db, e.Payment.ID)
	assert.Equal(t, enums.PaymentStatusEscrowFunded, payment.Status)
	assert.Nil(t, payment.AutoReleaseAt)
}

func TestResolveDisputeSplitMustBalance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "100.00", nil)
	dispute := dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusOpen)

	reviewed, err := h.svc.ReviewDispute(ctx, DisputeActionInput{DisputeID: dispute.ID, Actor: admin()})
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusUnderReview, reviewed.Status)

	toHauler := decimal.RequireFromString("60.00")
	short := decimal.RequireFromString("39.99")
	_, err = h.svc.ResolveDispute(ctx, ResolveDisputeInput{
		DisputeID: dispute.ID, Resolution: enums.ResolutionSplit,
		AmountToHauler: &toHauler, AmountToShipper: &short, Actor: admin(),
	})
	requireCode(t, err, pkgerrors.CodeValidation)
	assert.Equal(t, enums.DisputeStatusUnderReview, reload[models.Dispute](t, h.db, dispute.ID).Status)

	_, err = h.svc.ResolveDispute(ctx, ResolveDisputeInput{
		DisputeID: dispute.ID, Resolution: enums.ResolutionSplit,
		AmountToHauler: &toHauler, AmountToShipper: &short, Actor: shipper(p),
	})
	requireCode(t, err, pkgerrors.CodeForbidden)

	toShipper := decimal.RequireFromString("40.00")
	notes := "partial mortality"
	res, err := h.svc.ResolveDispute(ctx, ResolveDisputeInput{
		DisputeID: dispute.ID, Resolution: enums.ResolutionSplit,
		AmountToHauler: &toHauler, AmountToShipper: &toShipper, Notes: &notes, Actor: admin(),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.DisputeStatusResolved, res.Dispute.Status)
	require.NotNil(t, res.Dispute.ResolutionType)
	assert.Equal(t, enums.ResolutionSplit, *res.Dispute.ResolutionType)
	assert.NotNil(t, res.Dispute.ResolvedAt)
	assert.Equal(t, enums.PaymentStatusSplitBetweenParties, res.Payment.Status)
	assert.Equal(t, enums.TripStatusClosed, res.Trip.Status)
	assert.Equal(t, enums.LoadStatusCompleted, res.Load.Status)

	_, err = h.svc.ResolveDispute(ctx, ResolveDisputeInput{DisputeID: dispute.ID, Resolution: enums.ResolutionRefundToShipper, Actor: admin()})
	requireCode(t, err, pkgerrors.CodeInvalidState)
}

func TestResolutionAmounts(t *testing.T) {
	total := decimal.RequireFromString("250.00")
	d := func(s string) *decimal.Decimal {
		v := decimal.RequireFromString(s)
		return &v
	}

	h, s, err := resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionReleaseToHauler}, total)
	require.NoError(t, err)
	assert.True(t, h.Equal(total))
	assert.True(t, s.IsZero())

	h, s, err = resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionRefundToShipper}, total)
	require.NoError(t, err)
	assert.True(t, h.IsZero())
	assert.True(t, s.Equal(total))

	_, _, err = resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionSplit, AmountToHauler: d("250.00")}, total)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, _, err = resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionSplit, AmountToHauler: d("260.00"), AmountToShipper: d("-10.00")}, total)
	requireCode(t, err, pkgerrors.CodeValidation)

	_, _, err = resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionSplit, AmountToHauler: d("125.005"), AmountToShipper: d("124.995")}, total)
	requireCode(t, err, pkgerrors.CodeValidation)

	h, s, err = resolutionAmounts(ResolveDisputeInput{Resolution: enums.ResolutionSplit, AmountToHauler: d("0"), AmountToShipper: d("250")}, total)
	require.NoError(t, err)
	assert.True(t, h.IsZero())
	assert.True(t, s.Equal(total))
}

func TestForceRefundCancelsOpenDispute(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "700.00", nil)
	dispute := dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusOpen)

	_, err := h.svc.ForceRefund(ctx, ForceFinalizeInput{PaymentID: e.Payment.ID, Actor: shipper(p)})
	requireCode(t, err, pkgerrors.CodeForbidden)

	res, err := h.svc.ForceRefund(ctx, ForceFinalizeInput{PaymentID: e.Payment.ID, Actor: admin()})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusRefundedToShipper, res.Payment.Status)
	assert.NotNil(t, res.Payment.RefundedAt)
	assert.Equal(t, enums.TripStatusClosed, res.Trip.Status)
	assert.Equal(t, enums.LoadStatusCompleted, res.Load.Status)

	cancelled := reload[models.Dispute](t, h.db, dispute.ID)
	assert.Equal(t, enums.DisputeStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = h.svc.ForceRelease(ctx, ForceFinalizeInput{PaymentID: uuid.New(), Actor: admin()})
	requireCode(t, err, pkgerrors.CodeNotFound)
}

func TestForceReleaseClearsDisputeUnderReview(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "320.00", nil)
	dispute := dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusUnderReview)

	res, err := h.svc.ForceRelease(ctx, ForceFinalizeInput{PaymentID: e.Payment.ID, Actor: admin()})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusReleasedToHauler, res.Payment.Status)
	assert.Equal(t, enums.TripStatusClosed, res.Trip.Status)

	got := reload[models.Dispute](t, h.db, dispute.ID)
	assert.Equal(t, enums.DisputeStatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(h.clock.now))

	var active int64
	require.NoError(t, h.db.Model(&models.Dispute{}).
		Where("payment_id = ? AND status IN ?", e.Payment.ID, enums.ActiveDisputeStatuses).
		Count(&active).Error)
	assert.Zero(t, active)

	_, err = h.svc.ResolveDispute(ctx, ResolveDisputeInput{DisputeID: dispute.ID, Resolution: enums.ResolutionRefundToShipper, Actor: admin()})
	requireCode(t, err, pkgerrors.CodeInvalidState)
}

func TestForceReleaseFinalizesUnfundedPayment(t *testing.T) {
	h := newHarness(t)
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusPendingEscrow, enums.PaymentStatusAwaitingFunding, "150.00", nil)

	res, err := h.svc.ForceRelease(context.Background(), ForceFinalizeInput{PaymentID: e.Payment.ID, Actor: admin()})
	require.NoError(t, err)
	assert.Equal(t, enums.PaymentStatusReleasedToHauler, res.Payment.Status)
	assert.NotNil(t, res.Payment.ReleasedAt)
}

func TestRunAutoReleaseHonoursBatchSize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	due := h.clock.now.Add(-time.Hour)
	for i := 0; i < 3; i++ {
		dbtest.SeedEscrow(t, h.db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "10.00", &due)
	}
	svc := h.svc.(*service)
	svc.cfg.AutoReleaseBatchSize = 2

	first, err := h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	assert.Len(t, first, 2)

	second, err := h.svc.RunAutoRelease(ctx)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}

func TestReadOperations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	p := dbtest.NewParties()
	e := dbtest.SeedEscrow(t, h.db, p, enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "120.00", nil)
	dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusCancelled)
	dbtest.SeedDispute(t, h.db, e, enums.DisputeStatusOpen)

	trip, err := h.svc.GetTrip(ctx, e.Trip.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TripStatusDisputed, trip.Status)

	payment, err := h.svc.GetTripPayment(ctx, e.Trip.ID)
	require.NoError(t, err)
	assert.Equal(t, e.Payment.ID, payment.ID)

	list, err := h.svc.ListPaymentDisputes(ctx, e.Payment.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = h.svc.GetTrip(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = h.svc.ListPaymentDisputes(ctx, uuid.New())
	requireCode(t, err, pkgerrors.CodeNotFound)
	_, err = h.svc.GetTripPayment(ctx, uuid.Nil)
	requireCode(t, err, pkgerrors.CodeValidation)
}
