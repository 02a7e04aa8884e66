package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/livehaul-backend/pkg/db/dbtest"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

func TestListDueForAutoReleaseSkipsDisputedAndFuture(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	due := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "100.00", &past)
	exact := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "80.00", &now)
	dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "90.00", &future)
	dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "70.00", nil)
	dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusClosed, enums.PaymentStatusReleasedToHauler, "60.00", &past)

	disputed := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDisputed, enums.PaymentStatusEscrowFunded, "50.00", &past)
	dbtest.SeedDispute(t, db, disputed, enums.DisputeStatusUnderReview)

	closedDispute := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "40.00", &past)
	dbtest.SeedDispute(t, db, closedDispute, enums.DisputeStatusCancelled)

	got, err := repo.ListDueForAutoRelease(ctx, now, 10)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, p := range got {
		ids = append(ids, p.ID.String())
	}
	assert.ElementsMatch(t, []string{due.Payment.ID.String(), exact.Payment.ID.String(), closedDispute.Payment.ID.String()}, ids)
}

func TestListDueForAutoReleaseHonoursLimit(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := now.Add(-time.Duration(i+1) * time.Minute)
		dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusDeliveredConfirmed, enums.PaymentStatusEscrowFunded, "10.00", &at)
	}

	got, err := repo.ListDueForAutoRelease(context.Background(), now, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.True(t, got[0].AutoReleaseAt.Before(*got[1].AutoReleaseAt))
}

func TestUpdateWhereStatusGuards(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	e := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusPendingEscrow, enums.PaymentStatusAwaitingFunding, "100.00", nil)

	updated, err := repo.UpdateWhereStatus(ctx, e.Payment.ID,
		[]enums.PaymentStatus{enums.PaymentStatusEscrowFunded},
		map[string]any{"status": enums.PaymentStatusReleasedToHauler})
	require.NoError(t, err)
	require.Nil(t, updated)

	updated, err = repo.UpdateWhereStatus(ctx, e.Payment.ID,
		[]enums.PaymentStatus{enums.PaymentStatusAwaitingFunding},
		map[string]any{"status": enums.PaymentStatusEscrowFunded})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, enums.PaymentStatusEscrowFunded, updated.Status)

	var raw string
	require.NoError(t, db.Raw("SELECT status FROM payments WHERE id = ?", e.Payment.ID).Scan(&raw).Error)
	require.Equal(t, "escrow_funded", raw)
}

func TestFindByTripID(t *testing.T) {
	db := dbtest.Open(t)
	repo := NewRepository(db)

	e := dbtest.SeedEscrow(t, db, dbtest.NewParties(), enums.TripStatusPendingEscrow, enums.PaymentStatusAwaitingFunding, "125.50", nil)

	got, err := repo.FindByTripIDForUpdate(context.Background(), e.Trip.ID)
	require.NoError(t, err)
	require.Equal(t, e.Payment.ID, got.ID)
	require.Equal(t, "125.5", got.Amount.String())
	require.True(t, got.IsEscrow)
}
