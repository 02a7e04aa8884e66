package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// Parties identifies the shipper and hauler on a seeded load.
type Parties struct {
	ShipperID uuid.UUID
	HaulerID  uuid.UUID
}

// NewParties returns fresh random identities.
func NewParties() Parties {
	return Parties{ShipperID: uuid.New(), HaulerID: uuid.New()}
}

// SeedLoad inserts a load owned by p.ShipperID.
func SeedLoad(t testing.TB, db *gorm.DB, p Parties, status enums.LoadStatus, asking string) *models.Load {
	t.Helper()
	load := &models.Load{
		ShipperID:    p.ShipperID,
		Title:        "40 head feeder cattle",
		Status:       status,
		Currency:     enums.CurrencyUSD,
		AskingAmount: decimal.RequireFromString(asking),
	}
	require.NoError(t, db.Create(load).Error)
	return load
}

// SeedOffer inserts an offer by haulerID on load.
func SeedOffer(t testing.TB, db *gorm.DB, load *models.Load, haulerID uuid.UUID, status enums.OfferStatus, amount string) *models.LoadOffer {
	t.Helper()
	offer := &models.LoadOffer{
		LoadID:    load.ID,
		HaulerID:  haulerID,
		CreatedBy: haulerID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  load.Currency,
		Status:    status,
	}
	require.NoError(t, db.Create(offer).Error)
	return offer
}

// Escrow is a trip and its payment seeded together.
type Escrow struct {
	Load    *models.Load
	Trip    *models.Trip
	Payment *models.Payment
}

// SeedEscrow inserts a load, trip and payment in the given statuses.
// autoReleaseAt is stored as-is, nil included.
func SeedEscrow(t testing.TB, db *gorm.DB, p Parties, trip enums.TripStatus, payment enums.PaymentStatus, amount string, autoReleaseAt *time.Time) Escrow {
	t.Helper()
	load := SeedLoad(t, db, p, enums.LoadStatusAwaitingEscrow, amount)
	tripRow := &models.Trip{
		LoadID:   load.ID,
		HaulerID: p.HaulerID,
		Status:   trip,
	}
	require.NoError(t, db.Create(tripRow).Error)

	paymentRow := &models.Payment{
		LoadID:        load.ID,
		TripID:        tripRow.ID,
		PayerUserID:   p.ShipperID,
		PayeeUserID:   p.HaulerID,
		Amount:        decimal.RequireFromString(amount),
		Currency:      load.Currency,
		PlatformFee:   decimal.Zero,
		Status:        payment,
		IsEscrow:      true,
		AutoReleaseAt: autoReleaseAt,
	}
	require.NoError(t, db.Create(paymentRow).Error)
	return Escrow{Load: load, Trip: tripRow, Payment: paymentRow}
}

// SeedDispute inserts a dispute on e opened by the shipper.
func SeedDispute(t testing.TB, db *gorm.DB, e Escrow, status enums.DisputeStatus) *models.Dispute {
	t.Helper()
	dispute := &models.Dispute{
		TripID:         e.Trip.ID,
		PaymentID:      e.Payment.ID,
		OpenedByUserID: e.Payment.PayerUserID,
		OpenedByRole:   enums.RoleShipper,
		Status:         status,
		ReasonCode:     enums.DisputeReasonShortCount,
	}
	require.NoError(t, db.Create(dispute).Error)
	return dispute
}
