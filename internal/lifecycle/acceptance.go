package lifecycle

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// AcceptOffer awards the load to the offer and creates the trip and its
// escrow payment in the same transaction. Every other pending offer on the
// load expires.
func (s *service) AcceptOffer(ctx context.Context, input AcceptOfferInput) (*AcceptOfferResult, error) {
	if err := requireID(input.OfferID, "offer id"); err != nil {
		return nil, err
	}
	if err := requireID(input.LoadID, "load id"); err != nil {
		return nil, err
	}
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if input.Amount != nil && input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	var result *AcceptOfferResult
	err := s.inTx(ctx, func(r repos, tx *gorm.DB) error {
		offer, err := r.offers.FindByID(ctx, input.OfferID)
		if err != nil {
			return lookupErr(err, "offer")
		}
		if offer.LoadID != input.LoadID {
			return pkgerrors.New(pkgerrors.CodeValidation, "offer does not belong to load")
		}
		if err := matchOfferTerms(offer, input); err != nil {
			return err
		}

		load, err := r.loads.FindByID(ctx, input.LoadID)
		if err != nil {
			return lookupErr(err, "load")
		}
		if !input.Actor.IsAdmin() && load.ShipperID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the shipper can accept offers on this load")
		}
		if load.AwardedOfferID != nil && *load.AwardedOfferID != offer.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "load already awarded to another offer")
		}
		if load.Status != enums.LoadStatusPublished {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "load is not published").
				WithDetails(map[string]any{"status": load.Status})
		}
		if offer.Status != enums.OfferStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "offer is not pending").
				WithDetails(map[string]any{"status": offer.Status})
		}

		now := s.nowUTC()
		accepted, err := r.offers.AcceptPending(ctx, offer.ID, now)
		if err != nil {
			return storeErr(err, "accept offer")
		}
		if accepted == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "offer was modified concurrently")
		}
		if _, err := r.offers.ExpireOtherPending(ctx, load.ID, offer.ID); err != nil {
			return storeErr(err, "expire sibling offers")
		}

		assignment, err := s.fleet.EnsureMinimalFleet(ctx, tx, offer.HaulerID)
		if err != nil {
			return storeErr(err, "provision fleet")
		}

		trip, err := r.trips.Create(ctx, &models.Trip{
			LoadID:    load.ID,
			HaulerID:  offer.HaulerID,
			DriverID:  &assignment.Driver.ID,
			VehicleID: &assignment.Vehicle.ID,
			Status:    enums.TripStatusPendingEscrow,
		})
		if err != nil {
			return storeErr(err, "create trip")
		}

		payment, err := r.payments.Create(ctx, &models.Payment{
			LoadID:      load.ID,
			TripID:      trip.ID,
			PayerUserID: load.ShipperID,
			PayeeUserID: offer.CreatedBy,
			Amount:      offer.Amount,
			Currency:    offer.Currency,
			PlatformFee: s.platformFee(offer.Amount),
			Status:      enums.PaymentStatusAwaitingFunding,
			IsEscrow:    true,
		})
		if err != nil {
			return storeErr(err, "create payment")
		}

		awarded, err := r.loads.UpdateWhereStatus(ctx, load.ID,
			[]enums.LoadStatus{enums.LoadStatusPublished},
			map[string]any{
				"status":             enums.LoadStatusAwaitingEscrow,
				"awarded_offer_id":   offer.ID,
				"assigned_hauler_id": offer.HaulerID,
			})
		if err != nil {
			return storeErr(err, "award load")
		}
		if awarded == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "load was awarded concurrently")
		}

		result = &AcceptOfferResult{Offer: accepted, Load: awarded, Trip: trip, Payment: payment}
		return nil
	})

	fields := map[string]any{"offer_id": input.OfferID, "load_id": input.LoadID}
	if result != nil {
		fields["trip_id"] = result.Trip.ID
		fields["payment_id"] = result.Payment.ID
	}
	s.record(ctx, "accept_offer", err, fields)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func matchOfferTerms(offer *models.LoadOffer, input AcceptOfferInput) error {
	if input.Amount != nil && !input.Amount.Equal(offer.Amount) {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount does not match offer").
			WithDetails(map[string]any{"offerAmount": offer.Amount.StringFixed(2)})
	}
	if input.Currency != "" && input.Currency != offer.Currency {
		return pkgerrors.New(pkgerrors.CodeValidation, "currency does not match offer")
	}
	if input.HaulerID != uuid.Nil && input.HaulerID != offer.HaulerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "hauler does not match offer")
	}
	return nil
}

// platformFee is the flat commission on amount, rounded to cents.
func (s *service) platformFee(amount decimal.Decimal) decimal.Decimal {
	if s.cfg.CommissionPercent.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(s.cfg.CommissionPercent).Div(hundred).Round(2)
}
