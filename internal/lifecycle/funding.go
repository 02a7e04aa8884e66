package lifecycle

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

// FundPayment moves the trip's payment into escrow and, when the trip is
// still waiting on escrow, makes it ready to start. Funding an already funded
// payment returns it unchanged.
func (s *service) FundPayment(ctx context.Context, input FundPaymentInput) (*models.Payment, error) {
	if err := requireID(input.TripID, "trip id"); err != nil {
		return nil, err
	}
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}

	var funded *models.Payment
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		payment, err := r.payments.FindByTripIDForUpdate(ctx, input.TripID)
		if err != nil {
			return lookupErr(err, "payment")
		}
		if !input.Actor.IsAdmin() && payment.PayerUserID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the payer can fund this payment")
		}
		if payment.Status == enums.PaymentStatusEscrowFunded {
			funded = payment
			return nil
		}

		updates := map[string]any{
			"status":    enums.PaymentStatusEscrowFunded,
			"funded_at": s.nowUTC(),
		}
		if input.ProviderPaymentRef != nil {
			updates["provider_payment_ref"] = *input.ProviderPaymentRef
		}
		if input.ProviderChargeRef != nil {
			updates["provider_charge_ref"] = *input.ProviderChargeRef
		}
		updated, err := r.payments.UpdateWhereStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusAwaitingFunding}, updates)
		if err != nil {
			return storeErr(err, "fund payment")
		}
		if updated == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment is not awaiting funding").
				WithDetails(map[string]any{"status": payment.Status})
		}

		if _, err := r.trips.UpdateWhereStatus(ctx, payment.TripID,
			[]enums.TripStatus{enums.TripStatusPendingEscrow},
			map[string]any{"status": enums.TripStatusReadyToStart}); err != nil {
			return storeErr(err, "advance trip")
		}

		funded = updated
		return nil
	})

	s.record(ctx, "fund_payment", err, map[string]any{"trip_id": input.TripID})
	if err != nil {
		return nil, err
	}
	return funded, nil
}
