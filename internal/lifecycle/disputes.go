package lifecycle

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

// OpenDispute raises a dispute on a delivered trip. The payment row is locked
// first so the auto-release batch cannot release it underneath us.
func (s *service) OpenDispute(ctx context.Context, input OpenDisputeInput) (*DisputeResult, error) {
	if err := requireID(input.TripID, "trip id"); err != nil {
		return nil, err
	}
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}
	if !input.Reason.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid dispute reason").
			WithDetails(map[string]any{"reason": input.Reason})
	}

	var result *DisputeResult
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		payment, err := r.payments.FindByTripIDForUpdate(ctx, input.TripID)
		if err != nil {
			return lookupErr(err, "payment")
		}

		var openerRole enums.Role
		switch input.Actor.UserID {
		case payment.PayerUserID:
			openerRole = enums.RoleShipper
		case payment.PayeeUserID:
			openerRole = enums.RoleHauler
		default:
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the shipper or hauler on this trip can open a dispute")
		}

		if payment.Status != enums.PaymentStatusEscrowFunded {
			return paymentNotInEscrow(payment)
		}
		active, err := r.disputes.CountActiveByPayment(ctx, payment.ID)
		if err != nil {
			return storeErr(err, "count disputes")
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "an open dispute already exists for this payment")
		}

		trip, err := r.trips.FindByID(ctx, payment.TripID)
		if err != nil {
			return lookupErr(err, "trip")
		}
		if !trip.Status.IsDelivered() {
			return invalidTripState("trip has not been delivered", trip)
		}

		dispute, err := r.disputes.Create(ctx, &models.Dispute{
			TripID:          trip.ID,
			PaymentID:       payment.ID,
			OpenedByUserID:  input.Actor.UserID,
			OpenedByRole:    openerRole,
			Status:          enums.DisputeStatusOpen,
			ReasonCode:      input.Reason,
			Description:     input.Description,
			RequestedAction: input.RequestedAction,
		})
		if err != nil {
			return storeErr(err, "create dispute")
		}

		disputed, err := r.trips.UpdateWhereStatus(ctx, trip.ID,
			[]enums.TripStatus{enums.TripStatusDeliveredAwaitingConfirmation, enums.TripStatusDeliveredConfirmed},
			map[string]any{"status": enums.TripStatusDisputed})
		if err != nil {
			return storeErr(err, "mark trip disputed")
		}
		if disputed == nil {
			return invalidTripState("trip has not been delivered", trip)
		}

		held, err := r.payments.UpdateWhereStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusEscrowFunded},
			map[string]any{"auto_release_at": nil})
		if err != nil {
			return storeErr(err, "clear auto-release")
		}
		if held == nil {
			return paymentNotInEscrow(payment)
		}

		result = &DisputeResult{Dispute: dispute, Trip: disputed, Payment: held}
		return nil
	})

	fields := map[string]any{"trip_id": input.TripID}
	if result != nil {
		fields["dispute_id"] = result.Dispute.ID
		fields["payment_id"] = result.Payment.ID
	}
	s.record(ctx, "open_dispute", err, fields)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReviewDispute moves an open dispute under review.
func (s *service) ReviewDispute(ctx context.Context, input DisputeActionInput) (*models.Dispute, error) {
	if err := requireID(input.DisputeID, "dispute id"); err != nil {
		return nil, err
	}
	if err := requireAdmin(input.Actor); err != nil {
		return nil, err
	}

	var reviewed *models.Dispute
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		dispute, err := r.disputes.FindByIDForUpdate(ctx, input.DisputeID)
		if err != nil {
			return lookupErr(err, "dispute")
		}
		if dispute.Status == enums.DisputeStatusUnderReview {
			reviewed = dispute
			return nil
		}
		updated, err := r.disputes.UpdateWhereStatus(ctx, dispute.ID,
			[]enums.DisputeStatus{enums.DisputeStatusOpen},
			map[string]any{"status": enums.DisputeStatusUnderReview})
		if err != nil {
			return storeErr(err, "review dispute")
		}
		if updated == nil {
			return invalidDisputeState("dispute is not open", dispute)
		}
		reviewed = updated
		return nil
	})

	s.record(ctx, "review_dispute", err, map[string]any{"dispute_id": input.DisputeID})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

// ResolveDispute closes an active dispute and finalizes its payment to the
// status the resolution calls for.
func (s *service) ResolveDispute(ctx context.Context, input ResolveDisputeInput) (*ResolutionResult, error) {
	if err := requireID(input.DisputeID, "dispute id"); err != nil {
		return nil, err
	}
	if err := requireAdmin(input.Actor); err != nil {
		return nil, err
	}
	if !input.Resolution.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid resolution type").
			WithDetails(map[string]any{"resolution": input.Resolution})
	}

	var result *ResolutionResult
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		dispute, err := r.disputes.FindByIDForUpdate(ctx, input.DisputeID)
		if err != nil {
			return lookupErr(err, "dispute")
		}
		if !dispute.Status.IsActive() {
			return invalidDisputeState("dispute is not open", dispute)
		}
		payment, err := r.payments.FindByIDForUpdate(ctx, dispute.PaymentID)
		if err != nil {
			return lookupErr(err, "payment")
		}

		toHauler, toShipper, err := resolutionAmounts(input, payment.Amount)
		if err != nil {
			return err
		}
		if payment.Status != enums.PaymentStatusEscrowFunded {
			return paymentNotInEscrow(payment)
		}

		resolved, err := r.disputes.UpdateWhereStatus(ctx, dispute.ID, enums.ActiveDisputeStatuses,
			map[string]any{
				"status":                       enums.DisputeStatusResolved,
				"resolution_type":              input.Resolution,
				"resolution_amount_to_hauler":  toHauler,
				"resolution_amount_to_shipper": toShipper,
				"resolution_notes":             input.Notes,
				"resolved_by_user_id":          input.Actor.UserID,
				"resolved_at":                  s.nowUTC(),
			})
		if err != nil {
			return storeErr(err, "resolve dispute")
		}
		if resolved == nil {
			return invalidDisputeState("dispute is not open", dispute)
		}

		final, err := s.finalize(ctx, r, payment, input.Resolution.PaymentStatus(), true)
		if err != nil {
			return err
		}
		if final == nil {
			return paymentNotInEscrow(payment)
		}

		result = &ResolutionResult{Dispute: resolved, Payment: final.Payment, Trip: final.Trip, Load: final.Load}
		return nil
	})

	s.record(ctx, "resolve_dispute", err, map[string]any{
		"dispute_id": input.DisputeID,
		"resolution": input.Resolution,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// resolutionAmounts returns how the payment amount is divided. A split must
// name both shares, neither negative nor finer than a cent, summing to the
// payment amount exactly.
func resolutionAmounts(input ResolveDisputeInput, total decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	switch input.Resolution {
	case enums.ResolutionReleaseToHauler:
		return total, decimal.Zero, nil
	case enums.ResolutionRefundToShipper:
		return decimal.Zero, total, nil
	}

	if input.AmountToHauler == nil || input.AmountToShipper == nil {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "split requires amounts for both parties")
	}
	toHauler, toShipper := *input.AmountToHauler, *input.AmountToShipper
	if toHauler.IsNegative() || toShipper.IsNegative() {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "split amounts must not be negative")
	}
	if !toHauler.Equal(toHauler.Round(2)) || !toShipper.Equal(toShipper.Round(2)) {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "split amounts must have at most two decimals")
	}
	if sum := toHauler.Add(toShipper); !sum.Equal(total) {
		return decimal.Zero, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "split amounts must add up to the payment amount").
			WithDetails(map[string]any{
				"paymentAmount": total.StringFixed(2),
				"splitTotal":    sum.StringFixed(2),
			})
	}
	return toHauler, toShipper, nil
}

// CancelDispute withdraws an open dispute. When no other dispute remains
// active the trip returns to DELIVERED_CONFIRMED and, if the payment is still
// in escrow, a fresh auto-release is scheduled.
func (s *service) CancelDispute(ctx context.Context, input DisputeActionInput) (*DisputeResult, error) {
	if err := requireID(input.DisputeID, "dispute id"); err != nil {
		return nil, err
	}
	if err := requireActor(input.Actor); err != nil {
		return nil, err
	}

	var result *DisputeResult
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		dispute, err := r.disputes.FindByIDForUpdate(ctx, input.DisputeID)
		if err != nil {
			return lookupErr(err, "dispute")
		}
		if !input.Actor.IsAdmin() && dispute.OpenedByUserID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the opener can cancel this dispute")
		}
		payment, err := r.payments.FindByIDForUpdate(ctx, dispute.PaymentID)
		if err != nil {
			return lookupErr(err, "payment")
		}
		if dispute.Status == enums.DisputeStatusCancelled {
			trip, err := r.trips.FindByID(ctx, dispute.TripID)
			if err != nil {
				return lookupErr(err, "trip")
			}
			result = &DisputeResult{Dispute: dispute, Trip: trip, Payment: payment}
			return nil
		}

		cancelled, err := r.disputes.UpdateWhereStatus(ctx, dispute.ID,
			[]enums.DisputeStatus{enums.DisputeStatusOpen},
			map[string]any{
				"status":       enums.DisputeStatusCancelled,
				"cancelled_at": s.nowUTC(),
			})
		if err != nil {
			return storeErr(err, "cancel dispute")
		}
		if cancelled == nil {
			return invalidDisputeState("only open disputes can be cancelled", dispute)
		}

		remaining, err := r.disputes.CountActiveByPayment(ctx, payment.ID)
		if err != nil {
			return storeErr(err, "count disputes")
		}
		if remaining == 0 {
			if _, err := r.trips.UpdateWhereStatus(ctx, dispute.TripID,
				[]enums.TripStatus{enums.TripStatusDisputed},
				map[string]any{"status": enums.TripStatusDeliveredConfirmed}); err != nil {
				return storeErr(err, "restore trip")
			}
			if payment.Status == enums.PaymentStatusEscrowFunded {
				rearmed, err := r.payments.UpdateWhereStatus(ctx, payment.ID,
					[]enums.PaymentStatus{enums.PaymentStatusEscrowFunded},
					map[string]any{"auto_release_at": s.nowUTC().Add(s.cfg.AutoReleaseDelay)})
				if err != nil {
					return storeErr(err, "reschedule auto-release")
				}
				if rearmed != nil {
					payment = rearmed
				}
			}
		}

		trip, err := r.trips.FindByID(ctx, dispute.TripID)
		if err != nil {
			return lookupErr(err, "trip")
		}
		result = &DisputeResult{Dispute: cancelled, Trip: trip, Payment: payment}
		return nil
	})

	s.record(ctx, "cancel_dispute", err, map[string]any{"dispute_id": input.DisputeID})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func invalidDisputeState(msg string, dispute *models.Dispute) error {
	return pkgerrors.New(pkgerrors.CodeInvalidState, msg).
		WithDetails(map[string]any{"status": dispute.Status})
}
