package lifecycle

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

// ForceRelease pays the hauler regardless of the payment's current status.
// Any active dispute on the payment is cancelled in the same transaction.
func (s *service) ForceRelease(ctx context.Context, input ForceFinalizeInput) (*FinalizeResult, error) {
	return s.forceFinalize(ctx, "force_release", input, enums.PaymentStatusReleasedToHauler)
}

// ForceRefund returns the escrow to the shipper regardless of the payment's
// current status, cancelling any active dispute like ForceRelease.
func (s *service) ForceRefund(ctx context.Context, input ForceFinalizeInput) (*FinalizeResult, error) {
	return s.forceFinalize(ctx, "force_refund", input, enums.PaymentStatusRefundedToShipper)
}

func (s *service) forceFinalize(ctx context.Context, operation string, input ForceFinalizeInput, status enums.PaymentStatus) (*FinalizeResult, error) {
	if err := requireID(input.PaymentID, "payment id"); err != nil {
		return nil, err
	}
	if err := requireAdmin(input.Actor); err != nil {
		return nil, err
	}

	var (
		result    *FinalizeResult
		cancelled int64
	)
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		payment, err := r.payments.FindByIDForUpdate(ctx, input.PaymentID)
		if err != nil {
			return lookupErr(err, "payment")
		}
		final, err := s.finalize(ctx, r, payment, status, false)
		if err != nil {
			return err
		}
		// A closed trip must not keep a dispute open.
		cancelled, err = r.disputes.CancelActiveByPayment(ctx, payment.ID, s.nowUTC())
		if err != nil {
			return storeErr(err, "cancel disputes")
		}
		result = final
		return nil
	})

	s.record(ctx, operation, err, map[string]any{
		"payment_id":         input.PaymentID,
		"admin_id":           input.Actor.UserID,
		"final_status":       status,
		"disputes_cancelled": cancelled,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
