package lifecycle

import (
	"context"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

// finalize moves payment to a terminal status, clears its auto-release,
// closes the trip and completes the load. With guarded set the payment must
// still be ESCROW_FUNDED; a miss returns (nil, nil).
func (s *service) finalize(ctx context.Context, r repos, payment *models.Payment, status enums.PaymentStatus, guarded bool) (*FinalizeResult, error) {
	now := s.nowUTC()
	updates := map[string]any{
		"status":          status,
		"auto_release_at": nil,
	}
	switch status {
	case enums.PaymentStatusReleasedToHauler:
		updates["released_at"] = now
	case enums.PaymentStatusRefundedToShipper:
		updates["refunded_at"] = now
	case enums.PaymentStatusSplitBetweenParties:
		updates["released_at"] = now
		updates["refunded_at"] = now
	}

	var (
		final *models.Payment
		err   error
	)
	if guarded {
		final, err = r.payments.UpdateWhereStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusEscrowFunded}, updates)
	} else {
		final, err = r.payments.Update(ctx, payment.ID, updates)
	}
	if err != nil {
		return nil, storeErr(err, "finalize payment")
	}
	if final == nil {
		return nil, nil
	}

	trip, err := r.trips.Update(ctx, payment.TripID, map[string]any{"status": enums.TripStatusClosed})
	if err != nil {
		return nil, lookupErr(err, "trip")
	}
	load, err := r.loads.Update(ctx, payment.LoadID, map[string]any{"status": enums.LoadStatusCompleted})
	if err != nil {
		return nil, lookupErr(err, "load")
	}
	return &FinalizeResult{Payment: final, Trip: trip, Load: load}, nil
}

func paymentNotInEscrow(payment *models.Payment) error {
	return pkgerrors.New(pkgerrors.CodeInvalidState, "payment is not in escrow").
		WithDetails(map[string]any{"paymentStatus": payment.Status})
}
