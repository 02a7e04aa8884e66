package lifecycle

import (
	"context"

	"gorm.io/gorm"

	"github.com/angelmondragon/livehaul-backend/pkg/db/models"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

// tripContext loads the trip and its payment and checks that the actor may
// act on them as the given party.
func tripContext(ctx context.Context, r repos, input TripActionInput, party enums.Role) (*models.Trip, *models.Payment, error) {
	trip, err := r.trips.FindByIDForUpdate(ctx, input.TripID)
	if err != nil {
		return nil, nil, lookupErr(err, "trip")
	}
	payment, err := r.payments.FindByTripID(ctx, trip.ID)
	if err != nil {
		return nil, nil, lookupErr(err, "payment")
	}
	if input.Actor.IsAdmin() {
		return trip, payment, nil
	}
	switch party {
	case enums.RoleHauler:
		if payment.PayeeUserID != input.Actor.UserID {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the hauler on this trip can do that")
		}
	case enums.RoleShipper:
		if payment.PayerUserID != input.Actor.UserID {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the shipper on this trip can do that")
		}
	}
	return trip, payment, nil
}

func validateTripAction(input TripActionInput) error {
	if err := requireID(input.TripID, "trip id"); err != nil {
		return err
	}
	return requireActor(input.Actor)
}

func invalidTripState(msg string, trip *models.Trip) error {
	return pkgerrors.New(pkgerrors.CodeInvalidState, msg).
		WithDetails(map[string]any{"status": trip.Status})
}

// StartTrip moves a funded trip from READY_TO_START to IN_PROGRESS.
func (s *service) StartTrip(ctx context.Context, input TripActionInput) (*models.Trip, error) {
	if err := validateTripAction(input); err != nil {
		return nil, err
	}

	var started *models.Trip
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		trip, payment, err := tripContext(ctx, r, input, enums.RoleHauler)
		if err != nil {
			return err
		}
		if trip.Status == enums.TripStatusInProgress {
			started = trip
			return nil
		}
		if payment.Status != enums.PaymentStatusEscrowFunded {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "escrow is not funded").
				WithDetails(map[string]any{"paymentStatus": payment.Status})
		}

		updated, err := r.trips.UpdateWhereStatus(ctx, trip.ID,
			[]enums.TripStatus{enums.TripStatusReadyToStart},
			map[string]any{
				"status":     enums.TripStatusInProgress,
				"started_at": s.nowUTC(),
			})
		if err != nil {
			return storeErr(err, "start trip")
		}
		if updated == nil {
			return invalidTripState("trip is not ready to start", trip)
		}

		if _, err := r.loads.UpdateWhereStatus(ctx, trip.LoadID,
			[]enums.LoadStatus{enums.LoadStatusAwaitingEscrow},
			map[string]any{"status": enums.LoadStatusInTransit}); err != nil {
			return storeErr(err, "mark load in transit")
		}

		started = updated
		return nil
	})

	s.record(ctx, "start_trip", err, map[string]any{"trip_id": input.TripID})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// MarkDelivered moves an in-progress trip to DELIVERED_AWAITING_CONFIRMATION.
func (s *service) MarkDelivered(ctx context.Context, input TripActionInput) (*models.Trip, error) {
	if err := validateTripAction(input); err != nil {
		return nil, err
	}

	var delivered *models.Trip
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		trip, _, err := tripContext(ctx, r, input, enums.RoleHauler)
		if err != nil {
			return err
		}
		if trip.Status == enums.TripStatusDeliveredAwaitingConfirmation {
			delivered = trip
			return nil
		}

		updated, err := r.trips.UpdateWhereStatus(ctx, trip.ID,
			[]enums.TripStatus{enums.TripStatusInProgress},
			map[string]any{
				"status":       enums.TripStatusDeliveredAwaitingConfirmation,
				"delivered_at": s.nowUTC(),
			})
		if err != nil {
			return storeErr(err, "mark delivered")
		}
		if updated == nil {
			return invalidTripState("trip is not in progress", trip)
		}

		if _, err := r.loads.UpdateWhereStatus(ctx, trip.LoadID,
			[]enums.LoadStatus{enums.LoadStatusInTransit},
			map[string]any{"status": enums.LoadStatusDelivered}); err != nil {
			return storeErr(err, "mark load delivered")
		}

		delivered = updated
		return nil
	})

	s.record(ctx, "mark_delivered", err, map[string]any{"trip_id": input.TripID})
	if err != nil {
		return nil, err
	}
	return delivered, nil
}

// ConfirmDelivery records the shipper's confirmation and schedules the
// escrow auto-release. The payment must still be in escrow.
func (s *service) ConfirmDelivery(ctx context.Context, input TripActionInput) (*ConfirmDeliveryResult, error) {
	if err := validateTripAction(input); err != nil {
		return nil, err
	}

	var result *ConfirmDeliveryResult
	err := s.inTx(ctx, func(r repos, _ *gorm.DB) error {
		trip, payment, err := tripContext(ctx, r, input, enums.RoleShipper)
		if err != nil {
			return err
		}
		if trip.Status == enums.TripStatusDeliveredConfirmed {
			result = &ConfirmDeliveryResult{Trip: trip, Payment: payment}
			return nil
		}

		now := s.nowUTC()
		confirmed, err := r.trips.UpdateWhereStatus(ctx, trip.ID,
			[]enums.TripStatus{enums.TripStatusDeliveredAwaitingConfirmation},
			map[string]any{
				"status":       enums.TripStatusDeliveredConfirmed,
				"confirmed_at": now,
			})
		if err != nil {
			return storeErr(err, "confirm delivery")
		}
		if confirmed == nil {
			return invalidTripState("trip is not awaiting confirmation", trip)
		}

		scheduled, err := r.payments.UpdateWhereStatus(ctx, payment.ID,
			[]enums.PaymentStatus{enums.PaymentStatusEscrowFunded},
			map[string]any{"auto_release_at": now.Add(s.cfg.AutoReleaseDelay)})
		if err != nil {
			return storeErr(err, "schedule auto-release")
		}
		if scheduled == nil {
			return pkgerrors.New(pkgerrors.CodeInvalidState, "payment is not in escrow").
				WithDetails(map[string]any{"paymentStatus": payment.Status})
		}

		result = &ConfirmDeliveryResult{Trip: confirmed, Payment: scheduled}
		return nil
	})

	s.record(ctx, "confirm_delivery", err, map[string]any{"trip_id": input.TripID})
	if err != nil {
		return nil, err
	}
	return result, nil
}
