package lifecycle

import (
	"net/http"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	"github.com/angelmondragon/livehaul-backend/api/validators"
	internal "github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	"github.com/angelmondragon/livehaul-backend/internal/notifications"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

const (
	maxDescriptionLen = 2000
	maxActionLen      = 500
)

type openDisputeRequest struct {
	Reason          string `json:"reason" validate:"required"`
	Description     string `json:"description" validate:"max=2000"`
	RequestedAction string `json:"requestedAction" validate:"max=500"`
}

// OpenDispute raises a dispute on a delivered trip.
func OpenDispute(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tripID, err := pathUUID(r, "tripId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body openDisputeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		reason, err := enums.ParseDisputeReason(body.Reason)
		if err != nil {
			responses.WriteError(ctx, logg, w, validationDetail("reason", err.Error()))
			return
		}

		result, err := svc.OpenDispute(ctx, internal.OpenDisputeInput{
			TripID:          tripID,
			Reason:          reason,
			Description:     optionalText(body.Description, maxDescriptionLen),
			RequestedAction: optionalText(body.RequestedAction, maxActionLen),
			Actor:           actor,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventDisputeOpened, result))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// ReviewDispute moves an open dispute under admin review.
func ReviewDispute(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		input, err := disputeAction(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		dispute, err := svc.ReviewDispute(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventDisputeUnderReview, dispute))
		responses.WriteSuccess(w, dispute)
	}
}

type resolveDisputeRequest struct {
	Resolution      string `json:"resolution" validate:"required,oneof=release_to_hauler refund_to_shipper split"`
	AmountToHauler  string `json:"amountToHauler" validate:"omitempty,money"`
	AmountToShipper string `json:"amountToShipper" validate:"omitempty,money"`
	Notes           string `json:"notes" validate:"max=2000"`
}

// ResolveDispute closes a dispute and settles its escrow.
func ResolveDispute(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		action, err := disputeAction(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body resolveDisputeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		resolution, err := enums.ParseResolutionType(body.Resolution)
		if err != nil {
			responses.WriteError(ctx, logg, w, validationDetail("resolution", err.Error()))
			return
		}

		input := internal.ResolveDisputeInput{
			DisputeID:  action.DisputeID,
			Resolution: resolution,
			Notes:      optionalText(body.Notes, maxDescriptionLen),
			Actor:      action.Actor,
		}
		if input.AmountToHauler, err = validators.ParseMoney(body.AmountToHauler, "amountToHauler"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if input.AmountToShipper, err = validators.ParseMoney(body.AmountToShipper, "amountToShipper"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.ResolveDispute(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventDisputeResolved, result))
		responses.WriteSuccess(w, result)
	}
}

// CancelDispute withdraws an open dispute.
func CancelDispute(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		input, err := disputeAction(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.CancelDispute(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventDisputeCancelled, result))
		responses.WriteSuccess(w, result)
	}
}

// ListPaymentDisputes returns every dispute raised on a payment.
func ListPaymentDisputes(svc internal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListPaymentDisputes(r.Context(), paymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func disputeAction(r *http.Request) (internal.DisputeActionInput, error) {
	disputeID, err := pathUUID(r, "disputeId")
	if err != nil {
		return internal.DisputeActionInput{}, err
	}
	actor, err := actorFrom(r)
	if err != nil {
		return internal.DisputeActionInput{}, err
	}
	return internal.DisputeActionInput{DisputeID: disputeID, Actor: actor}, nil
}
