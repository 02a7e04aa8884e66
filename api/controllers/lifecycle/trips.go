package lifecycle

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	"github.com/angelmondragon/livehaul-backend/api/validators"
	internal "github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	"github.com/angelmondragon/livehaul-backend/internal/notifications"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

type acceptOfferRequest struct {
	LoadID   string `json:"loadId" validate:"required,uuid"`
	HaulerID string `json:"haulerId" validate:"omitempty,uuid"`
	Amount   string `json:"amount" validate:"omitempty,money"`
	Currency string `json:"currency" validate:"omitempty,len=3"`
}

// AcceptOffer awards a load to one of its offers and opens the trip escrow.
func AcceptOffer(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var body acceptOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := internal.AcceptOfferInput{
			OfferID: offerID,
			LoadID:  uuid.MustParse(body.LoadID),
			Actor:   actor,
		}
		if body.HaulerID != "" {
			input.HaulerID = uuid.MustParse(body.HaulerID)
		}
		if input.Amount, err = validators.ParseMoney(body.Amount, "amount"); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if body.Currency != "" {
			currency, err := enums.ParseCurrency(body.Currency)
			if err != nil {
				responses.WriteError(ctx, logg, w, validationDetail("currency", err.Error()))
				return
			}
			input.Currency = currency
		}

		result, err := svc.AcceptOffer(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventOfferAccepted, result))
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

type fundPaymentRequest struct {
	ProviderPaymentRef string `json:"providerPaymentRef" validate:"max=255"`
	ProviderChargeRef  string `json:"providerChargeRef" validate:"max=255"`
}

// FundPayment records that the shipper's escrow payment was captured.
func FundPayment(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
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
		var body fundPaymentRequest
		if err := decodeOptionalBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		payment, err := svc.FundPayment(ctx, internal.FundPaymentInput{
			TripID:             tripID,
			ProviderPaymentRef: optionalText(body.ProviderPaymentRef, 255),
			ProviderChargeRef:  optionalText(body.ProviderChargeRef, 255),
			Actor:              actor,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventEscrowFunded, payment))
		responses.WriteSuccess(w, payment)
	}
}

// StartTrip puts a funded trip in progress.
func StartTrip(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return tripAction(logg, func(r *http.Request, input internal.TripActionInput) (any, error) {
		trip, err := svc.StartTrip(r.Context(), input)
		if err != nil {
			return nil, err
		}
		notifications.Publish(r.Context(), sink, logg, notifications.NewEvent(notifications.EventTripStarted, trip))
		return trip, nil
	})
}

func MarkDelivered(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return tripAction(logg, func(r *http.Request, input internal.TripActionInput) (any, error) {
		trip, err := svc.MarkDelivered(r.Context(), input)
		if err != nil {
			return nil, err
		}
		notifications.Publish(r.Context(), sink, logg, notifications.NewEvent(notifications.EventTripDelivered, trip))
		return trip, nil
	})
}

func ConfirmDelivery(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return tripAction(logg, func(r *http.Request, input internal.TripActionInput) (any, error) {
		result, err := svc.ConfirmDelivery(r.Context(), input)
		if err != nil {
			return nil, err
		}
		notifications.Publish(r.Context(), sink, logg, notifications.NewEvent(notifications.EventTripConfirmed, result))
		return result, nil
	})
}

func tripAction(logg *logger.Logger, run func(r *http.Request, input internal.TripActionInput) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := pathUUID(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out, err := run(r, internal.TripActionInput{TripID: tripID, Actor: actor})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// GetTrip returns a trip by id.
func GetTrip(svc internal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := pathUUID(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		trip, err := svc.GetTrip(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, trip)
	}
}

// GetTripPayment returns the escrow payment of a trip.
func GetTripPayment(svc internal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tripID, err := pathUUID(r, "tripId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payment, err := svc.GetTripPayment(r.Context(), tripID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}
