package lifecycle

import (
	"context"
	"net/http"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	internal "github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	"github.com/angelmondragon/livehaul-backend/internal/notifications"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

type forceFinalizer func(ctx context.Context, input internal.ForceFinalizeInput) (*internal.FinalizeResult, error)

// AdminForceRelease pays out the escrow to the hauler.
func AdminForceRelease(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return forceFinalize(svc.ForceRelease, notifications.EventPaymentForceReleased, sink, logg)
}

// AdminForceRefund returns the escrow to the shipper.
func AdminForceRefund(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return forceFinalize(svc.ForceRefund, notifications.EventPaymentForceRefunded, sink, logg)
}

func forceFinalize(run forceFinalizer, event notifications.EventName, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		paymentID, err := pathUUID(r, "paymentId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		actor, err := actorFrom(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := run(ctx, internal.ForceFinalizeInput{PaymentID: paymentID, Actor: actor})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		notifications.Publish(ctx, sink, logg, notifications.NewEvent(event, result))
		responses.WriteSuccess(w, result)
	}
}

// AdminRunAutoRelease triggers one auto-release batch outside the cron cadence.
func AdminRunAutoRelease(svc internal.Service, sink notifications.Sink, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		released, err := svc.RunAutoRelease(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		for i := range released {
			notifications.Publish(ctx, sink, logg, notifications.NewEvent(notifications.EventEscrowAutoReleased, released[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"released": released,
			"count":    len(released),
		})
	}
}
