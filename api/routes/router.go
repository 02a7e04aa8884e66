package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/livehaul-backend/api/controllers"
	lifecyclecontrollers "github.com/angelmondragon/livehaul-backend/api/controllers/lifecycle"
	"github.com/angelmondragon/livehaul-backend/api/middleware"
	"github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	"github.com/angelmondragon/livehaul-backend/internal/notifications"
	"github.com/angelmondragon/livehaul-backend/pkg/config"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
	"github.com/angelmondragon/livehaul-backend/pkg/redis"
)

// Deps are the collaborators mounted by NewRouter. RedisPinger, Idempotency
// and Metrics are optional.
type Deps struct {
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	Idempotency redis.IdempotencyStore
	Lifecycle   lifecycle.Service
	Sink        notifications.Sink
	Metrics     http.Handler
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	svc, sink := deps.Lifecycle, deps.Sink
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ActorContext(logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Post("/offers/{offerId}/accept", lifecyclecontrollers.AcceptOffer(svc, sink, logg))

		r.Route("/trips/{tripId}", func(r chi.Router) {
			r.Use(middleware.EntityContext(logg, "trip", "tripId"))
			r.Get("/", lifecyclecontrollers.GetTrip(svc, logg))
			r.Get("/payment", lifecyclecontrollers.GetTripPayment(svc, logg))
			r.Post("/fund", lifecyclecontrollers.FundPayment(svc, sink, logg))
			r.Post("/start", lifecyclecontrollers.StartTrip(svc, sink, logg))
			r.Post("/deliver", lifecyclecontrollers.MarkDelivered(svc, sink, logg))
			r.Post("/confirm", lifecyclecontrollers.ConfirmDelivery(svc, sink, logg))
			r.Post("/disputes", lifecyclecontrollers.OpenDispute(svc, sink, logg))
		})

		r.Route("/disputes/{disputeId}", func(r chi.Router) {
			r.Use(middleware.EntityContext(logg, "dispute", "disputeId"))
			r.Post("/review", lifecyclecontrollers.ReviewDispute(svc, sink, logg))
			r.Post("/resolve", lifecyclecontrollers.ResolveDispute(svc, sink, logg))
			r.Post("/cancel", lifecyclecontrollers.CancelDispute(svc, sink, logg))
		})

		r.Get("/payments/{paymentId}/disputes", lifecyclecontrollers.ListPaymentDisputes(svc, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.RoleAdmin, logg))
			r.Post("/payments/{paymentId}/release", lifecyclecontrollers.AdminForceRelease(svc, sink, logg))
			r.Post("/payments/{paymentId}/refund", lifecyclecontrollers.AdminForceRefund(svc, sink, logg))
			r.Post("/escrow/auto-release", lifecyclecontrollers.AdminRunAutoRelease(svc, sink, logg))
		})
	})

	return r
}
