package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

type contextKey string

const ctxActor contextKey = "actor"

// Actor is the caller identity asserted by the trusted upstream gateway.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}

// ActorFromContext returns the actor set by the Actor middleware.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	if ctx == nil {
		return Actor{}, false
	}
	actor, ok := ctx.Value(ctxActor).(Actor)
	return actor, ok
}

// WithActor injects the actor into the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// EntityContext tags request logs with the lifecycle entity named by a chi
// URL parameter, e.g. EntityContext(logg, "trip", "tripId") adds trip_id.
// Mount it inside the route that declares the parameter.
func EntityContext(logg *logger.Logger, kind, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(chi.URLParam(r, param))
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(logg.WithEntity(r.Context(), kind, id)))
		})
	}
}
