package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

const (
	ActorUserIDHeader = "X-Actor-User-Id"
	ActorRoleHeader   = "X-Actor-Role"
)

// ActorContext reads the actor headers set by the upstream gateway and seeds
// the request context. Requests without a usable identity are rejected.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := strings.TrimSpace(r.Header.Get(ActorUserIDHeader))
			if rawID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity"))
				return
			}
			userID, err := uuid.Parse(rawID)
			if err != nil || userID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid actor identity"))
				return
			}
			role, err := enums.ParseRole(r.Header.Get(ActorRoleHeader))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid actor role"))
				return
			}

			ctx := WithActor(r.Context(), Actor{UserID: userID, Role: role})
			if logg != nil {
				ctx = logg.WithActor(ctx, userID.String(), role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
