package middleware

import (
	"net/http"

	"github.com/angelmondragon/livehaul-backend/api/responses"
	"github.com/angelmondragon/livehaul-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
	"github.com/angelmondragon/livehaul-backend/pkg/logger"
)

// RequireRole rejects requests whose actor does not hold role.
func RequireRole(role enums.Role, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity"))
				return
			}
			if actor.Role != role {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Newf(pkgerrors.CodeForbidden, "%s role required", role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
