package lifecycle

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/livehaul-backend/api/middleware"
	"github.com/angelmondragon/livehaul-backend/api/validators"
	internal "github.com/angelmondragon/livehaul-backend/internal/lifecycle"
	pkgerrors "github.com/angelmondragon/livehaul-backend/pkg/errors"
)

func pathUUID(r *http.Request, param string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, param))
	if raw == "" {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", param)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+param).
			WithDetails(map[string]any{"field": param})
	}
	return id, nil
}

func actorFrom(r *http.Request) (internal.Actor, error) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		return internal.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor identity")
	}
	return internal.Actor{UserID: actor.UserID, Role: actor.Role}, nil
}

// decodeOptionalBody decodes dest when the request carries a body.
func decodeOptionalBody(r *http.Request, dest any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return validators.DecodeJSONBody(r, dest)
}

func optionalText(value string, maxLen int) *string {
	clean := validators.SanitizeString(value, maxLen)
	if clean == "" {
		return nil
	}
	return &clean
}

func validationDetail(field, msg string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{field: msg})
}
