package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/livehaul-backend/pkg/enums"
)

func TestActorContext(t *testing.T) {
	userID := uuid.New()
	cases := []struct {
		name   string
		userID string
		role   string
		status int
	}{
		{"valid shipper", userID.String(), "shipper", http.StatusOK},
		{"role case insensitive", userID.String(), "ADMIN", http.StatusOK},
		{"missing user", "", "shipper", http.StatusUnauthorized},
		{"malformed user", "not-a-uuid", "shipper", http.StatusUnauthorized},
		{"nil user", uuid.Nil.String(), "hauler", http.StatusUnauthorized},
		{"unknown role", userID.String(), "driver", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen Actor
			handler := ActorContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen, _ = ActorFromContext(r.Context())
			}))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/trips/x/start", nil)
			req.Header.Set(ActorUserIDHeader, tc.userID)
			req.Header.Set(ActorRoleHeader, tc.role)
			resp := httptest.NewRecorder()
			handler.ServeHTTP(resp, req)

			require.Equal(t, tc.status, resp.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, userID, seen.UserID)
				assert.True(t, seen.Role.IsValid())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(enums.RoleAdmin, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{UserID: uuid.New(), Role: enums.RoleShipper}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithActor(req.Context(), Actor{UserID: uuid.New(), Role: enums.RoleAdmin}))
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestRecovererWritesInternalError(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRequestIDEchoesHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-1")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	assert.Equal(t, "req-1", resp.Header().Get("X-Request-Id"))

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(resp.Header().Get("X-Request-Id"))
	assert.NoError(t, err)
}

func TestRecovererKeepsStartedResponse(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		panic("late")
	}))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusAccepted, resp.Code)
	assert.Empty(t, resp.Body.String())
}

func TestRecovererRethrowsAbort(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestIDReplacesUnsafeHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, bad := range []string{"has space", strings.Repeat("x", maxRequestIDLength+1), "café"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-Id", bad)
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		_, err := uuid.Parse(resp.Header().Get("X-Request-Id"))
		assert.NoError(t, err, bad)
	}
}
