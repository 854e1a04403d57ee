package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brgy-records/apiserver/internal/services"
	"github.com/brgy-records/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing", "", http.StatusUnauthorized, "Access token required"},
		{"not bearer", "Basic YWRtaW46c2VjcmV0", http.StatusUnauthorized, "Access token required"},
		{"expired", "Bearer expired-token", http.StatusUnauthorized, "Token expired"},
		{"forged", "Bearer forged-token", http.StatusForbidden, "Invalid or expired token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeEnvelope(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tc.message, resp.Message)
		})
	}
}

func TestRequireAuthAttachesUser(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/auth/profile", "staff-token", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"clerk"`)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestDeactivatedUserTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/auth/profile", "staff-token", "").Code)

	// Authenticate reloads the account, so a deactivated user's unexpired
	// token stops resolving.
	api.auth.tokens["staff-token"] = tokenResult{err: services.ErrInvalidToken}

	rec := api.do(t, http.MethodGet, "/api/auth/profile", "staff-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRole(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/auth/users", "staff-token", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Insufficient permissions", decodeEnvelope(t, rec).Message)

	handler := RequireRole(types.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthNeverRejects(t *testing.T) {
	var seen []bool
	handler := OptionalAuth(newFakeAuth())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := currentUser(r.Context())
		seen = append(seen, ok)
		w.WriteHeader(http.StatusNoContent)
	}))

	for _, header := range []string{"", "Bearer forged-token", "Bearer admin-token"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
	assert.Equal(t, []bool{false, false, true}, seen)
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := RequestLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/stats", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
	assert.EqualValues(t, 15, fields["bytes"])
}
