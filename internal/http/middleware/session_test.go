package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinic360/platform/internal/identity"
)

const testSecret = "test-secret"

func sessionEcho(t *testing.T, want identity.Session) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := identity.SessionFromContext(r.Context())
		require.True(t, ok)
		assert.Equal(t, want, session)
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionAuthAcceptsSignedToken(t *testing.T) {
	want := identity.Session{UserID: 7, Role: identity.RoleDoctor}
	token, err := SignSession(testSecret, want, time.Hour)
	require.NoError(t, err)

	handler := SessionAuth(testSecret)(sessionEcho(t, want))
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthRejectsMissingHeader(t *testing.T) {
	handler := SessionAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not be reached")
	}))
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"message":"not authenticated"}`, rec.Body.String())
}

func TestSessionAuthRejectsWrongSecret(t *testing.T) {
	token, err := SignSession("other-secret", identity.Session{UserID: 7, Role: identity.RolePatient}, time.Hour)
	require.NoError(t, err)

	handler := SessionAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not be reached")
	}))
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsExpiredToken(t *testing.T) {
	token, err := SignSession(testSecret, identity.Session{UserID: 7, Role: identity.RolePatient}, -time.Minute)
	require.NoError(t, err)

	handler := SessionAuth(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler should not be reached")
	}))
	req := httptest.NewRequest(http.MethodGet, "/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleBlocksOtherRoles(t *testing.T) {
	handler := RequireRole(identity.RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/schedule", nil)
	req = req.WithContext(identity.WithSession(req.Context(), identity.Session{UserID: 3, Role: identity.RolePatient}))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"message":"access denied"}`, rec.Body.String())
}

func TestRequireRoleWithoutSession(t *testing.T) {
	handler := RequireRole(identity.RoleDoctor)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/schedule", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
