package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mintToken(t *testing.T, role string) string {
	t.Helper()
	token, err := jwt.GenerateToken("user-123", "alice@example.com", role, 60)
	require.NoError(t, err)
	return token
}

func TestRequireAuth(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := r.Context().Value(UserIDKey).(string)
		assert.Equal(t, "user-123", userID)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid cookie passes and sets user in context", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: mintToken(t, "reader")})

		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("bearer header works without cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
		req.Header.Set("Authorization", "Bearer "+mintToken(t, "reader"))

		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)

		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users/x", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: "garbage"})

		rr := httptest.NewRecorder()
		RequireAuth(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestAdminOnly(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("admin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/x/send-updates", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: mintToken(t, "admin")})

		rr := httptest.NewRecorder()
		AdminOnly(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("reader is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/x/send-updates", nil)
		req.AddCookie(&http.Cookie{Name: "token", Value: mintToken(t, "reader")})

		rr := httptest.NewRecorder()
		AdminOnly(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/users/x/send-updates", nil)

		rr := httptest.NewRecorder()
		AdminOnly(next).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
