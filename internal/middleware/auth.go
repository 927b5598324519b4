package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/httputil"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/jwt"
)

type contextKey string

// UserIDKey is the request context key holding the authenticated user ID
const UserIDKey contextKey = "user_id"

// tokenFromRequest reads the session token from the auth cookie, falling
// back to a bearer Authorization header for non-browser clients
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// RequireAuth middleware ensures that only authenticated users can access the route
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := tokenFromRequest(r)
		if token == "" {
			debug.Warning("No auth token found for %s %s", r.Method, r.URL.Path)
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		userID, err := jwt.ValidateJWT(token)
		if err != nil {
			debug.Warning("Invalid token: %v", err)
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminOnly middleware ensures that only admin users can access the route
func AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromRequest(r)
		if token == "" {
			debug.Warning("No auth token found for admin route %s", r.URL.Path)
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		role, err := jwt.GetUserRole(token)
		if err != nil {
			debug.Warning("Invalid token: %v", err)
			httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		if role != "admin" {
			debug.Warning("Non-admin user attempted to access admin route (role: %s)", role)
			httputil.RespondWithError(w, http.StatusForbidden, "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}
