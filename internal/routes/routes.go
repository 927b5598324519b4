package routes

import (
	"net/http"
	"os"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/internal/config"
	"github.com/BasantaParajuli22/auth-mail-service/internal/db"
	"github.com/BasantaParajuli22/auth-mail-service/internal/email"
	authhandler "github.com/BasantaParajuli22/auth-mail-service/internal/handlers/auth"
	userhandler "github.com/BasantaParajuli22/auth-mail-service/internal/handlers/user"
	"github.com/BasantaParajuli22/auth-mail-service/internal/middleware"
	"github.com/BasantaParajuli22/auth-mail-service/internal/services"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/httputil"
	"github.com/gorilla/mux"
)

/*
 * Package routes handles the setup and configuration of all application routes.
 * It includes middleware for CORS and request logging, and organizes routes
 * into a public auth group and a JWT-protected user group.
 */

// CORSMiddleware handles CORS headers for all requests. The allowed origin
// comes from CORS_ALLOWED_ORIGIN, defaulting to the local dev frontend.
func CORSMiddleware(next http.Handler) http.Handler {
	allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:3000"
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, Origin, Cookie")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs details about each request
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		debug.Info("Request received: %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)

		rw := &responseWriter{w, http.StatusOK}
		next.ServeHTTP(rw, r)

		debug.Info("Request completed: %s %s - Status: %d - Duration: %v",
			r.Method, r.URL.Path, rw.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

/*
 * SetupRoutes wires up all application routes.
 *
 * Route Groups:
 *   - /api/health                     liveness probe
 *   - /api/auth/...                   public account lifecycle endpoints
 *   - /api/users/{userId}/...         JWT-protected account preferences,
 *                                     with an admin-only bulk update route
 */
func SetupRoutes(r *mux.Router, database *db.DB, emailService *email.Service, cfg *config.Config) {
	debug.Info("Initializing route configuration")

	r.Use(CORSMiddleware)

	apiRouter := r.PathPrefix("/api").Subrouter()
	apiRouter.Use(loggingMiddleware)

	apiRouter.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.RespondWithMessage(w, http.StatusOK, "ok")
	}).Methods(http.MethodGet)

	authService := services.NewAuthService(database, cfg)
	authHandler := authhandler.NewHandlerWithServices(authService, emailService, cfg)

	authRouter := apiRouter.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.LoginHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/2fa-login", authHandler.OtpLoginHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/2fa-verify", authHandler.OtpVerifyHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/verify", authHandler.VerifyHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/resend", authHandler.ResendHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/reset-mail", authHandler.ResetMailHandler).Methods(http.MethodPost)
	authRouter.HandleFunc("/reset-password", authHandler.ResetPasswordHandler).Methods(http.MethodPost)

	userHandler := userhandler.NewHandler(database, emailService)

	userRouter := apiRouter.PathPrefix("/users").Subrouter()
	userRouter.Use(middleware.RequireAuth)
	userRouter.HandleFunc("/{userId}/email-preference", userHandler.EmailPreferenceHandler).Methods(http.MethodPut)
	userRouter.Handle("/{userId}/send-updates",
		middleware.AdminOnly(http.HandlerFunc(userHandler.SendUpdatesHandler))).Methods(http.MethodPost)

	debug.Info("Route configuration completed successfully")
}
