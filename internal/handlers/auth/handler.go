package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/BasantaParajuli22/auth-mail-service/internal/config"
	"github.com/BasantaParajuli22/auth-mail-service/internal/email"
	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/BasantaParajuli22/auth-mail-service/internal/services"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/httputil"
)

// AccountService defines the lifecycle operations needed by auth handlers
type AccountService interface {
	Register(ctx context.Context, username, email, password string, wantsEmails bool) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	VerifyEmail(ctx context.Context, email, token string) (*models.User, error)
	RefreshVerificationToken(ctx context.Context, email string) (*models.User, error)
	InitiateOtpLogin(ctx context.Context, email, password string) (*models.User, error)
	VerifyOtpAndLogin(ctx context.Context, email, code string) (string, *models.User, error)
	RequestPasswordReset(ctx context.Context, email string) (*models.User, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*models.User, error)
}

// EmailService defines the interface for email operations needed by auth handlers
type EmailService interface {
	SendVerification(ctx context.Context, to, token string) error
	SendOtp(ctx context.Context, to, code string) error
	SendPasswordReset(ctx context.Context, to, token string) error
	SendPasswordResetConfirmation(ctx context.Context, to string) error
}

// Handler handles authentication-related requests
type Handler struct {
	accounts     AccountService
	emailService EmailService

	// sessionMaxAge is the auth cookie lifetime in seconds, derived from
	// the JWT expiry so the cookie and token lapse together
	sessionMaxAge int
}

// NewHandler creates a new auth handler
func NewHandler(accounts AccountService, emailService EmailService, sessionMinutes int) *Handler {
	return &Handler{
		accounts:      accounts,
		emailService:  emailService,
		sessionMaxAge: sessionMinutes * 60,
	}
}

// NewHandlerWithServices creates a new auth handler from the concrete services.
// This is a convenience function for production code.
func NewHandlerWithServices(accounts *services.AuthService, emailService *email.Service, cfg *config.Config) *Handler {
	return NewHandler(accounts, emailService, cfg.JWTExpiryMinutes)
}

// statusForError maps a lifecycle error to its HTTP status code
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, models.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrWrongCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotVerified):
		return http.StatusForbidden
	case errors.Is(err, models.ErrAlreadyVerified):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidOrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrTokenStillValid):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError writes the error with its mapped status. Unexpected
// errors are logged and masked behind a generic message.
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		debug.Error("Unexpected service error: %v", err)
		httputil.RespondWithError(w, status, "internal server error")
		return
	}
	httputil.RespondWithError(w, status, err.Error())
}
