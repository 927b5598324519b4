package auth

import (
	"net/http"
	"strings"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/httputil"
)

// RegisterRequest represents the expected JSON structure for registration
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	WantsEmails *bool  `json:"wantsEmails"`
}

// LoginRequest represents the expected JSON structure for login attempts
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest carries the email and token of a verification attempt
type VerifyRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// EmailRequest carries a bare email, used by resend and reset-mail
type EmailRequest struct {
	Email string `json:"email"`
}

// OtpVerifyRequest carries the email and OTP code of a 2FA completion
type OtpVerifyRequest struct {
	Email   string `json:"email"`
	OtpCode string `json:"otpCode"`
}

// ResetPasswordRequest carries the reset token and replacement password
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// TokenResponse is the body of a successful login
type TokenResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	AccessToken string `json:"access_token"`
}

// setAuthCookie stores the session token in an HttpOnly cookie alongside the
// JSON body, so both browser and API clients can authenticate
func setAuthCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	isDevelopment := strings.Contains(r.Host, "localhost") || strings.Contains(r.Host, "127.0.0.1")

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		HttpOnly: true,
		Secure:   !isDevelopment,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   maxAge,
	})
}

/*
 * RegisterHandler creates a new unverified account and mails the
 * verification link.
 *
 * Request body expects JSON:
 * {
 *   "username": "string",   // optional
 *   "email": "string",
 *   "password": "string",
 *   "wantsEmails": bool     // optional, defaults to true
 * }
 *
 * The account is persisted before mail is attempted; a dispatch failure
 * still responds 201, telling the caller to request a fresh token.
 */
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wantsEmails := true
	if req.WantsEmails != nil {
		wantsEmails = *req.WantsEmails
	}

	user, err := h.accounts.Register(r.Context(), req.Username, req.Email, req.Password, wantsEmails)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendVerification(r.Context(), user.Email, *user.VerificationToken); err != nil {
		debug.Error("Failed to send verification email to %s: %v", user.Email, err)
		httputil.RespondWithMessage(w, http.StatusCreated,
			"registration successful, but the verification email could not be sent; request a new one")
		return
	}

	httputil.RespondWithMessage(w, http.StatusCreated,
		"registration successful, check your inbox for the verification link")
}

// LoginHandler validates credentials against a verified account and
// responds with a session token
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, _, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	setAuthCookie(w, r, token, h.sessionMaxAge)
	httputil.RespondWithJSON(w, http.StatusOK, TokenResponse{
		Success:     true,
		Message:     "login successful",
		AccessToken: token,
	})
}

// VerifyHandler consumes a verification token and marks the account verified
func (h *Handler) VerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.accounts.VerifyEmail(r.Context(), req.Email, req.Token); err != nil {
		respondServiceError(w, err)
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "email verified, you can now log in")
}

// ResendHandler reissues the verification token once the previous one has
// lapsed and mails the new link
func (h *Handler) ResendHandler(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.RefreshVerificationToken(r.Context(), req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendVerification(r.Context(), user.Email, *user.VerificationToken); err != nil {
		debug.Error("Failed to send verification email to %s: %v", user.Email, err)
		httputil.RespondWithMessage(w, http.StatusOK,
			"a new token was issued, but the verification email could not be sent; try again after it expires")
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "a new verification link is on its way")
}

// OtpLoginHandler validates credentials and mails a one-time login code
// instead of issuing a session directly
func (h *Handler) OtpLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.InitiateOtpLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendOtp(r.Context(), user.Email, *user.OtpCode); err != nil {
		debug.Error("Failed to send OTP email to %s: %v", user.Email, err)
		httputil.RespondWithMessage(w, http.StatusOK,
			"a code was issued, but the email could not be sent; try again after it expires")
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "a one-time code has been sent to your email")
}

// OtpVerifyHandler completes a 2FA login by consuming the emailed code
func (h *Handler) OtpVerifyHandler(w http.ResponseWriter, r *http.Request) {
	var req OtpVerifyRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, _, err := h.accounts.VerifyOtpAndLogin(r.Context(), req.Email, req.OtpCode)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	setAuthCookie(w, r, token, h.sessionMaxAge)
	httputil.RespondWithJSON(w, http.StatusOK, TokenResponse{
		Success:     true,
		Message:     "login successful",
		AccessToken: token,
	})
}

// ResetMailHandler issues a password-reset token and mails the reset link
func (h *Handler) ResetMailHandler(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendPasswordReset(r.Context(), user.Email, *user.ResetToken); err != nil {
		debug.Error("Failed to send password reset email to %s: %v", user.Email, err)
		httputil.RespondWithMessage(w, http.StatusOK,
			"a reset token was issued, but the email could not be sent; try again after it expires")
		return
	}

	httputil.RespondWithMessage(w, http.StatusOK, "a password reset link has been sent to your email")
}

// ResetPasswordHandler consumes a reset token and installs the new password.
// The confirmation mail is best effort; the password change has already
// committed by the time it is attempted.
func (h *Handler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := httputil.ParseJSONBody(r, &req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.accounts.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if err := h.emailService.SendPasswordResetConfirmation(r.Context(), user.Email); err != nil {
		debug.Error("Failed to send reset confirmation email to %s: %v", user.Email, err)
	}

	httputil.RespondWithMessage(w, http.StatusOK, "password reset successful, you can now log in")
}
