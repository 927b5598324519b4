package services

import (
	"context"
	"fmt"
	"time"

	"github.com/BasantaParajuli22/auth-mail-service/internal/config"
	"github.com/BasantaParajuli22/auth-mail-service/internal/db"
	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/jwt"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/password"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/token"
)

// AuthService is the account lifecycle engine: registration, credential
// verification, email confirmation, OTP login and password reset. Every
// state transition goes through a single conditional store update, so
// concurrent requests for the same user cannot both consume or reissue
// the same secret.
type AuthService struct {
	db  *db.DB
	cfg *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(database *db.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: database, cfg: cfg}
}

func (s *AuthService) secretExpiry() time.Time {
	return time.Now().Add(time.Duration(s.cfg.SecretTTLMinutes) * time.Minute)
}

func (s *AuthService) passwordPolicy() password.Policy {
	return password.Policy{MinLength: s.cfg.MinPasswordLength}
}

// Register creates a new unverified user with a fresh verification secret.
// The returned user carries the plaintext token so the caller can mail it.
// The initial issuance is unconditional; only reissues are throttled.
func (s *AuthService) Register(ctx context.Context, username, email, pass string, wantsEmails bool) (*models.User, error) {
	if email == "" || pass == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrInvalidInput)
	}
	if err := password.Validate(pass, s.passwordPolicy()); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	secret, err := token.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}
	expires := s.secretExpiry()

	user := models.NewUser(username, email)
	user.WantsEmails = wantsEmails
	user.VerificationToken = &secret
	user.VerificationTokenExpires = &expires
	if err := user.SetPassword(pass); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	debug.Info("Registered new user %s (%s)", user.Username, user.Email)
	return user, nil
}

// Authenticate performs a pure credential check with no side effects.
// Verification status is the caller's concern, not this operation's.
func (s *AuthService) Authenticate(ctx context.Context, email, pass string) (*models.User, error) {
	if email == "" || pass == "" {
		return nil, fmt.Errorf("%w: email and password are required", models.ErrInvalidInput)
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(pass) {
		return nil, models.ErrWrongCredentials
	}
	return user, nil
}

// Login authenticates, requires a verified email, and mints a session token
func (s *AuthService) Login(ctx context.Context, email, pass string) (string, *models.User, error) {
	user, err := s.Authenticate(ctx, email, pass)
	if err != nil {
		return "", nil, err
	}
	if !user.IsVerified {
		return "", nil, models.ErrNotVerified
	}

	sessionToken, err := jwt.GenerateToken(user.ID.String(), user.Email, user.Role, s.cfg.JWTExpiryMinutes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	debug.Info("User %s logged in", user.Email)
	return sessionToken, user, nil
}

// VerifyEmail consumes a live verification secret and marks the account
// verified. A spent or mismatched token on an already-verified account
// reports ErrAlreadyVerified; every other miss is ErrInvalidOrExpiredToken.
func (s *AuthService) VerifyEmail(ctx context.Context, email, verificationToken string) (*models.User, error) {
	if email == "" || verificationToken == "" {
		return nil, fmt.Errorf("%w: email and token are required", models.ErrInvalidInput)
	}

	user, err := s.db.ConsumeVerificationToken(ctx, email, verificationToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Nothing matched. Distinguish a verified account from a stale
		// or wrong token for the caller's messaging.
		existing, lookupErr := s.db.GetUserByEmail(ctx, email)
		if lookupErr == nil && existing.IsVerified {
			return nil, models.ErrAlreadyVerified
		}
		return nil, models.ErrInvalidOrExpiredToken
	}

	debug.Info("Email verified for user %s", user.Email)
	return user, nil
}

// RefreshVerificationToken reissues the verification secret once the
// previous one has lapsed. A live secret rejects the reissue so callers
// cannot spam mail; the rejection names the remaining validity window.
func (s *AuthService) RefreshVerificationToken(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}

	current, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if current.IsVerified {
		return nil, models.ErrAlreadyVerified
	}
	if current.HasValidVerificationToken(time.Now()) {
		return nil, throttleError(*current.VerificationTokenExpires)
	}

	secret, err := token.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification token: %w", err)
	}

	user, err := s.db.RefreshVerificationToken(ctx, email, secret, s.secretExpiry())
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Lost a race against a concurrent reissue or verification.
		return nil, models.ErrTokenStillValid
	}

	debug.Info("Verification token reissued for %s", user.Email)
	return user, nil
}

// InitiateOtpLogin authenticates like Login but issues an emailed OTP code
// instead of a session token
func (s *AuthService) InitiateOtpLogin(ctx context.Context, email, pass string) (*models.User, error) {
	user, err := s.Authenticate(ctx, email, pass)
	if err != nil {
		return nil, err
	}
	if !user.IsVerified {
		return nil, models.ErrNotVerified
	}
	return s.GenerateOtp(ctx, email)
}

// GenerateOtp issues a fresh OTP code unless a live one is outstanding.
// The returned user carries the plaintext code for the caller to mail.
func (s *AuthService) GenerateOtp(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}

	current, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if current.HasValidOtpCode(time.Now()) {
		return nil, throttleError(*current.OtpCodeExpires)
	}

	code, err := token.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate OTP code: %w", err)
	}

	user, err := s.db.SetOtpCode(ctx, email, code, s.secretExpiry())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrTokenStillValid
	}

	debug.Info("OTP code issued for %s", user.Email)
	return user, nil
}

// VerifyOtpAndLogin consumes a live OTP code and mints a session token.
// The store predicate also requires a verified account, so an OTP issued
// through any future unverified path can never complete a login.
func (s *AuthService) VerifyOtpAndLogin(ctx context.Context, email, code string) (string, *models.User, error) {
	if email == "" || code == "" {
		return "", nil, fmt.Errorf("%w: email and otp code are required", models.ErrInvalidInput)
	}

	user, err := s.db.ConsumeOtpCode(ctx, email, code)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, models.ErrInvalidOrExpiredToken
	}

	sessionToken, err := jwt.GenerateToken(user.ID.String(), user.Email, user.Role, s.cfg.JWTExpiryMinutes)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	debug.Info("User %s logged in via OTP", user.Email)
	return sessionToken, user, nil
}

// RequestPasswordReset issues a fresh reset secret unless a live one is
// outstanding. The returned user carries the plaintext token.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (*models.User, error) {
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", models.ErrInvalidInput)
	}

	current, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if current.HasValidResetToken(time.Now()) {
		return nil, throttleError(*current.ResetTokenExpires)
	}

	secret, err := token.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate reset token: %w", err)
	}

	user, err := s.db.SetResetToken(ctx, email, secret, s.secretExpiry())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrTokenStillValid
	}

	debug.Info("Password reset token issued for %s", user.Email)
	return user, nil
}

// ResetPassword consumes a live reset secret, looked up by token alone,
// and replaces the password in the same conditional update
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) (*models.User, error) {
	if resetToken == "" || newPassword == "" {
		return nil, fmt.Errorf("%w: token and password are required", models.ErrInvalidInput)
	}
	if err := password.Validate(newPassword, s.passwordPolicy()); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
	}

	staged := &models.User{}
	if err := staged.SetPassword(newPassword); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.db.ConsumeResetToken(ctx, resetToken, staged.PasswordHash)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrInvalidOrExpiredToken
	}

	debug.Info("Password reset completed for %s", user.Email)
	return user, nil
}

// throttleError wraps ErrTokenStillValid with the remaining validity window
func throttleError(expires time.Time) error {
	remaining := time.Until(expires).Round(time.Second)
	return fmt.Errorf("%w: use the previously issued one, usable for another %s",
		models.ErrTokenStillValid, remaining)
}
