package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User roles
const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)

// DefaultUsername is assigned when registration omits a username
const DefaultUsername = "un_known"

// User represents the single persistent account entity. The three
// token/expiry pairs are nullable together: a secret is either fully
// present or fully absent, never half-set.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`

	IsVerified               bool       `json:"isVerified"`
	VerificationToken        *string    `json:"-"`
	VerificationTokenExpires *time.Time `json:"-"`

	OtpCode        *string    `json:"-"`
	OtpCodeExpires *time.Time `json:"-"`

	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`

	WantsEmails bool `json:"wantsEmails"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedBytes)
	return nil
}

// CheckPassword verifies if the provided password matches the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// HasValidVerificationToken reports whether a non-expired verification
// secret is outstanding at the given time
func (u *User) HasValidVerificationToken(now time.Time) bool {
	return u.VerificationToken != nil && u.VerificationTokenExpires != nil &&
		u.VerificationTokenExpires.After(now)
}

// HasValidOtpCode reports whether a non-expired OTP code is outstanding
func (u *User) HasValidOtpCode(now time.Time) bool {
	return u.OtpCode != nil && u.OtpCodeExpires != nil &&
		u.OtpCodeExpires.After(now)
}

// HasValidResetToken reports whether a non-expired reset secret is outstanding
func (u *User) HasValidResetToken(now time.Time) bool {
	return u.ResetToken != nil && u.ResetTokenExpires != nil &&
		u.ResetTokenExpires.After(now)
}

// NewUser creates a new unverified user with a generated UUID
func NewUser(username, email string) *User {
	if username == "" {
		username = DefaultUsername
	}
	now := time.Now()
	return &User{
		ID:          uuid.New(),
		Username:    username,
		Email:       email,
		Role:        RoleReader,
		IsVerified:  false,
		WantsEmails: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
