package token

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	// secretBytes is the entropy of a verification or reset token
	secretBytes = 32
	// otpLength is the number of digits in an emailed OTP code
	otpLength = 6
)

// GenerateSecret creates a URL-safe random token for email verification
// and password reset links. 32 bytes of entropy makes collisions negligible
// without a uniqueness check.
func GenerateSecret() (string, error) {
	b := make([]byte, secretBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// GenerateOTP creates a random numeric code for email 2FA
func GenerateOTP() (string, error) {
	const charset = "0123456789"
	code := make([]byte, otpLength)
	bytes := make([]byte, otpLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	for i, b := range bytes {
		code[i] = charset[int(b)%len(charset)]
	}
	return string(code), nil
}
