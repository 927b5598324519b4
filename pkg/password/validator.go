package password

import (
	"fmt"
	"unicode"
)

// Policy holds the password requirements enforced at registration and reset
type Policy struct {
	MinLength      int
	RequireNumbers bool
}

// DefaultPolicy matches the baseline requirements for new accounts:
// any non-empty password is accepted. Stricter rules are opt-in.
var DefaultPolicy = Policy{
	MinLength:      1,
	RequireNumbers: false,
}

// ValidationError represents a password validation error
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

// Validate checks if a password meets the given policy
func Validate(password string, policy Policy) error {
	if len(password) < policy.MinLength {
		return &ValidationError{
			Rule:    "Length",
			Message: fmt.Sprintf("Password must be at least %d characters long", policy.MinLength),
		}
	}

	if policy.RequireNumbers {
		hasNumber := false
		for _, char := range password {
			if unicode.IsNumber(char) {
				hasNumber = true
				break
			}
		}
		if !hasNumber {
			return &ValidationError{
				Rule:    "Numbers",
				Message: "Password must contain at least one number",
			}
		}
	}

	return nil
}
