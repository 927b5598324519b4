package email

import (
	"context"
	"fmt"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	emailtypes "github.com/BasantaParajuli22/auth-mail-service/pkg/email"
)

// Recipient identifies a bulk-mail target
type Recipient struct {
	Email    string
	Username string
}

// SendVerification mails the email-verification link for a freshly issued token
func (s *Service) SendVerification(ctx context.Context, to, token string) error {
	verificationURL := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token)

	return s.send(ctx, &emailtypes.Message{
		To:      []string{to},
		Subject: "Verify your email",
		TextContent: fmt.Sprintf(
			"Please open the following link to verify your email: %s", verificationURL),
		HTMLContent: fmt.Sprintf(
			`<p>Please click <a href="%s">here</a> to verify your email.</p>`, verificationURL),
	})
}

// SendOtp mails a one-time login code
func (s *Service) SendOtp(ctx context.Context, to, code string) error {
	return s.send(ctx, &emailtypes.Message{
		To:          []string{to},
		Subject:     "Your OTP code",
		TextContent: fmt.Sprintf("Your OTP code is %s.", code),
		HTMLContent: fmt.Sprintf("<p>Your OTP code is %s.</p>", code),
	})
}

// SendPasswordReset mails the password-reset link for a freshly issued token
func (s *Service) SendPasswordReset(ctx context.Context, to, token string) error {
	resetURL := fmt.Sprintf("%s/password-reset?token=%s", s.baseURL, token)

	return s.send(ctx, &emailtypes.Message{
		To:      []string{to},
		Subject: "Password Reset",
		TextContent: fmt.Sprintf(
			"Please open the following link to reset your password: %s", resetURL),
		HTMLContent: fmt.Sprintf(
			`<p>Please click <a href="%s">here</a> to reset your password.</p>`, resetURL),
	})
}

// SendPasswordResetConfirmation notifies a user that their password changed
func (s *Service) SendPasswordResetConfirmation(ctx context.Context, to string) error {
	body := "Your password has been successfully reset. " +
		"If you didn't do this, contact support immediately."

	return s.send(ctx, &emailtypes.Message{
		To:          []string{to},
		Subject:     "Your Password was changed",
		TextContent: body,
		HTMLContent: fmt.Sprintf("<p>%s</p>", body),
	})
}

// SendBulkUpdate mails an announcement to every subscribed user, personalized
// with their username. Sending continues past individual failures; the first
// error is returned after the loop completes.
func (s *Service) SendBulkUpdate(ctx context.Context, header, message string, recipients []Recipient) error {
	var firstErr error
	for _, r := range recipients {
		err := s.send(ctx, &emailtypes.Message{
			To:      []string{r.Email},
			Subject: fmt.Sprintf("Update: %s!", header),
			TextContent: fmt.Sprintf("Hi %s,\n\nWe just rolled out new updates.\n\n%s",
				r.Username, message),
			HTMLContent: fmt.Sprintf("<h2>%s</h2><p>Hi, %s</p><p>We just rolled out new updates...</p><p>%s</p>",
				header, r.Username, message),
		})
		if err != nil {
			debug.Error("bulk update mail to %s failed: %v", r.Email, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	debug.Info("bulk update mail dispatched to %d recipients", len(recipients))
	return firstErr
}
