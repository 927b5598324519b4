package email

import (
	"context"
	"errors"
	"testing"

	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	emailtypes "github.com/BasantaParajuli22/auth-mail-service/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingProvider captures sent messages and can fail selected recipients
type recordingProvider struct {
	sent    []*emailtypes.Message
	failFor map[string]error
}

func (p *recordingProvider) Initialize(_ *emailtypes.Config) error     { return nil }
func (p *recordingProvider) ValidateConfig(_ *emailtypes.Config) error { return nil }

func (p *recordingProvider) Send(_ context.Context, msg *emailtypes.Message) error {
	p.sent = append(p.sent, msg)
	if err, ok := p.failFor[msg.To[0]]; ok {
		return err
	}
	return nil
}

func newRecordingService() (*Service, *recordingProvider) {
	provider := &recordingProvider{failFor: map[string]error{}}
	return NewServiceWithProvider(provider, "https://app.example.com"), provider
}

func TestSendVerification(t *testing.T) {
	service, provider := newRecordingService()

	err := service.SendVerification(context.Background(), "alice@example.com", "tok-123")
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)

	msg := provider.sent[0]
	assert.Equal(t, []string{"alice@example.com"}, msg.To)
	assert.Contains(t, msg.TextContent, "https://app.example.com/verify-email?token=tok-123")
	assert.Contains(t, msg.HTMLContent, "https://app.example.com/verify-email?token=tok-123")
}

func TestSendOtp(t *testing.T) {
	service, provider := newRecordingService()

	err := service.SendOtp(context.Background(), "alice@example.com", "123456")
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
	assert.Contains(t, provider.sent[0].TextContent, "123456")
}

func TestSendPasswordReset(t *testing.T) {
	service, provider := newRecordingService()

	err := service.SendPasswordReset(context.Background(), "alice@example.com", "rst-1")
	require.NoError(t, err)
	require.Len(t, provider.sent, 1)
	assert.Contains(t, provider.sent[0].TextContent, "https://app.example.com/password-reset?token=rst-1")
}

func TestSendBulkUpdate(t *testing.T) {
	t.Run("personalizes each recipient", func(t *testing.T) {
		service, provider := newRecordingService()

		recipients := []Recipient{
			{Email: "a@example.com", Username: "ann"},
			{Email: "b@example.com", Username: "ben"},
		}
		err := service.SendBulkUpdate(context.Background(), "New shelves", "Browse away.", recipients)
		require.NoError(t, err)
		require.Len(t, provider.sent, 2)

		assert.Equal(t, "Update: New shelves!", provider.sent[0].Subject)
		assert.Contains(t, provider.sent[0].TextContent, "Hi ann")
		assert.Contains(t, provider.sent[1].TextContent, "Hi ben")
	})

	t.Run("continues past a failed recipient", func(t *testing.T) {
		service, provider := newRecordingService()
		sendErr := errors.New("mailbox full")
		provider.failFor["a@example.com"] = sendErr

		recipients := []Recipient{
			{Email: "a@example.com", Username: "ann"},
			{Email: "b@example.com", Username: "ben"},
		}
		err := service.SendBulkUpdate(context.Background(), "h", "m", recipients)
		assert.ErrorIs(t, err, sendErr)
		assert.ErrorIs(t, err, models.ErrDispatchFailed)
		assert.Len(t, provider.sent, 2, "remaining recipients still receive mail")
	})
}
