package email

import (
	"context"
	"fmt"

	"github.com/BasantaParajuli22/auth-mail-service/internal/email/providers"
	"github.com/BasantaParajuli22/auth-mail-service/internal/models"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	emailtypes "github.com/BasantaParajuli22/auth-mail-service/pkg/email"
)

// Service dispatches account mail through the configured provider.
// Dispatch is synchronous and best-effort: callers treat a send failure
// as a warning, never as a reason to roll back persisted state.
type Service struct {
	provider providers.Provider
	baseURL  string
}

// NewService creates an email service from environment configuration
func NewService(baseURL string) (*Service, error) {
	cfg, err := emailtypes.ConfigFromEnv()
	if err != nil {
		return nil, err
	}

	provider, err := providers.New(cfg.ProviderType)
	if err != nil {
		return nil, fmt.Errorf("invalid provider: %w", err)
	}

	if err := provider.Initialize(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize provider: %w", err)
	}

	debug.Info("email service ready with provider: %s", cfg.ProviderType)
	return &Service{provider: provider, baseURL: baseURL}, nil
}

// NewServiceWithProvider creates an email service with an explicit provider.
// Used by tests.
func NewServiceWithProvider(provider providers.Provider, baseURL string) *Service {
	return &Service{provider: provider, baseURL: baseURL}
}

func (s *Service) send(ctx context.Context, msg *emailtypes.Message) error {
	if err := s.provider.Send(ctx, msg); err != nil {
		debug.Error("failed to send %q to %v: %v", msg.Subject, msg.To, err)
		return fmt.Errorf("%w: %w", models.ErrDispatchFailed, err)
	}
	return nil
}
