package services

import (
	"context"

	"github.com/BasantaParajuli22/auth-mail-service/internal/db"
	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
	"github.com/robfig/cron/v3"
)

// cleanupSchedule clears lapsed secrets every ten minutes. Expiry is
// enforced at consumption time regardless; the sweep only keeps stale
// token columns from accumulating.
const cleanupSchedule = "*/10 * * * *"

// SecretCleanupService periodically nulls out expired verification, OTP
// and reset secrets
type SecretCleanupService struct {
	db   *db.DB
	cron *cron.Cron
}

// NewSecretCleanupService creates a new SecretCleanupService
func NewSecretCleanupService(database *db.DB) *SecretCleanupService {
	return &SecretCleanupService{
		db:   database,
		cron: cron.New(),
	}
}

// Start begins the periodic secret cleanup process
func (s *SecretCleanupService) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(cleanupSchedule, func() { s.cleanup(ctx) }); err != nil {
		return err
	}
	s.cron.Start()
	debug.Info("Secret cleanup service started with schedule %q", cleanupSchedule)

	// Run initial cleanup immediately
	go s.cleanup(ctx)
	return nil
}

// Stop stops the secret cleanup service and waits for a running sweep
func (s *SecretCleanupService) Stop() {
	<-s.cron.Stop().Done()
	debug.Info("Secret cleanup service stopped")
}

func (s *SecretCleanupService) cleanup(ctx context.Context) {
	debug.Debug("Running expired secret cleanup...")

	cleared, err := s.db.ClearExpiredSecrets(ctx)
	if err != nil {
		debug.Error("Failed to clear expired secrets: %v", err)
		return
	}
	if cleared > 0 {
		debug.Info("Cleared expired secrets from %d user rows", cleared)
	}
}
