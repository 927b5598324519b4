package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/BasantaParajuli22/auth-mail-service/pkg/debug"
)

// Config holds the application configuration
type Config struct {
	Host string
	Port int

	// BaseURL is the externally reachable URL used in mailed links
	BaseURL string

	// JWTExpiryMinutes bounds the lifetime of session tokens
	JWTExpiryMinutes int

	// SecretTTLMinutes bounds the lifetime of verification tokens,
	// OTP codes and reset tokens
	SecretTTLMinutes int

	// MinPasswordLength is enforced at registration and password reset.
	// The default only rejects empty passwords; deployments opt into a
	// stricter minimum via MIN_PASSWORD_LENGTH.
	MinPasswordLength int
}

// NewConfig creates a new Config instance with values from environment variables
func NewConfig() *Config {
	cfg := &Config{
		Host:              getEnv("HOST", "localhost"),
		Port:              getEnvInt("PORT", 5000),
		JWTExpiryMinutes:  getEnvInt("JWT_EXPIRY_MINUTES", 60),
		SecretTTLMinutes:  getEnvInt("SECRET_TTL_MINUTES", 15),
		MinPasswordLength: getEnvInt("MIN_PASSWORD_LENGTH", 1),
	}

	cfg.BaseURL = os.Getenv("BACKEND_URL")
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		debug.Warning("BACKEND_URL not set, using %s for mailed links", cfg.BaseURL)
	}

	debug.Info("Application configuration loaded - addr: %s, secret TTL: %dm, JWT expiry: %dm",
		cfg.GetAddress(), cfg.SecretTTLMinutes, cfg.JWTExpiryMinutes)

	return cfg
}

// GetAddress returns the listen address for the HTTP server
func (c *Config) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		debug.Warning("Invalid integer for %s, using default %d", key, fallback)
	}
	return fallback
}
