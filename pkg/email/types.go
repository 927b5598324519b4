package email

import (
	"errors"
	"os"
)

// ProviderType represents supported email providers
type ProviderType string

const (
	ProviderMailgun  ProviderType = "mailgun"
	ProviderSendGrid ProviderType = "sendgrid"
)

// Config represents email provider configuration, read from the environment
type Config struct {
	ProviderType ProviderType
	APIKey       string
	Domain       string // mailgun only
	FromEmail    string
	FromName     string
}

// ConfigFromEnv builds a provider configuration from environment variables
func ConfigFromEnv() (*Config, error) {
	providerType := ProviderType(os.Getenv("EMAIL_PROVIDER"))
	if providerType == "" {
		return nil, errors.New("EMAIL_PROVIDER is not set")
	}

	cfg := &Config{
		ProviderType: providerType,
		APIKey:       os.Getenv("MAIL_API_KEY"),
		Domain:       os.Getenv("MAILGUN_DOMAIN"),
		FromEmail:    os.Getenv("MAIL_FROM"),
		FromName:     os.Getenv("MAIL_FROM_NAME"),
	}
	if cfg.FromName == "" {
		cfg.FromName = "Book Reader"
	}
	return cfg, nil
}

// Message represents a fully rendered email ready for a provider
type Message struct {
	To          []string
	Subject     string
	TextContent string
	HTMLContent string
}
