package service

import (
	"fmt"

	"filmrental-backend/internal/config"
	"filmrental-backend/internal/logger"
)

// NewEmailServiceFromConfig builds the notification channel selected by cfg.Provider.
func NewEmailServiceFromConfig(cfg config.EmailConfig) (EmailService, error) {
	switch cfg.Provider {
	case config.EmailProviderSMTP, "":
		logger.Info("Using SMTP email provider", "host", cfg.SMTP.Host, "port", cfg.SMTP.Port)
		return NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.From, cfg.FromName), nil
	case config.EmailProviderSendGrid:
		logger.Info("Using SendGrid email provider")
		return NewSendGridEmailService(cfg.SendGrid.APIKey, cfg.From, cfg.FromName), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %q", cfg.Provider)
	}
}
