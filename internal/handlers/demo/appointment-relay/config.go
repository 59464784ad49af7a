package appointmentrelay

import (
	"fmt"
	"time"

	"growify-relay/internal/common/config"
)

type Config struct {
	Enabled              bool
	Timeout              time.Duration
	WebhookURL           string
	DefaultCallbackURL   string
	AllowWebhookOverride bool
	// CalendarID is used when the request names no calendar.
	CalendarID string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:            true,
		Timeout:            10 * time.Second,
		DefaultCallbackURL: config.DefaultCallbackURL,
		CalendarID:         config.DemoCalendarID,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.WebhookURL == "" {
		return fmt.Errorf("webhook url is required")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}

	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}

	ep := config.GetEndpointConfig(appConfig, Endpoint)
	cfg.Enabled = ep.Enabled
	cfg.Timeout = config.GetDuration(ep.Timeout)
	cfg.WebhookURL = appConfig.Relay.AppointmentWebhookURL
	cfg.DefaultCallbackURL = appConfig.Relay.DefaultCallbackURL
	cfg.AllowWebhookOverride = appConfig.Relay.AllowWebhookOverride
	if appConfig.Relay.CalendarID != "" {
		cfg.CalendarID = appConfig.Relay.CalendarID
	}
	return cfg
}
