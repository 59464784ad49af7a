package agentcallback

import (
	"fmt"
	"time"

	"growify-relay/internal/common/config"
)

type Config struct {
	Enabled bool
	// Secret signs callback bodies. Empty is accepted only with AllowUnsigned.
	Secret              string
	AllowUnsigned       bool
	ForwardURL          string
	ForwardTimeout      time.Duration
	RequireKnownSession bool
	StoreResults        bool
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		ForwardTimeout: 10 * time.Second,
	}
}

func (c *Config) Validate() error {
	if c.Secret == "" && !c.AllowUnsigned {
		return fmt.Errorf("callback secret is required unless unsigned callbacks are allowed")
	}
	if c.ForwardTimeout <= 0 {
		return fmt.Errorf("forward timeout must be positive")
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
	cfg.Secret = appConfig.Callback.Secret
	cfg.AllowUnsigned = appConfig.Callback.AllowUnsigned
	cfg.ForwardURL = appConfig.Callback.ForwardURL
	cfg.ForwardTimeout = config.GetDuration(appConfig.Callback.ForwardTimeout)
	cfg.RequireKnownSession = appConfig.Callback.RequireKnownSession
	cfg.StoreResults = appConfig.Callback.StoreResults
	return cfg
}
