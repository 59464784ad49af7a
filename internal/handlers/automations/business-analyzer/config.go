package businessanalyzer

import (
	"fmt"
	"time"

	"growify-relay/internal/common/config"
)

type Config struct {
	Enabled bool
	Timeout time.Duration
	// APIKey empty means no generator call: the canned report is returned.
	APIKey string
	Model  string
	// EnforceBounds applies the form's range rules server-side.
	EnforceBounds bool
}

func DefaultConfig() *Config {
	return &Config{
		Enabled: true,
		Timeout: 60 * time.Second,
		Model:   config.DefaultGenAIModel,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.APIKey != "" && c.Model == "" {
		return fmt.Errorf("model is required when an api key is set")
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
	cfg.APIKey = appConfig.APIs.GenAI.APIKey
	if appConfig.APIs.GenAI.Model != "" {
		cfg.Model = appConfig.APIs.GenAI.Model
	}
	cfg.EnforceBounds = appConfig.Analyzer.EnforceBounds
	return cfg
}
