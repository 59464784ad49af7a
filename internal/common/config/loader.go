// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Built-in values for the public marketing demo. They are applied only when
// app.demo_mode is set and the corresponding setting is empty.
const (
	DemoLeadWebhookURL        = "https://shannn.app.n8n.cloud/webhook-test/09d1214c-9830-42f4-8b3d-e54e417f50ef"
	DemoAppointmentWebhookURL = "https://shannn.app.n8n.cloud/webhook/09d1214c-9830-42f4-8b3d-e54e417f50ef"
	DemoForwardURL            = "https://sachinautomate76.app.n8n.cloud/webhook/09d1214c-9830-42f4-8b3d-e54e417f50ef"
	DemoBearerToken           = "demo-token"
	DemoCalendarID            = "nxtwave@example.com"

	DefaultCallbackURL = "http://localhost:3001/api/webhook/agent-callback"
	DefaultGenAIModel  = "gemini-2.0-flash-exp"
)

func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// config.<env>.yaml overlays the base file when present
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig()

	return build(v, env)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return build(v, os.Getenv("APP_ENVIRONMENT"))
}

func newViper() *viper.Viper {
	v := viper.New()
	// RELAY_BEARER_TOKEN overrides relay.bearer_token and so on
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func build(v *viper.Viper, env string) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.App.Environment == "" {
		cfg.App.Environment = env
	}

	overrideEmptyConfig(&cfg)
	applyDefaults(&cfg, v.IsSet)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env", // test/e2e
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal {
				v.Set(key, expanded)
			}
		}
	}
}

// overrideEmptyConfig honours the variable names the site deployment already uses.
func overrideEmptyConfig(cfg *Config) {
	setIfEmpty(&cfg.APIs.GenAI.APIKey, "GEMINI_API_KEY")
	setIfEmpty(&cfg.Relay.LeadWebhookURL, "AGENT_DEFAULT_WEBHOOK_LEAD")
	setIfEmpty(&cfg.Relay.AppointmentWebhookURL, "AGENT_DEFAULT_WEBHOOK_APPT")
	setIfEmpty(&cfg.Relay.BearerToken, "AGENT_WEBHOOK_TOKEN")
	setIfEmpty(&cfg.Callback.Secret, "AGENT_CALLBACK_SECRET")
	setIfEmpty(&cfg.Callback.ForwardURL, "LEAD_QUALIFICATION_WEBHOOK")
	setIfEmpty(&cfg.Integrations.Zoho.AuthToken, "ZOHO_CRM_OAUTH_TOKEN")
	setIfEmpty(&cfg.Database.Postgres.User, "DB_USER")
	setIfEmpty(&cfg.Database.Postgres.Password, "DB_PASSWORD")
}

func setIfEmpty(field *string, envKey string) {
	if *field != "" {
		return
	}
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

// applyDefaults sets default values for optional configuration fields.
// isSet reports whether a key was given explicitly, for boolean fields whose
// zero value is a legitimate setting.
func applyDefaults(cfg *Config, isSet func(key string) bool) {
	if cfg.App.Name == "" {
		cfg.App.Name = "growify-relay"
	}

	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":3001"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 90000
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30000
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}
	if cfg.Server.RateLimit.RequestsPerMinute == 0 {
		cfg.Server.RateLimit.RequestsPerMinute = 30
	}
	if cfg.Server.RateLimit.Burst == 0 {
		cfg.Server.RateLimit.Burst = 5
	}

	// Relay defaults
	if cfg.Relay.DefaultCallbackURL == "" {
		cfg.Relay.DefaultCallbackURL = DefaultCallbackURL
	}
	if cfg.Relay.Fallback == "" {
		if cfg.App.DemoMode {
			cfg.Relay.Fallback = "demo"
		} else {
			cfg.Relay.Fallback = "strict"
		}
	}
	if cfg.Relay.CalendarID == "" {
		cfg.Relay.CalendarID = DemoCalendarID
	}
	if cfg.Callback.ForwardTimeout == 0 {
		cfg.Callback.ForwardTimeout = 10000
	}

	if cfg.App.DemoMode {
		applyDemoDefaults(cfg, isSet)
	}

	// Session defaults
	if cfg.Session.Backend == "" {
		cfg.Session.Backend = "memory"
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 3600
	}

	// Database defaults
	if cfg.Database.Postgres.Port == 0 {
		cfg.Database.Postgres.Port = 5432
	}
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 10
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 2
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	if cfg.Integrations.AWS.Region == "" {
		cfg.Integrations.AWS.Region = "ap-south-1"
	}
	if cfg.Integrations.Zoho.BaseURL == "" {
		cfg.Integrations.Zoho.BaseURL = "https://www.zohoapis.in/crm/v3"
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.APIs.GenAI.Model == "" {
		cfg.APIs.GenAI.Model = DefaultGenAIModel
	}
	if cfg.APIs.GenAI.Timeout == 0 {
		cfg.APIs.GenAI.Timeout = 60000
	}

	if cfg.Endpoints == nil {
		cfg.Endpoints = map[string]EndpointConfig{}
	}
}

func applyDemoDefaults(cfg *Config, isSet func(key string) bool) {
	if cfg.Relay.LeadWebhookURL == "" {
		cfg.Relay.LeadWebhookURL = DemoLeadWebhookURL
	}
	if cfg.Relay.AppointmentWebhookURL == "" {
		cfg.Relay.AppointmentWebhookURL = DemoAppointmentWebhookURL
	}
	if cfg.Relay.BearerToken == "" {
		cfg.Relay.BearerToken = DemoBearerToken
	}
	if cfg.Callback.ForwardURL == "" {
		cfg.Callback.ForwardURL = DemoForwardURL
	}
	if cfg.Callback.Secret == "" {
		cfg.Callback.AllowUnsigned = true
	}
	if !isSet("relay.allow_webhook_override") {
		cfg.Relay.AllowWebhookOverride = true
	}
}

// validateConfig enforces the fail-closed rules. Production never runs with
// demo values and never accepts unsigned callbacks.
func validateConfig(cfg *Config) error {
	if cfg.IsProduction() && cfg.App.DemoMode {
		return fmt.Errorf("app.demo_mode cannot be enabled in production")
	}

	if cfg.Relay.LeadWebhookURL == "" {
		return fmt.Errorf("relay.lead_webhook_url is required")
	}
	if cfg.Relay.AppointmentWebhookURL == "" {
		return fmt.Errorf("relay.appointment_webhook_url is required")
	}
	if cfg.Relay.BearerToken == "" {
		return fmt.Errorf("relay.bearer_token is required")
	}

	switch cfg.Relay.Fallback {
	case "demo", "strict":
	default:
		return fmt.Errorf("relay.fallback must be demo or strict, got %q", cfg.Relay.Fallback)
	}

	if cfg.Callback.Secret == "" && !cfg.Callback.AllowUnsigned {
		return fmt.Errorf("callback.secret is required unless callback.allow_unsigned is set")
	}

	if cfg.IsProduction() {
		if cfg.Callback.Secret == "" {
			return fmt.Errorf("callback.secret is required in production")
		}
		if cfg.Callback.AllowUnsigned {
			return fmt.Errorf("callback.allow_unsigned is not permitted in production")
		}
		if cfg.Relay.Fallback == "demo" {
			return fmt.Errorf("relay.fallback=demo is not permitted in production")
		}
	}

	switch cfg.Session.Backend {
	case "memory":
	case "redis":
		if cfg.Database.Redis.Address == "" {
			return fmt.Errorf("database.redis.address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("session.backend must be memory or redis, got %q", cfg.Session.Backend)
	}

	if cfg.Callback.StoreResults || cfg.Database.Postgres.Enabled {
		if cfg.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if cfg.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
	}

	if cfg.Integrations.AWS.SES.Enabled && cfg.Integrations.AWS.SES.FromEmail == "" {
		return fmt.Errorf("integrations.aws.ses.from_email is required")
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// GetEndpointConfig retrieves endpoint-specific configuration with fallback to defaults
func GetEndpointConfig(cfg *Config, endpoint string) EndpointConfig {
	if ep, exists := cfg.Endpoints[endpoint]; exists {
		if ep.Timeout == 0 {
			ep.Timeout = defaultEndpointTimeout(cfg, endpoint)
		}
		return ep
	}

	return EndpointConfig{
		Enabled: true,
		Timeout: defaultEndpointTimeout(cfg, endpoint),
	}
}

// IsEndpointEnabled checks if a specific endpoint is enabled
func IsEndpointEnabled(cfg *Config, endpoint string) bool {
	if ep, exists := cfg.Endpoints[endpoint]; exists {
		return ep.Enabled
	}
	return true
}

func defaultEndpointTimeout(cfg *Config, endpoint string) int {
	if endpoint == "business-analyzer" {
		return cfg.APIs.GenAI.Timeout
	}
	return 10000
}
