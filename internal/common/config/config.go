// internal/common/config/config.go
package config

import "fmt"

type Config struct {
	App          AppConfig                 `mapstructure:"app"`
	Server       ServerConfig              `mapstructure:"server"`
	Relay        RelayConfig               `mapstructure:"relay"`
	Callback     CallbackConfig            `mapstructure:"callback"`
	Analyzer     AnalyzerConfig            `mapstructure:"analyzer"`
	Session      SessionConfig             `mapstructure:"session"`
	Endpoints    map[string]EndpointConfig `mapstructure:"endpoints"`
	Database     DatabaseConfig            `mapstructure:"database"`
	Integrations IntegrationsConfig        `mapstructure:"integrations"`
	APIs         APIsConfig                `mapstructure:"apis"`
	Logging      LoggingConfig             `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	// DemoMode enables the marketing-site behavior: simulated agent responses,
	// unsigned callbacks and built-in webhook defaults.
	DemoMode bool `mapstructure:"demo_mode"`
}

type ServerConfig struct {
	Address         string          `mapstructure:"address"`
	ReadTimeout     int             `mapstructure:"read_timeout"`     // ms
	WriteTimeout    int             `mapstructure:"write_timeout"`    // ms
	ShutdownTimeout int             `mapstructure:"shutdown_timeout"` // ms
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	MaxBodyBytes    int64           `mapstructure:"max_body_bytes"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type RelayConfig struct {
	LeadWebhookURL        string `mapstructure:"lead_webhook_url"`
	AppointmentWebhookURL string `mapstructure:"appointment_webhook_url"`
	BearerToken           string `mapstructure:"bearer_token"`
	DefaultCallbackURL    string `mapstructure:"default_callback_url"`
	// Fallback is "demo" (simulate success) or "strict" (surface the failure).
	Fallback             string `mapstructure:"fallback"`
	AllowWebhookOverride bool   `mapstructure:"allow_webhook_override"`
	CalendarID           string `mapstructure:"calendar_id"`
}

type CallbackConfig struct {
	Secret              string `mapstructure:"secret"`
	AllowUnsigned       bool   `mapstructure:"allow_unsigned"`
	ForwardURL          string `mapstructure:"forward_url"`
	ForwardTimeout      int    `mapstructure:"forward_timeout"` // ms
	RequireKnownSession bool   `mapstructure:"require_known_session"`
	StoreResults        bool   `mapstructure:"store_results"`
}

type AnalyzerConfig struct {
	EnforceBounds bool `mapstructure:"enforce_bounds"`
}

type SessionConfig struct {
	// Backend is "redis" or "memory".
	Backend string `mapstructure:"backend"`
	TTL     int    `mapstructure:"ttl"` // seconds
}

type EndpointConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Timeout int  `mapstructure:"timeout"` // ms
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
}

func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type IntegrationsConfig struct {
	Zoho ZohoConfig `mapstructure:"zoho"`
	AWS  AWSConfig  `mapstructure:"aws"`
}

type ZohoConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
}

type AWSConfig struct {
	Region string    `mapstructure:"region"`
	SES    SESConfig `mapstructure:"ses"`
	SNS    SNSConfig `mapstructure:"sns"`
}

type SESConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	FromEmail string `mapstructure:"from_email"`
}

type SNSConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AlertPhone string `mapstructure:"alert_phone"`
	SenderID   string `mapstructure:"sender_id"`
}

type APIsConfig struct {
	GenAI GenAIConfig `mapstructure:"genai"`
}

type GenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // ms
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// IsProduction reports whether the fail-closed rules apply.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}
