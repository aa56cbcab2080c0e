// Package config loads the wholesale platform configuration from the
// environment.
package config

import (
	"fmt"

	pkgconfig "github.com/erinb-maker-radio/banwell-wholesale/pkg/config"
)

// Config holds all configuration for the wholesale platform.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort           int      `env:"HTTP_PORT" envDefault:"8080"`
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*" envSeparator:","`

	// Storefront
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:3000"`
	AdminEmail string `env:"ADMIN_EMAIL" envDefault:"orders@banwelldesigns.com"`

	// API keys. Each key authenticates one caller role.
	AdminAPIKey string `env:"ADMIN_API_KEY"`
	ShopAPIKey  string `env:"SHOP_API_KEY"`
	CronAPIKey  string `env:"CRON_API_KEY"`

	// PostgreSQL
	PostgresHost          string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort          int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser          string `env:"POSTGRES_USER" envDefault:"banwell"`
	PostgresPass          string `env:"POSTGRES_PASSWORD" envDefault:"banwell_secret"`
	PostgresDB            string `env:"POSTGRES_DB" envDefault:"banwell_wholesale"`
	PostgresSSL           string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	DBMaxConns            int32  `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32  `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int    `env:"DB_MAX_CONN_LIFETIME_MINS" envDefault:"60"`
	DBMaxConnIdleTimeMins int    `env:"DB_MAX_CONN_IDLE_TIME_MINS" envDefault:"30"`
	SlowQueryThresholdMs  int    `env:"SLOW_QUERY_THRESHOLD_MS" envDefault:"200"`

	// Redis (webhook event dedup)
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Square
	SquareBaseURL             string `env:"SQUARE_BASE_URL" envDefault:"https://connect.squareup.com"`
	SquareAccessToken         string `env:"SQUARE_ACCESS_TOKEN"`
	SquareLocationID          string `env:"SQUARE_LOCATION_ID"`
	SquareWebhookSignatureKey string `env:"SQUARE_WEBHOOK_SIGNATURE_KEY"`
	SquareWebhookURL          string `env:"SQUARE_WEBHOOK_URL"`

	// Notifications
	PushGatewayURL   string `env:"PUSH_GATEWAY_URL"`
	PushGatewayToken string `env:"PUSH_GATEWAY_TOKEN"`
	SendgridAPIKey   string `env:"SENDGRID_API_KEY"`
	EmailFromAddress string `env:"EMAIL_FROM_ADDRESS" envDefault:"orders@banwelldesigns.com"`
	EmailFromName    string `env:"EMAIL_FROM_NAME" envDefault:"Banwell Designs"`

	// Circuit breaker for outbound provider calls.
	CBMaxRequests  uint32  `env:"CB_MAX_REQUESTS" envDefault:"3"`
	CBInterval     int     `env:"CB_INTERVAL_SECONDS" envDefault:"60"`
	CBTimeout      int     `env:"CB_TIMEOUT_SECONDS" envDefault:"30"`
	CBFailureRatio float64 `env:"CB_FAILURE_RATIO" envDefault:"0.6"`
	CBMinRequests  uint32  `env:"CB_MIN_REQUESTS" envDefault:"5"`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Pprof
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"127.0.0.1/32" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load wholesale config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.Environment == "production" && c.SquareWebhookSignatureKey == "" {
		return fmt.Errorf("SQUARE_WEBHOOK_SIGNATURE_KEY is required in production")
	}
	return nil
}

// APIKeys returns the key-to-role map for request authentication. Unset keys
// are omitted.
func (c *Config) APIKeys() map[string]string {
	keys := make(map[string]string, 3)
	if c.AdminAPIKey != "" {
		keys[c.AdminAPIKey] = "admin"
	}
	if c.ShopAPIKey != "" {
		keys[c.ShopAPIKey] = "shop"
	}
	if c.CronAPIKey != "" {
		keys[c.CronAPIKey] = "cron"
	}
	return keys
}
