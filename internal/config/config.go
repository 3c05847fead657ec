package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/tracing"
)

// Storage drivers.
const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort        int           `env:"HTTP_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Shopper storage
	StorageDriver        string               `env:"STORAGE_DRIVER" envDefault:"redis"`
	Redis                database.RedisConfig `envPrefix:"REDIS_"`
	LocalStorageTTLHours int                  `env:"LOCAL_STORAGE_TTL_HOURS" envDefault:"720"`
	SessionTTLMinutes    int                  `env:"SESSION_STORAGE_TTL_MINUTES" envDefault:"60"`
	SessionCookieSecure  bool                 `env:"SESSION_COOKIE_SECURE" envDefault:"false"`

	// Catalog database
	Postgres             database.PostgresConfig `envPrefix:"POSTGRES_"`
	SlowQueryThresholdMs int                     `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Kafka
	KafkaEnabled bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Shop and documents
	ShippingCost   decimal.Decimal `env:"SHIPPING_COST" envDefault:"0"`
	CurrencySymbol string          `env:"CURRENCY_SYMBOL" envDefault:"$"`
	ShopName       string          `env:"SHOP_NAME" envDefault:"Storefront"`
	ShareBaseURL   string          `env:"SHARE_BASE_URL" envDefault:"https://wa.me/"`
	SharePhone     string          `env:"SHARE_PHONE"`
	PDFFontRegular string          `env:"PDF_FONT_REGULAR"`
	PDFFontBold    string          `env:"PDF_FONT_BOLD"`

	// AI collaborators
	AITagsURL        string        `env:"AI_TAGS_URL"`
	AIImageURL       string        `env:"AI_IMAGE_URL"`
	AIFallbackImage  string        `env:"AI_FALLBACK_IMAGE" envDefault:"/static/placeholder.png"`
	AITimeout        time.Duration `env:"AI_TIMEOUT" envDefault:"20s"`
	AIRateLimitRPS   float64       `env:"AI_RATE_LIMIT_RPS" envDefault:"1"`
	AIRateLimitBurst int           `env:"AI_RATE_LIMIT_BURST" envDefault:"5"`

	// OpenTelemetry
	Tracing tracing.Config `envPrefix:"OTEL_"`

	// Pprof debug endpoints (IP allowlist in CIDR notation)
	PprofAllowedCIDRs []string `env:"PPROF_ALLOWED_CIDRS" envDefault:"10.0.0.0/8,172.16.0.0/12,192.168.0.0/16,127.0.0.0/8,::1/128" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	cfg.Tracing.Environment = cfg.Environment
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	switch c.StorageDriver {
	case StorageRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageRedis, StorageMemory, c.StorageDriver)
	}
	if c.LocalStorageTTLHours < 1 {
		return fmt.Errorf("LOCAL_STORAGE_TTL_HOURS must be positive, got %d", c.LocalStorageTTLHours)
	}
	if c.SessionTTLMinutes < 1 {
		return fmt.Errorf("SESSION_STORAGE_TTL_MINUTES must be positive, got %d", c.SessionTTLMinutes)
	}
	if c.Postgres.Host == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.KafkaEnabled && len(c.KafkaBrokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS is required when KAFKA_ENABLED is set")
	}
	if c.ShippingCost.IsNegative() {
		return fmt.Errorf("SHIPPING_COST must not be negative, got %s", c.ShippingCost)
	}
	if _, err := url.ParseRequestURI(c.ShareBaseURL); err != nil {
		return fmt.Errorf("invalid SHARE_BASE_URL %q: %w", c.ShareBaseURL, err)
	}
	for name, raw := range map[string]string{"AI_TAGS_URL": c.AITagsURL, "AI_IMAGE_URL": c.AIImageURL} {
		if raw == "" {
			continue
		}
		if _, err := url.ParseRequestURI(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	if c.AIRateLimitRPS < 0 {
		return fmt.Errorf("AI_RATE_LIMIT_RPS must not be negative, got %v", c.AIRateLimitRPS)
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1.0 {
		return fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.Tracing.SampleRate)
	}
	return nil
}

// LocalStorageTTL is how long durable shopper state lives untouched.
func (c *Config) LocalStorageTTL() time.Duration {
	return time.Duration(c.LocalStorageTTLHours) * time.Hour
}

// SessionStorageTTL is how long session-scoped state lives untouched.
func (c *Config) SessionStorageTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// SlowQueryThreshold is the duration above which queries are logged.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
