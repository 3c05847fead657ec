package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, StorageRedis, cfg.StorageDriver)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*24*time.Hour, cfg.LocalStorageTTL())
	assert.Equal(t, time.Hour, cfg.SessionStorageTTL())
	assert.True(t, cfg.ShippingCost.IsZero())
	assert.Equal(t, "$", cfg.CurrencySymbol)
	assert.Equal(t, "https://wa.me/", cfg.ShareBaseURL)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, "development", cfg.Tracing.Environment)
	assert.Equal(t, 500*time.Millisecond, cfg.SlowQueryThreshold())
	assert.Equal(t, 20*time.Second, cfg.AITimeout)
	assert.InDelta(t, 1.0, cfg.AIRateLimitRPS, 1e-9)
	assert.Equal(t, 5, cfg.AIRateLimitBurst)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SHIPPING_COST", "4.99")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("OTEL_SAMPLE_RATE", "0.25")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, "4.99", cfg.ShippingCost.StringFixed(2))
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, "db", cfg.Postgres.Host)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRate, 1e-9)
	assert.Equal(t, "production", cfg.Tracing.Environment)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"port", map[string]string{"HTTP_PORT": "70000"}, "invalid HTTP port"},
		{"driver", map[string]string{"STORAGE_DRIVER": "disk"}, "STORAGE_DRIVER"},
		{"shipping", map[string]string{"SHIPPING_COST": "-1"}, "SHIPPING_COST"},
		{"shipping not a number", map[string]string{"SHIPPING_COST": "free"}, "parse decimal"},
		{"session ttl", map[string]string{"SESSION_STORAGE_TTL_MINUTES": "0"}, "SESSION_STORAGE_TTL_MINUTES"},
		{"sample rate", map[string]string{"OTEL_SAMPLE_RATE": "2"}, "OTEL_SAMPLE_RATE"},
		{"share url", map[string]string{"SHARE_BASE_URL": "wa.me"}, "SHARE_BASE_URL"},
		{"ai url", map[string]string{"AI_TAGS_URL": "::nope"}, "AI_TAGS_URL"},
		{"ai rate limit", map[string]string{"AI_RATE_LIMIT_RPS": "-1"}, "AI_RATE_LIMIT_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
