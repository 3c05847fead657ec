package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port     int             `env:"TEST_CFG_PORT" envDefault:"8080"`
	Host     string          `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Debug    bool            `env:"TEST_CFG_DEBUG" envDefault:"false"`
	Shipping decimal.Decimal `env:"TEST_CFG_SHIPPING" envDefault:"0"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "localhost", cfg.Host)
	assert.False(t, cfg.Debug)
	assert.True(t, cfg.Shipping.IsZero())
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_HOST", "0.0.0.0")
	t.Setenv("TEST_CFG_DEBUG", "true")
	t.Setenv("TEST_CFG_SHIPPING", "4.99")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.True(t, cfg.Debug)
	assert.True(t, decimal.RequireFromString("4.99").Equal(cfg.Shipping))
}

func TestLoad_InvalidDecimal(t *testing.T) {
	t.Setenv("TEST_CFG_SHIPPING", "free")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	assert.Error(t, Load(&cfg))
}

func TestLoadWithPrefix(t *testing.T) {
	type prefixed struct {
		Port int `env:"PORT" envDefault:"1"`
	}
	t.Setenv("SF_PORT", "7070")

	var cfg prefixed
	require.NoError(t, LoadWithPrefix(&cfg, "SF_"))
	assert.Equal(t, 7070, cfg.Port)
}
