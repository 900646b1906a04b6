package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Port        int      `env:"TEST_CFG_PORT" envDefault:"8010"`
	LogLevel    string   `env:"TEST_CFG_LOG_LEVEL" envDefault:"info"`
	AutoApprove bool     `env:"TEST_CFG_AUTO_APPROVE" envDefault:"false"`
	Brokers     []string `env:"TEST_CFG_BROKERS" envDefault:"localhost:9092" envSeparator:","`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 8010, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.AutoApprove)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Brokers)
}

func TestLoad_FromEnvVars(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "9090")
	t.Setenv("TEST_CFG_AUTO_APPROVE", "true")
	t.Setenv("TEST_CFG_BROKERS", "k1:9092,k2:9092")

	var cfg testConfig
	err := Load(&cfg)

	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.AutoApprove)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Brokers)
}

func TestLoad_WithPrefix(t *testing.T) {
	t.Setenv("STAGING_TEST_CFG_PORT", "7000")
	t.Setenv("TEST_CFG_PORT", "9999")

	var cfg testConfig
	err := Load(&cfg, "STAGING_")

	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Port)
}

type requiredConfig struct {
	Secret string `env:"TEST_CFG_SECRET,required"`
}

func TestLoad_RequiredFieldMissing(t *testing.T) {
	var cfg requiredConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_InvalidType(t *testing.T) {
	t.Setenv("TEST_CFG_PORT", "not-a-number")

	var cfg testConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
