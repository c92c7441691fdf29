package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost:5432")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddress)
	assert.Equal(t, "medal_events", cfg.NATSStream)
	assert.Equal(t, "", cfg.NATSURL)
	assert.Equal(t, 0.80, cfg.OCRConfidenceThreshold)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://user:pw@localhost:5432")
	t.Setenv("DATABASE_NAME", "medals")
	t.Setenv("LISTEN_ADDRESS", ":9090")
	t.Setenv("NATS_URL", "nats://localhost:4222")
	t.Setenv("OCR_CONFIDENCE_THRESHOLD", "0.65")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddress)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, 0.65, cfg.OCRConfidenceThreshold)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.OTelEnabled)

	url, err := cfg.DatabaseConnectionURL()
	require.NoError(t, err)
	assert.Equal(t, "postgres://user:pw@localhost:5432/medals?sslmode=disable", url)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("database url required outside test", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("ENVIRONMENT", "production")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "DATABASE_URL")
	})

	t.Run("database url optional in test", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("ENVIRONMENT", "test")

		_, err := load()
		assert.NoError(t, err)
	})

	t.Run("confidence threshold out of range", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("OCR_CONFIDENCE_THRESHOLD", "1.5")

		_, err := load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "OCR_CONFIDENCE_THRESHOLD")
	})

	t.Run("unknown log format", func(t *testing.T) {
		t.Setenv("ENVIRONMENT", "test")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := load()
		assert.Error(t, err)
	})
}

func TestSetTestConfig(t *testing.T) {
	t.Cleanup(ResetConfig)

	cfg := NewTestConfig()
	cfg.ListenAddress = ":1234"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
}
