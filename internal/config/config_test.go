package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/commenthub")
	t.Setenv("JWT_SECRET", testSecret)
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 15*time.Minute, cfg.EditWindow)
	assert.Equal(t, 15*time.Minute, cfg.RestoreWindow)
	assert.Equal(t, 4, cfg.NotifyWorkers)
	assert.Equal(t, 256, cfg.NotifyQueueSize)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.False(t, cfg.RealtimeEnabled)
	assert.True(t, cfg.PrometheusEnabled)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("EDIT_WINDOW", "10m")
	t.Setenv("RESTORE_WINDOW", "30m")
	t.Setenv("REALTIME_ENABLED", "true")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := loadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.EditWindow)
	assert.Equal(t, 30*time.Minute, cfg.RestoreWindow)
	assert.True(t, cfg.RealtimeEnabled)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadMissingRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", testSecret)

	_, err := loadFromEnv()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestLoadInvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_PORT":        "eighty",
		"EDIT_WINDOW":      "fifteen",
		"REALTIME_ENABLED": "maybe",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			t.Setenv(key, value)

			_, err := loadFromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestValidate(t *testing.T) {
	setRequired(t)
	cfg, err := loadFromEnv()
	require.NoError(t, err)

	cfg.JWTSecret = "short"
	cfg.EditWindow = 0
	cfg.NotifyWorkers = 0
	cfg.LogFormat = "xml"

	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "EDIT_WINDOW")
	assert.Contains(t, err.Error(), "NOTIFY_WORKERS")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}
