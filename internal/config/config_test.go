package config

import (
	"testing"
	"time"

	"trialdash/internal"
	"trialdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "GIN_MODE", "LOG_LEVEL", "MAX_UPLOAD_BYTES", "SESSION_TTL", "SESSION_SWEEP_INTERVAL", "OPS_ENABLED", "OPS_PORT", "PREVIEW_ROWS"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.GinMode)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 5, cfg.Upload.PreviewRows)
	assert.True(t, cfg.Ops.Enabled)
	assert.Equal(t, internal.LogLevelInfo, cfg.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("GIN_MODE", "test")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("OPS_ENABLED", "false")
	t.Setenv("PREVIEW_ROWS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, 15*time.Minute, cfg.Session.TTL)
	assert.False(t, cfg.Ops.Enabled)
	assert.Equal(t, 10, cfg.Upload.PreviewRows)
	assert.Equal(t, internal.LogLevelDebug, cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"log level", "LOG_LEVEL", "LOUD"},
		{"gin mode", "GIN_MODE", "fast"},
		{"port", "PORT", "http"},
		{"shared ops port", "OPS_PORT", "8080"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", "8080")
			t.Setenv("OPS_ENABLED", "true")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}
