package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contour2dxf/internal/logger"
)

func TestLogLevelFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		debug    string
		expected logger.LogLevel
	}{
		{"default", "", "", logger.InfoLevel},
		{"explicit warn", "warn", "", logger.WarnLevel},
		{"explicit wins over debug", "error", "1", logger.ErrorLevel},
		{"debug shortcut", "", "1", logger.DebugLevel},
		{"debug true", "", "true", logger.DebugLevel},
		{"unknown level", "loud", "", logger.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvLogLevel, tt.level)
			t.Setenv(EnvDebug, tt.debug)
			assert.Equal(t, tt.expected, LogLevelFromEnv())
		})
	}
}

func TestNewLoggerFromEnvJSON(t *testing.T) {
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogLevel, "info")

	var buf bytes.Buffer
	log := NewLoggerFromEnv(&buf)
	log.Info("Config", "hello", nil)
	log.Debug("Config", "hidden", nil)

	assert.Contains(t, buf.String(), `"message":"hello"`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CONTOUR2DXF_PRESET=/tmp/p.toml\n"), 0o644))

	t.Setenv(EnvPreset, "")
	os.Unsetenv(EnvPreset)

	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "/tmp/p.toml", PresetPathFromEnv())
}

func TestLoadEnvMissingFileIsIgnored(t *testing.T) {
	assert.NoError(t, LoadEnv(filepath.Join(t.TempDir(), "absent.env")))
}

func TestLoadEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\n"), 0o644))

	t.Setenv(EnvLogLevel, "error")
	require.NoError(t, LoadEnv(path))
	assert.Equal(t, "error", os.Getenv(EnvLogLevel))
}
