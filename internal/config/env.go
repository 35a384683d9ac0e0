// Package config loads environment settings and parameter presets.
package config

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"contour2dxf/internal/logger"
)

const (
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
	EnvDebug     = "DEBUG"
	EnvPreset    = "CONTOUR2DXF_PRESET"
)

// LoadEnv reads the given .env files (".env" when none are named) without
// overriding variables already set. Missing files are not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// LogLevelFromEnv resolves LOG_LEVEL, falling back to debug when DEBUG=1 and
// info otherwise.
func LogLevelFromEnv() logger.LogLevel {
	if level, ok := logger.ParseLevel(os.Getenv(EnvLogLevel)); ok {
		return level
	}
	switch strings.ToLower(os.Getenv(EnvDebug)) {
	case "1", "true":
		return logger.DebugLevel
	}
	return logger.InfoLevel
}

// NewLoggerFromEnv builds the application logger. LOG_FORMAT=json selects
// machine-readable output, anything else the console writer.
func NewLoggerFromEnv(w io.Writer) logger.Logger {
	level := LogLevelFromEnv()
	if strings.EqualFold(os.Getenv(EnvLogFormat), "json") {
		return logger.NewZerolog(w, level)
	}
	return logger.NewConsoleLogger(w, level)
}

// PresetPathFromEnv returns the default preset file, or "" when unset.
func PresetPathFromEnv() string {
	return strings.TrimSpace(os.Getenv(EnvPreset))
}
