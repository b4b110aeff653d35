package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"trialdash/internal"
	"trialdash/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Session SessionConfig
	Upload  UploadConfig
	Ops     OpsConfig
	Log     LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SessionConfig controls idle session eviction
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// UploadConfig bounds dataset uploads and previews
type UploadConfig struct {
	MaxBytes    int64
	PreviewRows int
}

// OpsConfig holds the health, metrics and pprof listener settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// LogConfig holds logging settings
type LogConfig struct {
	Level internal.LogLevel
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	level, ok := internal.ParseLogLevel(getEnvOrDefault("LOG_LEVEL", "INFO"))
	if !ok {
		return nil, errors.ConfigInvalid(fmt.Sprintf("LOG_LEVEL %q is not one of ERROR, WARN, INFO, DEBUG, TRACE", os.Getenv("LOG_LEVEL")))
	}

	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Session: SessionConfig{
			TTL:           getEnvDurationOrDefault("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDurationOrDefault("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		},
		Upload: UploadConfig{
			MaxBytes:    int64(getEnvIntOrDefault("MAX_UPLOAD_BYTES", 32<<20)),
			PreviewRows: getEnvIntOrDefault("PREVIEW_ROWS", 5),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", true),
		},
		Log: LogConfig{Level: level},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if _, err := strconv.Atoi(config.Server.Port); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("PORT %q is not a number", config.Server.Port))
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid(fmt.Sprintf("GIN_MODE %q must be debug, release or test", config.Server.GinMode))
	}
	if config.Upload.MaxBytes <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_BYTES must be positive")
	}
	if config.Upload.PreviewRows < 0 {
		return errors.ConfigInvalid("PREVIEW_ROWS cannot be negative")
	}
	if config.Session.TTL < 0 || config.Session.SweepInterval < 0 {
		return errors.ConfigInvalid("SESSION_TTL and SESSION_SWEEP_INTERVAL cannot be negative")
	}
	if config.Ops.Enabled {
		if _, err := strconv.Atoi(config.Ops.Port); err != nil {
			return errors.ConfigInvalid(fmt.Sprintf("OPS_PORT %q is not a number", config.Ops.Port))
		}
		if config.Ops.Port == config.Server.Port {
			return errors.ConfigInvalid("OPS_PORT must differ from PORT")
		}
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
