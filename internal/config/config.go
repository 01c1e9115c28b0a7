package config

import (
	"os"
	"strconv"

	"tseda/internal/errors"
)

// Config represents the complete application configuration. CLI flags
// take precedence over environment variables; environment variables
// over the defaults here.
type Config struct {
	Server ServerConfig
	Paths  PathConfig
	Log    LogConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port  int
	Host  string
	Admin bool
}

// PathConfig holds file system paths
type PathConfig struct {
	// DataFile is the .tseda file served by the dashboard.
	DataFile string
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:  getEnvIntOrDefault("TSEDA_PORT", 8080),
			Host:  getEnvOrDefault("TSEDA_HOST", "localhost"),
			Admin: getEnvBoolOrDefault("TSEDA_ADMIN", false),
		},
		Paths: PathConfig{
			DataFile: getEnvOrDefault("TSEDA_FILE", ""),
		},
		Log: LogConfig{
			Level: getEnvOrDefault("LOG_LEVEL", "INFO"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return errors.ConfigInvalid("server port must be in 1-65535")
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
