package ratelimit

import (
	"os"
	"strconv"
	"time"
)

// Provider budget defaults for the generative API.
const (
	DefaultMinSpacing   = 2000 * time.Millisecond
	DefaultMaxPerWindow = 10
	DefaultWindow       = time.Minute
)

// Config holds rate limiting configuration.
type Config struct {
	Enabled      bool
	MinSpacing   time.Duration // Minimum gap between two permitted calls
	MaxPerWindow int           // Ceiling of permits inside one window
	Window       time.Duration // How long a permit counts against the ceiling
}

// DefaultConfig returns the provider's documented request budget.
func DefaultConfig() *Config {
	return &Config{
		Enabled:      true,
		MinSpacing:   DefaultMinSpacing,
		MaxPerWindow: DefaultMaxPerWindow,
		Window:       DefaultWindow,
	}
}

// LoadConfig loads rate limiting configuration from environment variables.
func LoadConfig() *Config {
	enabled := getEnvBool("TRANSLATE_RATE_LIMIT_ENABLED", true)
	if !enabled {
		return &Config{
			Enabled: false,
		}
	}

	return &Config{
		Enabled:      enabled,
		MinSpacing:   time.Duration(getEnvInt("TRANSLATE_RATE_SPACING_MS", int(DefaultMinSpacing/time.Millisecond))) * time.Millisecond,
		MaxPerWindow: getEnvInt("TRANSLATE_RATE_PER_MINUTE", DefaultMaxPerWindow),
		Window:       getEnvDuration("TRANSLATE_RATE_WINDOW", DefaultWindow),
	}
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
