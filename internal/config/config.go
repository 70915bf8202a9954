// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// Defaults applied by MergeWithDefaults when neither the file nor a flag sets a value.
const (
	DefaultConsoleURL = "https://play.google.com/console"
	DefaultAddr       = ":8080"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Browser
	ConsoleURL  string `json:"console_url,omitempty"`   // Page opened before discovery
	UserDataDir string `json:"user_data_dir,omitempty"` // Chrome profile that keeps the console login
	RemoteURL   string `json:"remote_url,omitempty"`    // DevTools URL of an already running Chrome
	Headless    bool   `json:"headless,omitempty"`      // Launch Chrome without a window

	// Storage
	SettingsPath string `json:"settings_path,omitempty"` // Settings JSON file
	DatabaseURL  string `json:"database_url,omitempty"`  // PostgreSQL connection URL, replaces the settings file

	// Translation
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key
	Model          string `json:"model,omitempty"`           // Model used for translations
	TargetLanguage string `json:"target_language,omitempty"` // Fallback target language

	// Pacing, in milliseconds
	CooldownMS           int `json:"cooldown_ms,omitempty"`
	InterLanguageDelayMS int `json:"inter_language_delay_ms,omitempty"`
	FieldDelayMS         int `json:"field_delay_ms,omitempty"`
	ModalTimeoutMS       int `json:"modal_timeout_ms,omitempty"`

	// Server
	Addr string `json:"addr,omitempty"` // Control API listen address

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values are checked by the commands after merging with flags.
func (c *Config) Validate() error {
	if c.RemoteURL != "" && c.UserDataDir != "" {
		return fmt.Errorf("config error: 'remote_url' and 'user_data_dir' are mutually exclusive")
	}

	if c.ConsoleURL != "" {
		if err := checkURL("console_url", c.ConsoleURL, "http", "https"); err != nil {
			return err
		}
	}
	if c.RemoteURL != "" {
		if err := checkURL("remote_url", c.RemoteURL, "http", "https", "ws", "wss"); err != nil {
			return err
		}
	}

	for name, v := range map[string]int{
		"cooldown_ms":             c.CooldownMS,
		"inter_language_delay_ms": c.InterLanguageDelayMS,
		"field_delay_ms":          c.FieldDelayMS,
		"modal_timeout_ms":        c.ModalTimeoutMS,
	} {
		if v < 0 {
			return fmt.Errorf("config error: '%s' must be non-negative", name)
		}
	}

	if c.UserDataDir != "" {
		if info, err := os.Stat(c.UserDataDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: user data dir is not a directory: %s", c.UserDataDir)
		}
	}

	return nil
}

func checkURL(field, raw string, schemes ...string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return fmt.Errorf("config error: '%s' is not a valid URL: %s", field, raw)
	}
	for _, s := range schemes {
		if u.Scheme == s {
			return nil
		}
	}
	return fmt.Errorf("config error: '%s' has unsupported scheme %q", field, u.Scheme)
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.ConsoleURL == "" {
		result.ConsoleURL = defaults.ConsoleURL
	}
	if result.UserDataDir == "" {
		result.UserDataDir = defaults.UserDataDir
	}
	if result.RemoteURL == "" {
		result.RemoteURL = defaults.RemoteURL
	}
	if result.SettingsPath == "" {
		result.SettingsPath = defaults.SettingsPath
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.TargetLanguage == "" {
		result.TargetLanguage = defaults.TargetLanguage
	}
	if result.Addr == "" {
		result.Addr = defaults.Addr
	}

	// Int fields: use default if zero
	if result.CooldownMS == 0 {
		result.CooldownMS = defaults.CooldownMS
	}
	if result.InterLanguageDelayMS == 0 {
		result.InterLanguageDelayMS = defaults.InterLanguageDelayMS
	}
	if result.FieldDelayMS == 0 {
		result.FieldDelayMS = defaults.FieldDelayMS
	}
	if result.ModalTimeoutMS == 0 {
		result.ModalTimeoutMS = defaults.ModalTimeoutMS
	}

	// Built-in fallbacks
	if result.ConsoleURL == "" {
		result.ConsoleURL = DefaultConsoleURL
	}
	if result.Addr == "" {
		result.Addr = DefaultAddr
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
