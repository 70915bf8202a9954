package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yusuf-polat/AI-Translate/internal/config"
	"github.com/yusuf-polat/AI-Translate/internal/console"
	"github.com/yusuf-polat/AI-Translate/internal/runner"
)

// loadConfig merges, in priority order, explicitly set flags, the config
// file, environment variables and built-in defaults.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return config.Config{}, err
		}
		cfg = *loaded
		if verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", configPath)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("settings") {
		cfg.SettingsPath = settingsPath
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = databaseURL
	}
	if flags.Changed("api-key") {
		cfg.APIKey = apiKeyFlag
	}
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if f := flags.Lookup("url"); f != nil && f.Changed {
		cfg.ConsoleURL = f.Value.String()
	}
	if f := flags.Lookup("user-data-dir"); f != nil && f.Changed {
		cfg.UserDataDir = f.Value.String()
	}
	if f := flags.Lookup("remote-url"); f != nil && f.Changed {
		cfg.RemoteURL = f.Value.String()
	}
	if f := flags.Lookup("headless"); f != nil && f.Changed {
		cfg.Headless = f.Value.String() == "true"
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}

	defaults := config.Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		CooldownMS:           int(runner.DefaultOptions().Cooldown / time.Millisecond),
		InterLanguageDelayMS: int(runner.DefaultOptions().InterLanguageDelay / time.Millisecond),
		FieldDelayMS:         int(runner.DefaultOptions().FieldDelay / time.Millisecond),
		ModalTimeoutMS:       int(console.DefaultOptions().ModalTimeout / time.Millisecond),
	}
	cfg = cfg.MergeWithDefaults(defaults)

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runnerOptions(cfg config.Config) runner.Options {
	opts := runner.DefaultOptions()
	opts.Cooldown = time.Duration(cfg.CooldownMS) * time.Millisecond
	opts.InterLanguageDelay = time.Duration(cfg.InterLanguageDelayMS) * time.Millisecond
	opts.FieldDelay = time.Duration(cfg.FieldDelayMS) * time.Millisecond
	opts.Verbose = cfg.Verbose
	return opts
}

func browserOptions(cfg config.Config) *console.Options {
	opts := console.DefaultOptions()
	opts.URL = cfg.ConsoleURL
	opts.UserDataDir = cfg.UserDataDir
	opts.RemoteURL = cfg.RemoteURL
	opts.Headless = cfg.Headless
	opts.ModalTimeout = time.Duration(cfg.ModalTimeoutMS) * time.Millisecond
	opts.Verbose = cfg.Verbose
	return opts
}

// addBrowserFlags registers the flags of commands that drive the console.
func addBrowserFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "Console translation page to open (defaults to the console home)")
	cmd.Flags().String("user-data-dir", "", "Chrome profile directory that keeps the console login")
	cmd.Flags().String("remote-url", "", "DevTools URL of an already running Chrome (mutually exclusive with --user-data-dir)")
	cmd.Flags().Bool("headless", false, "Launch Chrome without a window")
}
