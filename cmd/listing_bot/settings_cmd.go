package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yusuf-polat/AI-Translate/internal/config"
	"github.com/yusuf-polat/AI-Translate/internal/observability"
	"github.com/yusuf-polat/AI-Translate/internal/schemas"
	"github.com/yusuf-polat/AI-Translate/internal/settings"
	"github.com/yusuf-polat/AI-Translate/internal/types"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change the saved API key, listing and tool settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings and source listing",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, cfg config.Config, store settings.Store) error {
			key, err := settings.ResolveAPIKey(ctx, cfg.APIKey, store)
			if err != nil {
				return err
			}
			toolSettings, err := store.ToolSettings(ctx)
			if err != nil {
				return err
			}
			data, err := store.AppData(ctx)
			if err != nil {
				return err
			}

			printer := observability.NewPrinter(os.Stdout)
			printer.PrintSettings(toolSettings, key, storeLocation(store))
			printer.PrintAppData(data)
			return nil
		})
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key KEY",
	Short: "Save the Gemini API key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd, func(ctx context.Context, _ config.Config, store settings.Store) error {
			if err := store.SaveAPIKey(ctx, args[0]); err != nil {
				return err
			}
			fmt.Printf("API key saved (%s)\n", observability.MaskKey(args[0]))
			return nil
		})
	},
}

var (
	appNameFlag  string
	appShortFlag string
	appFullFlag  string
	appFullFile  string
)

var settingsSetAppCmd = &cobra.Command{
	Use:   "set-app",
	Short: "Save the source listing; fields not given keep their saved value",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, _ config.Config, store settings.Store) error {
			current, err := store.AppData(ctx)
			if err != nil {
				return err
			}
			data, err := mergeAppData(cmd, current)
			if err != nil {
				return err
			}
			if err := store.SaveAppData(ctx, data); err != nil {
				return err
			}
			observability.NewPrinter(os.Stdout).PrintAppData(&data)
			return nil
		})
	},
}

var (
	toolPurposeFlag  string
	toolPromptFlag   string
	toolLanguageFlag string
)

var settingsSetToolCmd = &cobra.Command{
	Use:   "set-tool",
	Short: "Save the prompt purpose, custom prompt and default target language",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, cfg config.Config, store settings.Store) error {
			current, err := store.ToolSettings(ctx)
			if err != nil {
				return err
			}
			next := mergeToolSettings(cmd, current)
			if err := store.SaveToolSettings(ctx, next); err != nil {
				return err
			}
			key, _ := settings.ResolveAPIKey(ctx, cfg.APIKey, store)
			observability.NewPrinter(os.Stdout).PrintSettings(next.WithDefaults(), key, storeLocation(store))
			return nil
		})
	},
}

var settingsTestKeyCmd = &cobra.Command{
	Use:   "test-key [KEY]",
	Short: "Check an API key (or the configured one) against the Gemini API",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := context.Background()
		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		if key == "" {
			if key, err = settings.ResolveAPIKey(ctx, cfg.APIKey, a.store); err != nil {
				return err
			}
		}
		if key == "" {
			return fmt.Errorf("no API key given or configured")
		}

		if _, err := a.testAPIKey(ctx, key); err != nil {
			return fmt.Errorf("API key %s is not valid: %w", observability.MaskKey(key), err)
		}
		fmt.Printf("API key %s is valid\n", observability.MaskKey(key))
		return nil
	},
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate [FILE]",
	Short: "Check a settings file against the settings schema",
	Long:  `Validates FILE, or the configured settings file, before it is loaded. Useful after editing the file by hand.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		} else {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if path, err = settingsFilePath(cfg); err != nil {
				return err
			}
		}

		if err := schemas.ValidateSettingsFile(path); err != nil {
			return fmt.Errorf("settings file %s is invalid: %w", path, err)
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Settings file %s is valid\n", path)
		return err
	},
}

var settingsSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the settings file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), schemas.SettingsSchema())
		return err
	},
}

func init() {
	settingsSetAppCmd.Flags().StringVar(&appNameFlag, "name", "", "App name (max 30 characters)")
	settingsSetAppCmd.Flags().StringVar(&appShortFlag, "short", "", "Short description (max 80 characters)")
	settingsSetAppCmd.Flags().StringVar(&appFullFlag, "full", "", "Full description (max 4000 characters)")
	settingsSetAppCmd.Flags().StringVar(&appFullFile, "full-file", "", "Read the full description from a file")

	settingsSetToolCmd.Flags().StringVar(&toolPurposeFlag, "purpose", "", "Prompt purpose: translation, app_store_translation or custom")
	settingsSetToolCmd.Flags().StringVar(&toolPromptFlag, "prompt", "", "Custom prompt text (used with --purpose custom)")
	settingsSetToolCmd.Flags().StringVar(&toolLanguageFlag, "language", "", "Default target language for single-text translation")

	settingsCmd.AddCommand(settingsShowCmd, settingsSetKeyCmd, settingsSetAppCmd, settingsSetToolCmd, settingsTestKeyCmd,
		settingsValidateCmd, settingsSchemaCmd)
	rootCmd.AddCommand(settingsCmd)
}

// withStore loads the config, opens the settings store and runs fn.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, cfg config.Config, store settings.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	store, closeStore, err := settings.Open(ctx, cfg.DatabaseURL, cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	defer closeStore()
	return fn(ctx, cfg, store)
}

// mergeAppData overlays the flags the user set onto the saved listing.
func mergeAppData(cmd *cobra.Command, current *types.AppData) (types.AppData, error) {
	var data types.AppData
	if current != nil {
		data = *current
	}
	flags := cmd.Flags()
	if flags.Changed("name") {
		data.AppName = appNameFlag
	}
	if flags.Changed("short") {
		data.ShortDescription = appShortFlag
	}
	if flags.Changed("full") {
		data.FullDescription = appFullFlag
	}
	if flags.Changed("full-file") {
		content, err := os.ReadFile(appFullFile)
		if err != nil {
			return types.AppData{}, fmt.Errorf("failed to read %s: %w", appFullFile, err)
		}
		data.FullDescription = string(content)
	}
	return data, nil
}

// mergeToolSettings overlays the flags the user set onto the saved settings.
func mergeToolSettings(cmd *cobra.Command, current types.ToolSettings) types.ToolSettings {
	flags := cmd.Flags()
	if flags.Changed("purpose") {
		current.Purpose = types.Purpose(toolPurposeFlag)
	}
	if flags.Changed("prompt") {
		current.CustomPrompt = toolPromptFlag
	}
	if flags.Changed("language") {
		current.TargetLanguage = toolLanguageFlag
	}
	return current
}

// settingsFilePath returns the file the FileStore would use for cfg.
func settingsFilePath(cfg config.Config) (string, error) {
	if cfg.DatabaseURL != "" {
		return "", fmt.Errorf("settings are stored in PostgreSQL; pass a FILE to validate")
	}
	if cfg.SettingsPath != "" {
		return cfg.SettingsPath, nil
	}
	return settings.DefaultPath()
}

func storeLocation(store settings.Store) string {
	if fs, ok := store.(*settings.FileStore); ok {
		return fs.Path()
	}
	return "PostgreSQL"
}
