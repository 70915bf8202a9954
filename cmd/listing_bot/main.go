// Package main provides the entry point for the store-listing translation bot.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "listing_bot",
	Short: "Store listing translation bot",
	Long: `listing_bot translates an app's store listing (name, short and full description) with the Gemini API
and types the results into every language dialog of the store console's translation page.`,
	SilenceUsage: true,
}

// Flags shared by every command.
var (
	configPath   string
	settingsPath string
	databaseURL  string
	apiKeyFlag   string
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (defaults to $XDG_CONFIG_HOME/listing-bot/settings.json)")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "db-url", "", "PostgreSQL URL for settings (optional, defaults to DATABASE_URL env var)")
	rootCmd.PersistentFlags().StringVar(&apiKeyFlag, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var, then saved settings)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
