package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yusuf-polat/AI-Translate/internal/config"
	"github.com/yusuf-polat/AI-Translate/internal/console"
	"github.com/yusuf-polat/AI-Translate/internal/runner"
	"github.com/yusuf-polat/AI-Translate/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP control API",
	Long: `Start an HTTP server that starts and stops runs, streams their progress as Server-Sent Events,
edits the saved settings and translates single texts. Every route except /health requires a bearer
token minted with 'listing_bot token'. JWT_SECRET must be set.`,
	RunE: runServe,
}

func init() {
	addBrowserFlags(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default \":8080\")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	browser, err := console.Launch(ctx, browserOptions(cfg))
	if err != nil {
		return err
	}
	defer browser.Close()

	broker := server.NewBroker()
	bot := runner.New(browser, a.aggregator, a.store, runner.MultiSink{runner.LogSink{}, broker}, nil, runnerOptions(cfg))

	srv, err := server.New(server.Config{Addr: cfg.Addr}, server.Deps{
		Bot:               bot,
		Broker:            broker,
		Settings:          a.store,
		Translator:        a.translator,
		TestAPIKey:        a.testAPIKey,
		JWT:               server.NewJWTService(jwtConfig),
		OnSettingsChanged: a.translator.Reload,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
