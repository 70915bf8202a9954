package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yusuf-polat/AI-Translate/internal/console"
	"github.com/yusuf-polat/AI-Translate/internal/observability"
	"github.com/yusuf-polat/AI-Translate/internal/runner"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Translate the listing into every language on the console page",
	Long: `Opens Chrome on the console's translation page, finds every language's "review and apply" control and,
one language at a time, translates the saved listing, fills the dialog and applies it.

Log in to the console once with --user-data-dir (or attach to your own Chrome with --remote-url),
then navigate to the translations page before the run starts. Press Ctrl-C to stop after the current language.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runBotCmd,
}

func init() {
	addBrowserFlags(runCommand)
	rootCmd.AddCommand(runCommand)
}

func runBotCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.store.AppData(ctx)
	if err != nil {
		return err
	}
	if data.IsEmpty() {
		return fmt.Errorf("%w (use `listing_bot settings set-app`)", runner.ErrNoAppData)
	}

	browser, err := console.Launch(ctx, browserOptions(cfg))
	if err != nil {
		return err
	}
	defer browser.Close()

	printer := observability.NewPrinter(os.Stdout)
	printer.SetVerbose(cfg.Verbose)
	printer.PrintAppData(data)

	bot := runner.New(browser, a.aggregator, a.store, runner.MultiSink{runner.LogSink{}, printer}, nil, runnerOptions(cfg))

	// First Ctrl-C stops after the current language, the second aborts.
	signals := make(chan os.Signal, 2)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(signals)
	go func() {
		select {
		case <-signals:
			fmt.Fprintln(os.Stderr, "Stopping after the current language... (Ctrl-C again to abort)")
			bot.Stop()
		case <-ctx.Done():
			return
		}
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err = bot.Start(ctx)
	printer.PrintRateLimit(a.limiter.Status())
	return err
}
