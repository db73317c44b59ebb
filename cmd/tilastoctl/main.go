// tilastoctl is the operator CLI: it prints the summary and report straight
// from the configured backend, publishes refresh notifications and fills the
// SQLite mirror.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tyotilasto/internal/cli"
	"tyotilasto/internal/config"
	applog "tyotilasto/internal/log"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

var (
	cfg    *config.Config
	logger *applog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "tilastoctl",
	Short:         "Operate the tyotilasto dashboard data",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cli.LoadEnvFile()

		var err error
		cfg, err = config.Load()
		if err == nil {
			err = cfg.Validate()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.LogLevel = lvl
		}
		level, err := applog.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		// Logs go to stderr so --json output stays parseable.
		logger = applog.New(applog.Config{Level: level, Format: cfg.LogFormat, Output: os.Stderr})
		applog.SetDefault(logger)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.AddCommand(mirrorCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "tilastoctl %s (%s)\n", version, commit)
	},
}

// openApp wires the backend and services for commands that read data.
func openApp(ctx context.Context) (*cli.App, error) {
	app, err := cli.NewApp(ctx, cfg, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize application: %w", err)
	}
	return app, nil
}

func closeApp(ctx context.Context, app *cli.App) {
	if err := app.Close(); err != nil {
		logger.WarnContext(ctx, "Backend close error", applog.FieldError, err)
	}
}
