// Package cli provides the start-up wiring shared by cmd/tyotilasto and
// cmd/tilastoctl.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tyotilasto/internal/backend"
	"tyotilasto/internal/catalog"
	"tyotilasto/internal/config"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/metrics"
	"tyotilasto/internal/services"
)

// SetupLogger builds the process logger and installs it as the slog default.
// An unknown level falls back to info.
func SetupLogger(level, format string) *applog.Logger {
	lvl, err := applog.ParseLevel(level)
	logger := applog.New(applog.Config{Level: lvl, Format: format})
	applog.SetDefault(logger)
	if err != nil {
		logger.WarnContext(context.Background(), "Unknown log level, using info", applog.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		logger.ErrorContext(context.Background(), "Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// App holds the services every command needs.
type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Backend   backend.Backend
	Summaries *services.SummaryService
	Reports   *services.ReportService
	Metrics   *metrics.Metrics

	cleanup backend.CleanupFunc
}

// NewApp loads the catalog, opens the configured backend and wires the
// services on top of it. m may be nil.
func NewApp(ctx context.Context, cfg *config.Config, logger *applog.Logger, m *metrics.Metrics) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	year, err := services.GetYearStrategy(cfg.TrendYearMatch)
	if err != nil {
		return nil, err
	}

	backendCfg, err := backend.FromAppConfig(cfg, cat)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	summaries := services.NewSummaryService(result.Backend, cat, services.SummaryOptions{
		Concurrency:  cfg.FetchConcurrency,
		FetchTimeout: cfg.FetchTimeout,
		CacheTTL:     cfg.SummaryCacheTTL,
		YearStrategy: year,
	}, m, logger)

	logger.InfoContext(ctx, "Application wired",
		applog.FieldBackend, cfg.DataBackend,
		"regions", len(cat.Regions),
		"indicators", len(cat.Indicators),
		"year_match", cfg.TrendYearMatch)

	return &App{
		Config:    cfg,
		Catalog:   cat,
		Backend:   result.Backend,
		Summaries: summaries,
		Reports:   services.NewReportService(result.Backend, cfg.FetchTimeout, logger),
		Metrics:   m,
		cleanup:   result.Cleanup,
	}, nil
}

// Ping checks the backend when it supports health checks.
func (a *App) Ping(ctx context.Context) error {
	if p, ok := a.Backend.(backend.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close releases backend resources.
func (a *App) Close() error {
	if a.cleanup == nil {
		return nil
	}
	return a.cleanup()
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when cleanup has finished.
func GracefulShutdown(logger *applog.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.InfoContext(ctx, "Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}

		if shutdownCtx.Err() != nil {
			logger.WarnContext(shutdownCtx, "Shutdown timeout reached")
		} else {
			logger.InfoContext(shutdownCtx, "Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup is done.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
