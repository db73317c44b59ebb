package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tyotilasto/internal/amqp"
	"tyotilasto/internal/cache"
	"tyotilasto/internal/cli"
	apphttp "tyotilasto/internal/http"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/metrics"
	"tyotilasto/internal/middleware/ratelimit"
	"tyotilasto/internal/news"
	"tyotilasto/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()

	boot := cli.SetupLogger("info", "text")
	cfg := cli.LoadAndValidateConfig(boot)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	m := metrics.New()
	startCtx := context.Background()

	app, err := cli.NewApp(startCtx, cfg, logger, m)
	if err != nil {
		logger.ErrorContext(startCtx, "Failed to initialize application", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}

	caches := cache.NewManager()
	caches.Register(app.Summaries.Cache())

	deps := apphttp.Deps{
		Summaries: app.Summaries,
		Reports:   app.Reports,
		Checks:    map[string]apphttp.Check{"backend": app.Ping},
		Metrics:   m,
		Logger:    logger,
		RateLimit: ratelimit.Config{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
	}

	if cfg.NewsFeedURL != "" {
		feed := news.NewFeed(cfg.NewsFeedURL, news.Options{}, logger)
		caches.Register(feed.Cache())
		deps.News = feed
		logger.InfoContext(startCtx, "News panel enabled", "feed", cfg.NewsFeedURL)
	}
	caches.StartCleanup(10 * time.Minute)

	// Broker is optional: without it the ticker alone keeps the cache warm.
	var (
		amqpClient *amqp.Client
		consumer   worker.Consumer
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.WarnContext(startCtx, "AMQP unavailable, refresh notifications disabled", applog.FieldError, err)
			amqpClient = nil
		} else {
			consumer = amqpClient
			logger.InfoContext(startCtx, "AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	refresher := worker.NewRefreshWorker(app.Summaries, consumer, cfg.RefreshInterval, m, logger)
	srv := apphttp.NewServer(":"+cfg.Port, deps)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(shutdownCtx, "Server shutdown error", applog.FieldError, err)
		}
		refresher.Stop()
		caches.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.WarnContext(shutdownCtx, "AMQP close error", applog.FieldError, err)
			}
		}
		if err := app.Close(); err != nil {
			logger.WarnContext(shutdownCtx, "Backend close error", applog.FieldError, err)
		}
	})

	refresher.Start(ctx)

	logger.InfoContext(ctx, "Starting tyotilasto server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		"news", deps.News != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.ErrorContext(ctx, "Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.InfoContext(context.Background(), "Server stopped gracefully")
}
