package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tyotilasto/internal/amqp"
	"tyotilasto/internal/core"
	applog "tyotilasto/internal/log"
	"tyotilasto/internal/metrics"
)

// Source labels for refresh events that do not come from the broker.
const (
	SourceTicker  = "ticker"
	SourceStartup = "startup"
)

type (
	// Refresher drops cached data and rebuilds it.
	Refresher interface {
		Refresh(ctx context.Context) (core.Summary, error)
	}

	// Consumer delivers refresh notifications until ctx is done.
	Consumer interface {
		ConsumeRefresh(ctx context.Context, handler func(context.Context, *amqp.RefreshMessage) error) error
	}
)

var _ Consumer = (*amqp.Client)(nil)

// RefreshWorker keeps the summary cache warm. It rebuilds on every broker
// notification and, when interval is positive, on a fixed schedule.
type RefreshWorker struct {
	refresher Refresher
	consumer  Consumer
	interval  time.Duration
	metrics   *metrics.Metrics
	logger    *applog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefreshWorker creates a worker. consumer may be nil when no broker is
// configured; interval <= 0 disables the schedule.
func NewRefreshWorker(refresher Refresher, consumer Consumer, interval time.Duration, m *metrics.Metrics, logger *applog.Logger) *RefreshWorker {
	if logger == nil {
		logger = applog.New(applog.Config{})
	}
	return &RefreshWorker{
		refresher: refresher,
		consumer:  consumer,
		interval:  interval,
		metrics:   m,
		logger:    logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRefreshMessage rebuilds the summary for one notification.
func (w *RefreshWorker) HandleRefreshMessage(ctx context.Context, msg *amqp.RefreshMessage) error {
	w.logger.InfoContext(ctx, "Processing refresh message",
		applog.FieldPeriod, msg.Period,
		"source", msg.Source,
		"published_at", msg.Timestamp)
	return w.refresh(ctx, msg.Source)
}

func (w *RefreshWorker) refresh(ctx context.Context, source string) error {
	start := time.Now()
	sum, err := w.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh summary: %w", err)
	}
	w.metrics.Refreshed(source)
	w.logger.InfoContext(ctx, "Summary refreshed",
		applog.NewFields().
			WithOperation(applog.OpRefresh).
			With("source", source).
			With(applog.FieldPairs, sum.Len()).
			With(applog.FieldFailures, len(sum.Failures)).
			With(applog.FieldDuration, time.Since(start).Milliseconds())...)
	return nil
}

// Start prewarms the cache and launches the background loops. It returns
// immediately; call Stop to shut them down.
func (w *RefreshWorker) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}
	ctx, w.cancel = context.WithCancel(ctx)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.refresh(ctx, SourceStartup); err != nil && ctx.Err() == nil {
			w.logger.WarnContext(ctx, "Failed to prewarm summary cache", applog.FieldError, err)
		}
	}()

	if w.consumer != nil {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			err := w.consumer.ConsumeRefresh(ctx, w.HandleRefreshMessage)
			if err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Refresh consumer stopped", applog.FieldError, err)
			}
		}()
	}

	if w.interval > 0 {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			w.tick(ctx)
		}()
	}

	w.logger.InfoContext(ctx, "Refresh worker started",
		"amqp", w.consumer != nil,
		"interval", w.interval.String())
}

func (w *RefreshWorker) tick(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.refresh(ctx, SourceTicker); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Scheduled refresh failed", applog.FieldError, err)
			}
		}
	}
}

// Stop cancels the loops and waits for them to exit.
func (w *RefreshWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	w.wg.Wait()
}
