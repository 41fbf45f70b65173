// Package maintenance runs periodic background tasks as Go tickers.
// Replaces pg_cron — all scheduled work is driven from Go since the API is
// already a persistent, long-running service (required for LISTEN/NOTIFY).
package maintenance

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/store"
)

// Config controls maintenance task intervals. Zero duration disables a task.
type Config struct {
	CleanupInterval time.Duration // Old read alerts
	RetryInterval   time.Duration // Re-queue failed deliveries
	AlertRetention  time.Duration // How long read alerts are kept
}

// DefaultConfig returns sensible production defaults.
func DefaultConfig() Config {
	return Config{
		CleanupInterval: 30 * time.Minute,
		RetryInterval:   15 * time.Minute,
		AlertRetention:  30 * 24 * time.Hour,
	}
}

// Start launches all configured maintenance tickers. Blocks until ctx is
// cancelled. Intended to be called with `go`.
func Start(ctx context.Context, pool *pgxpool.Pool, cfg Config, logger *slog.Logger) {
	logger.Info("Maintenance tickers started",
		"cleanup", cfg.CleanupInterval,
		"retry", cfg.RetryInterval)

	tickers := make([]*time.Ticker, 0, 2)
	defer func() {
		for _, t := range tickers {
			t.Stop()
		}
	}()

	// Cleanup: remove read alerts past the retention window
	if cfg.CleanupInterval > 0 {
		t := time.NewTicker(cfg.CleanupInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { cleanup(ctx, pool, cfg.AlertRetention, logger) })
	}

	// Retry: requeue failed deliveries for another dispatch attempt
	if cfg.RetryInterval > 0 {
		t := time.NewTicker(cfg.RetryInterval)
		tickers = append(tickers, t)
		go runLoop(ctx, t.C, func() { requeueFailed(ctx, pool, logger) })
	}

	<-ctx.Done()
	logger.Info("Maintenance tickers stopped")
}

func runLoop(ctx context.Context, ch <-chan time.Time, fn func()) {
	for {
		select {
		case <-ch:
			fn()
		case <-ctx.Done():
			return
		}
	}
}

// --------------------------------------------------------------------------
// Task implementations
// --------------------------------------------------------------------------

func cleanup(ctx context.Context, pool *pgxpool.Pool, retention time.Duration, logger *slog.Logger) {
	n, err := store.PurgeOld(ctx, pool, retention)
	if err != nil {
		logger.Warn("Cleanup: failed to purge old alerts", "error", err)
		return
	}
	if n > 0 {
		logger.Info("Cleanup: purged old alerts", "count", n)
	}
}

// requeueFailed returns failed deliveries to 'pending' so the dispatch
// worker picks them up again. Rows stuck in 'sending' (e.g. a dispatcher
// crashed mid-batch) are also recovered after an hour.
func requeueFailed(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) {
	tag, err := pool.Exec(ctx, `
		UPDATE alerts
		SET delivery_status = 'pending', updated_at = NOW()
		WHERE delivery_status = 'failed'
		   OR (delivery_status = 'sending' AND updated_at < NOW() - INTERVAL '1 hour')`)
	if err != nil {
		logger.Warn("Retry: failed to requeue deliveries", "error", err)
		return
	}
	if tag.RowsAffected() > 0 {
		logger.Info("Retry: requeued deliveries", "count", tag.RowsAffected())
	}
}
