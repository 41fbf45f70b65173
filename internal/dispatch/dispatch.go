// Package dispatch delivers persisted alerts to users over configured
// channels (Telegram per user, Slack for ops). A background worker claims
// pending rows in batches, consults the dedup gate, and fans out to every
// configured sender.
package dispatch

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/dedup"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// Dispatcher drains pending alerts to delivery channels.
type Dispatcher struct {
	pool    *pgxpool.Pool
	dedup   *dedup.Deduplicator
	senders []Sender
	logger  *slog.Logger
}

// New creates a dispatcher. Nil senders are dropped so callers can pass
// constructors directly without checking configuration themselves.
func New(pool *pgxpool.Pool, d *dedup.Deduplicator, logger *slog.Logger, senders ...Sender) *Dispatcher {
	active := make([]Sender, 0, len(senders))
	for _, s := range senders {
		if s == nil {
			continue
		}
		switch v := s.(type) {
		case *TelegramSender:
			if v == nil {
				continue
			}
		case *SlackSender:
			if v == nil {
				continue
			}
		}
		active = append(active, s)
	}
	return &Dispatcher{pool: pool, dedup: d, senders: active, logger: logger}
}

// HasSenders reports whether any delivery channel is configured.
func (d *Dispatcher) HasSenders() bool {
	return len(d.senders) > 0
}

// StartWorker runs a background loop delivering due alerts every interval.
// Blocks until ctx is cancelled. Intended to be called with `go`.
func (d *Dispatcher) StartWorker(ctx context.Context, interval time.Duration) {
	d.logger.Info("Alert dispatch worker started",
		"interval", interval, "senders", len(d.senders))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, failed, err := d.DispatchBatch(ctx)
			if err != nil {
				d.logger.Error("dispatch error", "error", err)
			} else if sent+failed > 0 {
				d.logger.Info("dispatch batch", "sent", sent, "failed", failed)
			}
		case <-ctx.Done():
			d.logger.Info("Alert dispatch worker stopped")
			return
		}
	}
}

// DispatchBatch claims and delivers one batch of pending alerts. Exposed so
// the CLI can run a single one-shot pass.
func (d *Dispatcher) DispatchBatch(ctx context.Context) (sent, failed int, err error) {
	claimed, err := store.ClaimUndelivered(ctx, d.pool)
	if err != nil {
		return 0, 0, err
	}

	for _, row := range claimed {
		allow, dedupErr := d.dedup.ShouldDeliver(ctx, row.UserID, row.ID)
		if dedupErr != nil {
			// Redis trouble should not wedge the batch; deliver anyway.
			d.logger.Warn("dedup check failed, delivering", "alert_id", row.ID, "error", dedupErr)
			allow = true
		}
		if !allow {
			_ = store.MarkDeliverySkipped(ctx, d.pool, row.UserID, row.ID)
			continue
		}

		if sendErr := d.deliver(ctx, row); sendErr != nil {
			d.logger.Warn("delivery failed",
				"alert_id", row.ID, "user_id", row.UserID, "error", sendErr)
			_ = store.MarkDeliveryFailed(ctx, d.pool, row.UserID, row.ID, sendErr.Error())
			failed++
		} else {
			_ = store.MarkDelivered(ctx, d.pool, row.UserID, row.ID)
			sent++
		}
	}
	return sent, failed, nil
}

// deliver fans one alert out to every sender. The first error wins; senders
// after a failure still run so one broken channel doesn't silence the rest.
func (d *Dispatcher) deliver(ctx context.Context, row store.DeliveryRow) error {
	var firstErr error
	for _, s := range d.senders {
		if err := s.Send(ctx, row); err != nil {
			d.logger.Warn("sender failed",
				"sender", s.Name(), "alert_id", row.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
