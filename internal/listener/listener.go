// Package listener provides a Postgres LISTEN/NOTIFY consumer that feeds
// the WebSocket hub. It holds a dedicated pgx connection (not from the
// pool) listening on the `alert_created` channel.
//
// The API process only sees alerts it derived itself; alerts inserted by
// the CLI (or another API instance) arrive here via the insert trigger's
// pg_notify, so connected clients get them regardless of which process
// wrote the row.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/ws"
)

const (
	channel          = "alert_created"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// Start opens a dedicated connection and listens on the alert_created
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, hub *ws.Hub, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, hub, logger)
		if ctx.Err() != nil {
			logger.Info("Alert listener stopped (context cancelled)")
			return
		}

		logger.Error("Alert listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection
// drops or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, hub *ws.Hub, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Alert listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var alert engine.Alert
		if err := json.Unmarshal([]byte(notification.Payload), &alert); err != nil {
			logger.Warn("Failed to parse alert event",
				"payload", notification.Payload, "error", err)
			continue
		}

		hub.Broadcast(alert)
	}
}
