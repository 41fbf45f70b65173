// Package store persists derived alerts and user preferences in Postgres.
// The engine itself is stateless; everything durable — alert rows, read
// state, delivery status — lives here.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

const claimBatchSize = 100

// ListOptions narrows an alert listing.
type ListOptions struct {
	UnreadOnly bool
	Type       engine.AlertType // empty = all types
	Sport      engine.Sport     // empty = all sports
	Limit      int
}

// UpsertBatch persists a batch of derived alerts. The structural alert ID is
// idempotent across re-derivations of the same games, so conflicting rows
// are skipped rather than duplicated. Returns the number of new rows.
func UpsertBatch(ctx context.Context, pool *pgxpool.Pool, alerts []engine.Alert) (int, error) {
	inserted := 0
	for _, a := range alerts {
		tag, err := pool.Exec(ctx, "upsert_alert",
			a.ID, a.UserID, a.Type, a.Title, a.Message, a.GameID, a.Priority,
			a.CreatedAt, nullIfEmpty(string(a.BetSide)), a.Edge,
			nullIfEmpty(string(a.Confidence)), nullIfEmpty(string(a.Sport)),
		)
		if err != nil {
			return inserted, fmt.Errorf("upsert alert %s: %w", a.ID, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// List returns a user's alerts in display order (priority, then newest).
func List(ctx context.Context, pool *pgxpool.Pool, userID string, opts ListOptions) ([]engine.Alert, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	rows, err := pool.Query(ctx, "list_alerts",
		userID, opts.UnreadOnly, string(opts.Type), string(opts.Sport), limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []engine.Alert
	for rows.Next() {
		var a engine.Alert
		var betSide, confidence, sport *string
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Type, &a.Title, &a.Message, &a.GameID,
			&a.Priority, &a.CreatedAt, &a.Read, &betSide, &a.Edge,
			&confidence, &sport,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		if betSide != nil {
			a.BetSide = engine.BetSide(*betSide)
		}
		if confidence != nil {
			a.Confidence = engine.Confidence(*confidence)
		}
		if sport != nil {
			a.Sport = engine.Sport(*sport)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkRead flags one alert as read. Read-state toggling is a consumer
// responsibility; the engine always emits read=false.
func MarkRead(ctx context.Context, pool *pgxpool.Pool, userID, alertID string) (bool, error) {
	tag, err := pool.Exec(ctx, "mark_alert_read", userID, alertID)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkAllRead flags every unread alert of a user as read.
func MarkAllRead(ctx context.Context, pool *pgxpool.Pool, userID string) (int64, error) {
	tag, err := pool.Exec(ctx, "mark_all_alerts_read", userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the user's unread alert count.
func CountUnread(ctx context.Context, pool *pgxpool.Pool, userID string) (int, error) {
	var n int
	if err := pool.QueryRow(ctx, "unread_alert_count", userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// PurgeOld deletes read alerts older than the retention window. Returns the
// number of rows removed.
func PurgeOld(ctx context.Context, pool *pgxpool.Pool, retention time.Duration) (int64, error) {
	tag, err := pool.Exec(ctx, `
		DELETE FROM alerts
		WHERE read = true AND created_at < NOW() - $1::interval`,
		retention.String())
	if err != nil {
		return 0, fmt.Errorf("purge old alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeliveryRow is a claimed alert awaiting delivery.
type DeliveryRow struct {
	ID      string
	UserID  string
	Type    engine.AlertType
	Title   string
	Message string
	Sport   string
}

// ClaimUndelivered atomically claims a batch of pending alerts for delivery.
// Uses FOR UPDATE SKIP LOCKED so concurrent dispatchers never double-send.
func ClaimUndelivered(ctx context.Context, pool *pgxpool.Pool) ([]DeliveryRow, error) {
	rows, err := pool.Query(ctx, `
		UPDATE alerts
		SET delivery_status = 'sending', updated_at = NOW()
		WHERE (user_id, id) IN (
			SELECT user_id, id FROM alerts
			WHERE delivery_status = 'pending'
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, user_id, type, title, message, COALESCE(sport, '')`,
		claimBatchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("claim undelivered alerts: %w", err)
	}
	defer rows.Close()

	var claimed []DeliveryRow
	for rows.Next() {
		var r DeliveryRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.Type, &r.Title, &r.Message, &r.Sport); err != nil {
			return nil, fmt.Errorf("scan claimed: %w", err)
		}
		claimed = append(claimed, r)
	}
	return claimed, rows.Err()
}

// MarkDelivered marks an alert as successfully delivered.
func MarkDelivered(ctx context.Context, pool *pgxpool.Pool, userID, alertID string) error {
	_, err := pool.Exec(ctx, `
		UPDATE alerts SET delivery_status = 'delivered', delivered_at = NOW(), updated_at = NOW()
		WHERE user_id = $1 AND id = $2`, userID, alertID)
	return err
}

// MarkDeliveryFailed marks an alert delivery as failed with a reason.
func MarkDeliveryFailed(ctx context.Context, pool *pgxpool.Pool, userID, alertID, reason string) error {
	_, err := pool.Exec(ctx, `
		UPDATE alerts SET delivery_status = 'failed', last_error = $3, updated_at = NOW()
		WHERE user_id = $1 AND id = $2`, userID, alertID, reason)
	return err
}

// MarkDeliverySkipped returns an alert claimed as 'sending' to a terminal
// state without sending (e.g. suppressed by dedup).
func MarkDeliverySkipped(ctx context.Context, pool *pgxpool.Pool, userID, alertID string) error {
	_, err := pool.Exec(ctx, `
		UPDATE alerts SET delivery_status = 'skipped', updated_at = NOW()
		WHERE user_id = $1 AND id = $2`, userID, alertID)
	return err
}

// GetTelegramChatID returns the user's active Telegram chat, if registered.
func GetTelegramChatID(ctx context.Context, pool *pgxpool.Pool, userID string) (int64, error) {
	var chatID int64
	if err := pool.QueryRow(ctx, "get_telegram_chat_id", userID).Scan(&chatID); err != nil {
		return 0, fmt.Errorf("get telegram chat for %s: %w", userID, err)
	}
	return chatID, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
