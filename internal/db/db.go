// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool. The schema is applied
// first so prepared statement registration has the tables it references.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	if err := EnsureSchema(ctx, cfg.DatabaseURL); err != nil {
		return nil, err
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and alert
// layers use. Prepared statements eliminate parse overhead on every request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Alerts: reads
		"list_alerts": `
			SELECT id, user_id, type, title, message, game_id, priority,
			       created_at, read, bet_side, edge, confidence, sport
			FROM alerts
			WHERE user_id = $1
			  AND ($2::boolean IS FALSE OR read = false)
			  AND ($3::text = '' OR type = $3)
			  AND ($4::text = '' OR sport = $4)
			ORDER BY
			  CASE priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END,
			  created_at DESC
			LIMIT $5`,
		"unread_alert_count": "SELECT count(*) FROM alerts WHERE user_id = $1 AND read = false",

		// Alerts: writes
		"upsert_alert": `
			INSERT INTO alerts (
				id, user_id, type, title, message, game_id, priority,
				created_at, read, bet_side, edge, confidence, sport
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,false,$9,$10,$11,$12)
			ON CONFLICT (user_id, id) DO NOTHING`,
		"mark_alert_read":      "UPDATE alerts SET read = true WHERE user_id = $1 AND id = $2",
		"mark_all_alerts_read": "UPDATE alerts SET read = true WHERE user_id = $1 AND read = false",

		// Preferences
		"get_preferences": `
			SELECT user_id, enable_value_bets, enable_high_confidence,
			       enable_line_movement, enable_injuries,
			       min_edge_threshold, min_confidence, sports
			FROM alert_preferences WHERE user_id = $1`,
		"upsert_preferences": `
			INSERT INTO alert_preferences (
				user_id, enable_value_bets, enable_high_confidence,
				enable_line_movement, enable_injuries,
				min_edge_threshold, min_confidence, sports, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,NOW())
			ON CONFLICT (user_id) DO UPDATE SET
				enable_value_bets = EXCLUDED.enable_value_bets,
				enable_high_confidence = EXCLUDED.enable_high_confidence,
				enable_line_movement = EXCLUDED.enable_line_movement,
				enable_injuries = EXCLUDED.enable_injuries,
				min_edge_threshold = EXCLUDED.min_edge_threshold,
				min_confidence = EXCLUDED.min_confidence,
				sports = EXCLUDED.sports,
				updated_at = NOW()`,
		"all_preference_user_ids": "SELECT user_id FROM alert_preferences",

		// Delivery channels
		"get_telegram_chat_id": "SELECT chat_id FROM user_channels WHERE user_id = $1 AND channel = 'telegram' AND is_active = true",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
