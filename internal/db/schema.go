package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// schema is applied on startup. All statements are idempotent so running
// against an existing database is safe.
const schema = `
CREATE TABLE IF NOT EXISTS alerts (
	id              TEXT        NOT NULL,
	user_id         TEXT        NOT NULL,
	type            TEXT        NOT NULL,
	title           TEXT        NOT NULL,
	message         TEXT        NOT NULL,
	game_id         TEXT        NOT NULL,
	priority        TEXT        NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	read            BOOLEAN     NOT NULL DEFAULT false,
	bet_side        TEXT,
	edge            DOUBLE PRECISION,
	confidence      TEXT,
	sport           TEXT,

	delivery_status TEXT        NOT NULL DEFAULT 'pending',
	delivered_at    TIMESTAMPTZ,
	last_error      TEXT,
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),

	PRIMARY KEY (user_id, id)
);

CREATE INDEX IF NOT EXISTS idx_alerts_user_unread
	ON alerts (user_id) WHERE read = false;
CREATE INDEX IF NOT EXISTS idx_alerts_pending
	ON alerts (created_at) WHERE delivery_status = 'pending';

CREATE TABLE IF NOT EXISTS alert_preferences (
	user_id                TEXT             PRIMARY KEY,
	enable_value_bets      BOOLEAN          NOT NULL DEFAULT true,
	enable_high_confidence BOOLEAN          NOT NULL DEFAULT true,
	enable_line_movement   BOOLEAN          NOT NULL DEFAULT false,
	enable_injuries        BOOLEAN          NOT NULL DEFAULT true,
	min_edge_threshold     DOUBLE PRECISION NOT NULL DEFAULT 3.0,
	min_confidence         TEXT             NOT NULL DEFAULT 'medium',
	sports                 TEXT[]           NOT NULL DEFAULT '{nba,nfl}',
	updated_at             TIMESTAMPTZ      NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_channels (
	user_id    TEXT        NOT NULL,
	channel    TEXT        NOT NULL,
	chat_id    BIGINT      NOT NULL,
	is_active  BOOLEAN     NOT NULL DEFAULT true,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

	PRIMARY KEY (user_id, channel)
);

CREATE OR REPLACE FUNCTION notify_alert_created() RETURNS trigger AS $$
BEGIN
	PERFORM pg_notify('alert_created', row_to_json(NEW)::text);
	RETURN NEW;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS alerts_notify_insert ON alerts;
CREATE TRIGGER alerts_notify_insert
	AFTER INSERT ON alerts
	FOR EACH ROW EXECUTE FUNCTION notify_alert_created();
`

// EnsureSchema applies the schema on a dedicated connection. It runs before
// the pool is created because prepared statement registration requires the
// tables to exist.
func EnsureSchema(ctx context.Context, databaseURL string) error {
	conn, err := pgx.Connect(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("connect for schema: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
