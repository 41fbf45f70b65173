package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/config"
	"github.com/sharpline/sharpline-alerts/internal/engine"
)

// GetPreferences loads a user's alert preferences, falling back to the
// product defaults when the user has never saved any.
func GetPreferences(ctx context.Context, pool *pgxpool.Pool, userID string) (engine.AlertPreferences, error) {
	var (
		prefs  engine.AlertPreferences
		conf   string
		sports []string
	)
	err := pool.QueryRow(ctx, "get_preferences", userID).Scan(
		&prefs.UserID,
		&prefs.EnableValueBetAlerts,
		&prefs.EnableHighConfidenceAlerts,
		&prefs.EnableLineMovementAlerts,
		&prefs.EnableInjuryAlerts,
		&prefs.MinEdgeThreshold,
		&conf,
		&sports,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return config.DefaultPreferences(userID), nil
	}
	if err != nil {
		return engine.AlertPreferences{}, fmt.Errorf("get preferences: %w", err)
	}

	prefs.MinConfidence = engine.Confidence(conf)
	prefs.Sports = make([]engine.Sport, 0, len(sports))
	for _, s := range sports {
		prefs.Sports = append(prefs.Sports, engine.Sport(s))
	}
	return prefs, nil
}

// SavePreferences upserts a user's alert preferences.
func SavePreferences(ctx context.Context, pool *pgxpool.Pool, prefs engine.AlertPreferences) error {
	sports := make([]string, 0, len(prefs.Sports))
	for _, s := range prefs.Sports {
		sports = append(sports, string(s))
	}

	_, err := pool.Exec(ctx, "upsert_preferences",
		prefs.UserID,
		prefs.EnableValueBetAlerts,
		prefs.EnableHighConfidenceAlerts,
		prefs.EnableLineMovementAlerts,
		prefs.EnableInjuryAlerts,
		prefs.MinEdgeThreshold,
		string(prefs.MinConfidence),
		sports,
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// AllUserIDs returns every user with a stored preferences row. Used by the
// CLI derive command to fan alerts out across the user base.
func AllUserIDs(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, "all_preference_user_ids")
	if err != nil {
		return nil, fmt.Errorf("list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
