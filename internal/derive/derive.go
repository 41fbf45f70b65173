// Package derive fans the alert engine out across the user base: one game
// batch in, one engine run per user, all derived alerts persisted. Used by
// the CLI; the per-request path in the API calls the engine directly.
package derive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

// Result tracks the outcome of a full derivation run.
type Result struct {
	UsersProcessed int
	UsersFailed    int
	AlertsDerived  int
	AlertsInserted int
	Errors         []string
	Duration       time.Duration
}

// Summary returns a human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("users=%d failed=%d derived=%d inserted=%d in %s",
		r.UsersProcessed, r.UsersFailed, r.AlertsDerived, r.AlertsInserted,
		r.Duration.Round(time.Millisecond))
}

// Run derives and persists alerts for every user with stored preferences.
// Users are processed by a small worker pool; each worker loads the user's
// preferences, runs the engine over the shared game batch, and upserts the
// result. The structural alert IDs make re-runs over the same batch
// idempotent.
func Run(ctx context.Context, pool *pgxpool.Pool, games []engine.GameWithPrediction, workers int, logger *slog.Logger) Result {
	start := time.Now()
	var result Result

	userIDs, err := store.AllUserIDs(ctx, pool)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
		result.Duration = time.Since(start)
		return result
	}
	if len(userIDs) == 0 {
		logger.Info("No users with alert preferences")
		result.Duration = time.Since(start)
		return result
	}

	now := time.Now().UTC()

	if workers < 1 {
		workers = 1
	}
	if workers > len(userIDs) {
		workers = len(userIDs)
	}

	ch := make(chan string, len(userIDs))
	for _, id := range userIDs {
		ch <- id
	}
	close(ch)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for userID := range ch {
				derived, inserted, err := deriveForUser(ctx, pool, games, userID, now)

				mu.Lock()
				result.UsersProcessed++
				if err != nil {
					result.UsersFailed++
					result.Errors = append(result.Errors, fmt.Sprintf("user %s: %s", userID, err))
				} else {
					result.AlertsDerived += derived
					result.AlertsInserted += inserted
				}
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	result.Duration = time.Since(start)

	logger.Info("Derivation run complete", "summary", result.Summary())
	return result
}

func deriveForUser(ctx context.Context, pool *pgxpool.Pool, games []engine.GameWithPrediction, userID string, now time.Time) (derived, inserted int, err error) {
	prefs, err := store.GetPreferences(ctx, pool, userID)
	if err != nil {
		return 0, 0, err
	}

	alerts := engine.Generate(games, prefs, now)
	if len(alerts) == 0 {
		return 0, 0, nil
	}

	inserted, err = store.UpsertBatch(ctx, pool, alerts)
	if err != nil {
		return len(alerts), inserted, err
	}
	return len(alerts), inserted, nil
}
