// Command alerts is the Sharpline alert operations CLI.
//
// Usage:
//
//	sharpline-alerts derive --sport nba --workers 4
//	sharpline-alerts derive --input games.json
//	sharpline-alerts dispatch
//	sharpline-alerts purge --days 30
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sharpline/sharpline-alerts/internal/config"
	"github.com/sharpline/sharpline-alerts/internal/db"
	"github.com/sharpline/sharpline-alerts/internal/dedup"
	"github.com/sharpline/sharpline-alerts/internal/derive"
	"github.com/sharpline/sharpline-alerts/internal/dispatch"
	"github.com/sharpline/sharpline-alerts/internal/engine"
	"github.com/sharpline/sharpline-alerts/internal/provider/predictions"
	"github.com/sharpline/sharpline-alerts/internal/store"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:   "sharpline-alerts",
		Short: "Sharpline alert operations CLI",
	}

	root.AddCommand(deriveCmd())
	root.AddCommand(dispatchCmd())
	root.AddCommand(purgeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// derive command
// --------------------------------------------------------------------------

func deriveCmd() *cobra.Command {
	var (
		sport   string
		input   string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive alerts for all users from the prediction feed or a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				games, err := loadGames(ctx, cfg, sport, input)
				if err != nil {
					return err
				}
				if len(games) == 0 {
					logger.Info("No games in batch, nothing to derive")
					return nil
				}
				logger.Info("Deriving alerts", "games", len(games), "workers", workers)

				result := derive.Run(ctx, pool.Pool, games, workers, logger)
				if len(result.Errors) > 0 {
					for _, e := range result.Errors {
						logger.Error("derive error", "error", e)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sport, "sport", "", "Fetch only one sport from the feed (nba, nfl); empty = all")
	cmd.Flags().StringVar(&input, "input", "", "Read the game batch from a JSON file instead of the feed")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent worker count")
	return cmd
}

// loadGames reads the game batch from a file when --input is set, otherwise
// fetches it from the prediction feed.
func loadGames(ctx context.Context, cfg *config.Config, sport, input string) ([]engine.GameWithPrediction, error) {
	if input != "" {
		data, err := os.ReadFile(input)
		if err != nil {
			return nil, fmt.Errorf("read input file: %w", err)
		}
		var games []engine.GameWithPrediction
		if err := json.Unmarshal(data, &games); err != nil {
			return nil, fmt.Errorf("parse input file: %w", err)
		}
		logger.Info("Loaded game batch from file", "file", input, "games", len(games))
		return games, nil
	}

	if cfg.PredictionsAPIKey == "" {
		return nil, fmt.Errorf("PREDICTIONS_API_KEY is required (or use --input)")
	}
	client := predictions.NewClient(cfg.PredictionsBaseURL, cfg.PredictionsAPIKey, cfg.PredictionsRPM, logger)
	return client.UpcomingGames(ctx, engine.Sport(sport))
}

// --------------------------------------------------------------------------
// dispatch command
// --------------------------------------------------------------------------

func dispatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver pending alerts in one batch and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				deduper := dedup.New(cfg.RedisAddr, cfg.RedisPassword, cfg.DedupTTL)
				d := dispatch.New(pool.Pool, deduper, logger,
					dispatch.NewTelegramSender(cfg.TelegramBotToken, pool.Pool, logger),
					dispatch.NewSlackSender(cfg.SlackWebhookURL),
				)
				if !d.HasSenders() {
					return fmt.Errorf("no delivery channels configured (set TELEGRAM_BOT_TOKEN or SLACK_WEBHOOK_URL)")
				}

				start := time.Now()
				sent, failed, err := d.DispatchBatch(ctx)
				if err != nil {
					return err
				}
				logger.Info("Dispatch finished",
					"sent", sent, "failed", failed,
					"duration", time.Since(start).Round(time.Millisecond))
				return nil
			})
		},
	}
	return cmd
}

// --------------------------------------------------------------------------
// purge command
// --------------------------------------------------------------------------

func purgeCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete read alerts older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(ctx context.Context, cfg *config.Config, pool *db.Pool) error {
				n, err := store.PurgeOld(ctx, pool.Pool, time.Duration(days)*24*time.Hour)
				if err != nil {
					return err
				}
				logger.Info("Purge finished", "deleted", n, "older_than_days", days)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Retention window in days")
	return cmd
}

// --------------------------------------------------------------------------
// Shared setup
// --------------------------------------------------------------------------

// run handles config loading, DB connection, and context cancellation.
func run(fn func(ctx context.Context, cfg *config.Config, pool *db.Pool) error) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := db.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	return fn(ctx, cfg, pool)
}
