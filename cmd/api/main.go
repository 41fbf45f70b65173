// Command api is the Sharpline Alerts API server.
//
// Usage:
//
//	sharpline-api
//	API_PORT=8080 sharpline-api

// @title Sharpline Alerts API
// @version 1.0.0
// @description Alerting backend for NBA/NFL game predictions: derives value-bet, high-confidence pick, and injury alerts, serves them over REST and WebSocket, and dispatches them to delivery channels.
// @host localhost:8000
// @BasePath /api/v1
// @schemes http https
// @contact.name Sharpline
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/sharpline/sharpline-alerts/internal/api"
	"github.com/sharpline/sharpline-alerts/internal/cache"
	"github.com/sharpline/sharpline-alerts/internal/config"
	"github.com/sharpline/sharpline-alerts/internal/db"
	"github.com/sharpline/sharpline-alerts/internal/dedup"
	"github.com/sharpline/sharpline-alerts/internal/dispatch"
	"github.com/sharpline/sharpline-alerts/internal/listener"
	"github.com/sharpline/sharpline-alerts/internal/maintenance"
	"github.com/sharpline/sharpline-alerts/internal/ws"

	_ "github.com/sharpline/sharpline-alerts/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Start WebSocket hub
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// Start LISTEN/NOTIFY consumer so alerts written by other processes
	// still reach connected clients
	go listener.Start(ctx, cfg.DatabaseURL, hub, logger)

	// Start alert dispatch worker (if any delivery channel is configured)
	deduper := dedup.New(cfg.RedisAddr, cfg.RedisPassword, cfg.DedupTTL)
	dispatcher := dispatch.New(pool.Pool, deduper, logger,
		dispatch.NewTelegramSender(cfg.TelegramBotToken, pool.Pool, logger),
		dispatch.NewSlackSender(cfg.SlackWebhookURL),
	)
	if dispatcher.HasSenders() {
		go dispatcher.StartWorker(ctx, cfg.DispatchInterval)
	} else {
		logger.Info("Alert dispatch worker disabled (no delivery channels configured)")
	}

	// Start maintenance tickers (cleanup, delivery retry)
	go maintenance.Start(ctx, pool.Pool, maintenance.DefaultConfig(), logger)

	// Create router
	router := api.NewRouter(pool.Pool, appCache, cfg, hub)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting Sharpline Alerts API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
