// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/api and cmd/alerts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sharpline/sharpline-alerts/internal/engine"
)

// --------------------------------------------------------------------------
// Sport registry
// --------------------------------------------------------------------------

type SportConfig struct {
	ID            engine.Sport
	Name          string
	CurrentSeason int
}

var SportRegistry = map[engine.Sport]SportConfig{
	engine.SportNBA: {ID: engine.SportNBA, Name: "National Basketball Association", CurrentSeason: 2026},
	engine.SportNFL: {ID: engine.SportNFL, Name: "National Football League", CurrentSeason: 2026},
}

// --------------------------------------------------------------------------
// Default alert preferences for users with no stored row
// --------------------------------------------------------------------------

// DefaultPreferences returns the preferences applied when a user has never
// saved their own.
func DefaultPreferences(userID string) engine.AlertPreferences {
	return engine.AlertPreferences{
		UserID:                     userID,
		EnableValueBetAlerts:       true,
		EnableHighConfidenceAlerts: true,
		EnableLineMovementAlerts:   false,
		EnableInjuryAlerts:         true,
		MinEdgeThreshold:           3.0,
		MinConfidence:              engine.ConfidenceMedium,
		Sports:                     []engine.Sport{engine.SportNBA, engine.SportNFL},
	}
}

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Database
	DatabaseURL    string
	DBPoolMinConns int
	DBPoolMaxConns int
	DBPoolMaxLife  time.Duration

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Upstream prediction feed
	PredictionsBaseURL string
	PredictionsAPIKey  string
	PredictionsRPM     int

	// Delivery
	RedisAddr        string
	RedisPassword    string
	DedupTTL         time.Duration
	DispatchInterval time.Duration
	TelegramBotToken string
	SlackWebhookURL  string

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	dbURL := envOr("DATABASE_URL", envOr("SHARPLINE_DATABASE_URL", ""))
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL or SHARPLINE_DATABASE_URL must be set")
	}

	return &Config{
		DatabaseURL:    dbURL,
		DBPoolMinConns: envInt("DB_POOL_MIN_CONNS", 2),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),
		DBPoolMaxLife:  time.Duration(envInt("DB_POOL_MAX_LIFE_MINUTES", 30)) * time.Minute,

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:3000",
			"http://localhost:5173",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		PredictionsBaseURL: envOr("PREDICTIONS_BASE_URL", "https://api.sharpline.dev/predictions"),
		PredictionsAPIKey:  envOr("PREDICTIONS_API_KEY", ""),
		PredictionsRPM:     envInt("PREDICTIONS_REQUESTS_PER_MINUTE", 60),

		RedisAddr:        envOr("REDIS_ADDR", ""),
		RedisPassword:    envOr("REDIS_PASSWORD", ""),
		DedupTTL:         time.Duration(envInt("DEDUP_TTL_MINUTES", 360)) * time.Minute,
		DispatchInterval: time.Duration(envInt("DISPATCH_INTERVAL_SECONDS", 30)) * time.Second,
		TelegramBotToken: envOr("TELEGRAM_BOT_TOKEN", ""),
		SlackWebhookURL:  envOr("SLACK_WEBHOOK_URL", ""),

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
