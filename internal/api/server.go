package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/sharpline/sharpline-alerts/internal/api/handler"
	"github.com/sharpline/sharpline-alerts/internal/cache"
	"github.com/sharpline/sharpline-alerts/internal/config"
	"github.com/sharpline/sharpline-alerts/internal/ws"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, appCache *cache.Cache, cfg *config.Config, hub *ws.Hub) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg, hub)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Alerts
		r.Route("/alerts/{userID}", func(r chi.Router) {
			r.Get("/", h.GetAlerts)
			r.Get("/grouped", h.GetAlertsGrouped)
			r.Get("/unread-count", h.GetUnreadCount)
			r.Post("/generate", h.GenerateAlerts)
			r.Post("/read-all", h.MarkAllAlertsRead)
			r.Patch("/{alertID}/read", h.MarkAlertRead)
		})

		// Preferences
		r.Route("/preferences/{userID}", func(r chi.Router) {
			r.Get("/", h.GetPreferences)
			r.Put("/", h.PutPreferences)
		})
	})

	// Realtime alert stream
	r.Get("/ws/alerts/{userID}", h.AlertStream)

	return r
}
