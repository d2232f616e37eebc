package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/iho/salonledger/internal/adapter/http/handler"
	"github.com/iho/salonledger/internal/adapter/http/middleware"
	"github.com/iho/salonledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RateHandler    *handler.RateHandler
	ComandaHandler *handler.ComandaHandler
	CashBoxHandler *handler.CashBoxHandler
	HealthHandler  *handler.HealthHandler

	// IdempotencyStore enables Idempotency-Key handling when set.
	IdempotencyStore usecase.IdempotencyStore
	IdempotencyTTL   time.Duration

	RateLimiter *middleware.RateLimiter

	// Metrics records request metrics; MetricsHandler is served on /metrics.
	Metrics        middleware.HTTPRecorder
	MetricsHandler http.Handler

	Logger zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))

	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Exchange rates
		r.Route("/rates", func(r chi.Router) {
			r.Post("/", cfg.RateHandler.Set)
			r.Get("/current", cfg.RateHandler.Current)
			r.Get("/history", cfg.RateHandler.History)
			r.Get("/convert", cfg.RateHandler.Convert)
		})

		// Comandas
		r.Route("/comandas", func(r chi.Router) {
			r.Post("/", cfg.ComandaHandler.Create)
			r.Get("/{id}", cfg.ComandaHandler.Get)
			r.Put("/{id}", cfg.ComandaHandler.Amend)
			r.Post("/{id}/validate", cfg.ComandaHandler.Validate)
			r.Post("/{id}/cancel", cfg.ComandaHandler.Cancel)
		})

		// Cash boxes
		r.Route("/cash-boxes/{box}", func(r chi.Router) {
			r.Get("/comandas", cfg.CashBoxHandler.ListComandas)
			r.Get("/candidates", cfg.CashBoxHandler.Candidates)
			r.Post("/transfers", cfg.CashBoxHandler.Transfer)
			r.Get("/transfers", cfg.CashBoxHandler.ListTransfers)
			r.Get("/summary", cfg.CashBoxHandler.Summary)
			r.Get("/summary/business-units", cfg.CashBoxHandler.ByBusinessUnit)
			r.Get("/summary/staff", cfg.CashBoxHandler.ByStaff)
		})

		// Transfer records
		r.Get("/transfers/{id}", cfg.CashBoxHandler.GetTransfer)
	})

	return r
}
