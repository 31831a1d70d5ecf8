package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finwire/walletd/internal/adapter/http/handler"
	"github.com/finwire/walletd/internal/adapter/http/middleware"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	TransferHandler *handler.TransferHandler
	HealthHandler   *handler.HealthHandler
	Logging         *middleware.LoggingMiddleware
	Metrics         *middleware.MetricsMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	if cfg.Logging != nil {
		r.Use(cfg.Logging.Wrap)
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Wrap)
	}
	r.Use(middleware.Recovery)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)

	// Prometheus
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/transfers", func(r chi.Router) {
			r.Post("/", cfg.TransferHandler.Create)
			r.Post("/batch", cfg.TransferHandler.CreateBatch)
			r.Get("/{id}", cfg.TransferHandler.Get)
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/{id}/transfers", cfg.TransferHandler.ListByAccount)
		})
	})

	return r
}
