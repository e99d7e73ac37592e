package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler"
	"github.com/qj0r9j0vc2/alert-insights/internal/adapter/handler/middleware"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	Health   *handler.HealthHandler
	Ready    *handler.ReadyHandler
	Reload   *handler.ReloadHandler
	Metrics  http.Handler
	Insights *handler.InsightsHandler
}

// RouterConfig holds the middleware settings.
type RouterConfig struct {
	RequestTimeout time.Duration
	Metrics        middleware.HTTPRecorder // Optional
}

// NewRouter creates the HTTP router with default middleware settings.
func NewRouter(handlers *Handlers, logger *slog.Logger) http.Handler {
	return NewRouterWithConfig(handlers, logger, &RouterConfig{})
}

// NewRouterWithConfig creates the HTTP router with all handlers.
func NewRouterWithConfig(handlers *Handlers, logger *slog.Logger, cfg *RouterConfig) http.Handler {
	mux := http.NewServeMux()

	// Operational endpoints
	mux.Handle("/health", handlers.Health)
	if handlers.Ready != nil {
		mux.Handle("/ready", handlers.Ready)
	}
	if handlers.Metrics != nil {
		mux.Handle("GET /metrics", handlers.Metrics)
	}
	if handlers.Reload != nil {
		mux.Handle("/-/reload", handlers.Reload)
	}

	// Insight views
	if ih := handlers.Insights; ih != nil {
		mux.HandleFunc("GET /api/v1/accounts/overview", ih.Overview)
		mux.HandleFunc("GET /api/v1/accounts/{id}/incidents", ih.Incidents)
		mux.HandleFunc("GET /api/v1/accounts/{id}/notifications", ih.Notifications)
		mux.HandleFunc("GET /api/v1/accounts/{id}/entities", ih.Entities)
		mux.HandleFunc("GET /api/v1/accounts/{id}/ccu", ih.Ccu)
		mux.HandleFunc("GET /api/v1/accounts/{id}/policies", ih.Policies)
		mux.HandleFunc("GET /api/v1/accounts/{id}/policies/{policyId}/conditions", ih.PolicyConditions)
		mux.HandleFunc("GET /api/v1/accounts/{id}/conditions/{conditionId}/timeline", ih.Timeline)
		mux.HandleFunc("GET /api/v1/accounts/{id}/scorecard", ih.Scorecard)
		mux.HandleFunc("POST /api/v1/accounts/{id}/digest", ih.Digest)
	}

	// Apply middleware stack, innermost first
	var h http.Handler = mux
	if cfg.Metrics != nil {
		h = middleware.Observability(cfg.Metrics)(h)
	}
	h = middleware.Timeout(cfg.RequestTimeout)(h)
	h = middleware.RequestID(h)
	h = middleware.Logging(logger)(h)
	h = middleware.Recovery(logger)(h)

	return h
}
