package router

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	govrouter "github.com/zlovtnik/docgov/internal/governance/router"
	"github.com/zlovtnik/docgov/internal/handlers"
	"github.com/zlovtnik/docgov/internal/middleware"
)

// Router holds all route handlers
type Router struct {
	mux           *http.ServeMux
	jwtSecret     string
	corsOrigins   []string
	logger        *slog.Logger
	healthHandler *handlers.HealthHandler
	governance    govrouter.HandlerSet
}

// NewRouter creates a new Router
func NewRouter(
	jwtSecret string,
	corsOrigins []string,
	logger *slog.Logger,
	healthHandler *handlers.HealthHandler,
	governance govrouter.HandlerSet,
) *Router {
	if healthHandler == nil {
		panic("health handler is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		mux:           http.NewServeMux(),
		jwtSecret:     jwtSecret,
		corsOrigins:   corsOrigins,
		logger:        logger,
		healthHandler: healthHandler,
		governance:    governance,
	}
}

// isPublic reports whether path is served without a token
func isPublic(path string) bool {
	switch path {
	case "/health", "/ready", "/metrics":
		return true
	}
	return false
}

// Setup configures all routes
func (r *Router) Setup() http.Handler {
	// Health and metrics endpoints (no auth required)
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)
	r.mux.HandleFunc("GET /ready", r.healthHandler.Ready)
	r.mux.Handle("GET /metrics", promhttp.Handler())

	govrouter.NewGovernanceRouter(r.mux, r.governance).RegisterRoutes()

	// Apply middleware stack
	var handler http.Handler = r.mux

	// Auth middleware (skip for public endpoints and OPTIONS)
	handler = r.authMiddleware(handler)

	// CORS - applied after auth so it can set headers for preflight before auth rejects
	handler = middleware.CORSMiddleware(middleware.DefaultCORSConfig(r.corsOrigins...))(handler)

	handler = middleware.MetricsMiddleware()(handler)

	// Logging
	handler = middleware.LoggingMiddleware(r.logger)(handler)

	// Recovery
	handler = middleware.RecoveryMiddleware(r.logger)(handler)

	return handler
}

// authMiddleware wraps the auth middleware but skips public endpoints and OPTIONS requests
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	authHandler := middleware.AuthMiddleware(r.jwtSecret)(next)

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if isPublic(req.URL.Path) || req.Method == http.MethodOptions {
			next.ServeHTTP(w, req)
			return
		}
		authHandler.ServeHTTP(w, req)
	})
}
