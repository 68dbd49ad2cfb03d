// Package web serves the inventory and ID cleaning operations over HTTP.
//
// HTML pages are templ components; run templ generate after editing a
// .templ file.
package web

//go:generate templ generate -f views.templ

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/basedata/internal/config"
	"github.com/JonMunkholm/basedata/internal/metrics"
	"github.com/JonMunkholm/basedata/internal/ops"
	weblog "github.com/JonMunkholm/basedata/internal/web/middleware"
)

// Deps are the collaborators of the server. Gatherer, Metrics and Sink may
// be nil.
type Deps struct {
	Config   *config.Config
	Gatherer prometheus.Gatherer
	Metrics  *metrics.Metrics
	Sink     ops.TableWriter // receives duplicate reports when set
}

// Server is the basedata HTTP server.
type Server struct {
	deps   Deps
	router *chi.Mux
	server *http.Server
}

// NewServer creates a Server with its middleware and routes in place. It does
// not listen until Start is called.
func NewServer(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	// RealIP must run before Logger so the logged ip is the client's.
	s.router.Use(weblog.TrustedRealIP(s.deps.Config.Security.TrustedProxies))
	s.router.Use(weblog.Logger)
	s.router.Use(middleware.Recoverer)
	if t := s.deps.Config.Server.RequestTimeout; t > 0 {
		s.router.Use(middleware.Timeout(t))
	}

	// Security hardening
	s.router.Use(securityHeaders)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check and pages
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/inventory", s.handleInventoryPage)

	// API routes, behind the API key when keys are configured
	s.router.Route("/api", func(r chi.Router) {
		r.Use(weblog.APIKeyAuth(s.deps.Config.Security.APIKeys))

		// Data file inventory
		r.Get("/inventory", s.handleInventory)

		// ID cleaning of an uploaded CSV
		r.Post("/clean", s.handleClean)
	})

	// Prometheus scrape endpoint, only with a registry
	if s.deps.Gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
}

// Start listens on the configured address. It blocks until the server stops
// and returns http.ErrServerClosed after Shutdown.
func (s *Server) Start() error {
	cfg := s.deps.Config.Server
	s.server = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	slog.Info("starting server", "addr", cfg.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests until
// ctx is done. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds browser hardening headers to every response. The CSP
// allows inline styles only; the pages load no scripts.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON. Encoding errors are only logged since the
// header is already sent.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "path", r.URL.Path, "error", err)
	}
}
