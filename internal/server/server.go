// Package server assembles the HTTP API and dashboard for the odds
// aggregator. Handlers answer every query from the latest snapshot; nothing
// here triggers bookmaker traffic except the explicit scan trigger.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/courtedge/courtbot/internal/domain"
	"github.com/courtedge/courtbot/internal/server/handler"
	"github.com/courtedge/courtbot/internal/server/middleware"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string

	// RateLimiter enables per-client request limiting when non-nil.
	RateLimiter     domain.RateLimiter
	RateLimitPerMin int
}

// Handlers aggregates all HTTP handlers that the server registers.
type Handlers struct {
	Health    *handler.HealthHandler
	Status    *handler.StatusHandler
	Matches   *handler.MatchHandler
	Analysis  *handler.AnalysisHandler
	Report    *handler.ReportHandler
	Scan      *handler.ScanHandler
	Dashboard *handler.DashboardHandler
}

// Server is the HTTP API server for odds queries and the dashboard.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer creates a Server with all routes registered and the middleware
// chain applied (CORS → rate limit → logging, outermost first).
func NewServer(cfg Config, handlers Handlers, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	mux.HandleFunc("GET /api/status", handlers.Status.GetStatus)

	mux.HandleFunc("GET /api/matches", handlers.Matches.ListMatches)
	mux.HandleFunc("GET /api/tournaments", handlers.Matches.ListTournaments)
	mux.HandleFunc("GET /api/players/{name}", handlers.Matches.GetPlayerMatches)

	mux.HandleFunc("GET /api/stats", handlers.Analysis.GetStats)
	mux.HandleFunc("GET /api/value-bets", handlers.Analysis.ListValueBets)
	mux.HandleFunc("GET /api/arbitrage", handlers.Analysis.ListArbitrage)

	mux.HandleFunc("GET /api/report", handlers.Report.GetReport)
	mux.HandleFunc("POST /api/scan/trigger", handlers.Scan.TriggerScan)

	mux.HandleFunc("GET /dashboard", handlers.Dashboard.Render)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
	})

	var h http.Handler = mux
	if cfg.RateLimiter != nil && cfg.RateLimitPerMin > 0 {
		h = middleware.RateLimit(cfg.RateLimiter, cfg.RateLimitPerMin, time.Minute)(h)
	}
	h = middleware.Logging(logger)(h)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("server: starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server: shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
