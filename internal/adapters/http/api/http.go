// Package api wires the bot's HTTP surface: liveness, metrics, stats and
// the Telegram webhook.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// WebhookPath is where Telegram pushes updates in webhook mode.
const WebhookPath = "/telegram/webhook"

// Server wires HTTP routes for the bot.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	webhook       http.Handler
}

// Option configures the Server.
type Option func(*Server)

// WithWebhook mounts h at WebhookPath.
func WithWebhook(h http.Handler) Option {
	return func(s *Server) { s.webhook = h }
}

// NewServer creates a new API server with all handlers.
func NewServer(service string, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler: NewHealthHandler(service),
		statsHandler:  NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(MetricsMiddleware)

	r.Get("/", s.healthHandler.HandleRoot)
	r.Get("/healthz", s.healthHandler.HandleHealth)
	r.Get("/health", s.healthHandler.HandleHealth)
	r.Get("/stats", s.statsHandler.HandleStats)
	r.Method(http.MethodGet, "/metrics", MetricsHandler())
	if s.webhook != nil {
		r.Method(http.MethodPost, WebhookPath, s.webhook)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	return r
}
