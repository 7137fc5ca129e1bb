// Package router wires HTTP routes for the API process.
package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mawidhq/clinic-bot/internal/whatsapp"
	"github.com/mawidhq/clinic-bot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger         *logging.Logger
	WebhookHandler *whatsapp.Handler
	MetricsHandler http.Handler
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/webhook/whatsapp", func(r chi.Router) {
		r.Get("/", cfg.WebhookHandler.Verify)
		r.Post("/", cfg.WebhookHandler.Receive)
	})

	return r
}
