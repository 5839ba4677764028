package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	httpmiddleware "github.com/clinicware/agendabot/internal/http/middleware"
	"github.com/clinicware/agendabot/internal/messaging"
	"github.com/clinicware/agendabot/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger               *logging.Logger
	Messaging            *messaging.Handler
	MetricsHandler       http.Handler
	WebhookRatePerMinute int
}

// New creates the Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", cfg.Messaging.HealthCheck)

	r.Group(func(hook chi.Router) {
		if cfg.WebhookRatePerMinute > 0 {
			hook.Use(httprate.LimitByIP(cfg.WebhookRatePerMinute, time.Minute))
		}
		hook.Post("/whatsapp", cfg.Messaging.Webhook)
	})

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
