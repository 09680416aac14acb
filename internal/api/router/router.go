// Package router assembles the HTTP surface of the scheduling service.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/clinic360/platform/internal/http/handlers"
	httpmiddleware "github.com/clinic360/platform/internal/http/middleware"
	"github.com/clinic360/platform/internal/identity"
	"github.com/clinic360/platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *handlers.AppointmentsHandler
	ScheduleHandler     *handlers.ScheduleHandler
	DoctorsHandler      *handlers.DoctorsHandler
	MetricsHandler      http.Handler
	SessionSecret       string
	CORSAllowedOrigins  []string

	// RateLimitPerSecond caps authenticated traffic per client IP.
	// Zero disables the limiter.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints.
	r.Group(func(public chi.Router) {
		public.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Everything else requires a session.
	r.Group(func(authed chi.Router) {
		authed.Use(httpmiddleware.SessionAuth(cfg.SessionSecret))
		if cfg.RateLimitPerSecond > 0 {
			authed.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		authed.Post("/appointments", cfg.AppointmentsHandler.Create)
		authed.Get("/appointments", cfg.AppointmentsHandler.List)
		authed.Put("/appointments/{id}", cfg.AppointmentsHandler.UpdateStatus)

		authed.Get("/doctors", cfg.DoctorsHandler.List)

		authed.Get("/schedule", cfg.ScheduleHandler.List)
		authed.Get("/schedule/{doctorID}", cfg.ScheduleHandler.List)
		authed.With(httpmiddleware.RequireRole(identity.RoleDoctor)).
			Post("/schedule", cfg.ScheduleHandler.Create)
	})

	return r
}
