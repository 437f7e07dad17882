package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lakeflow/internal/config"
	"lakeflow/internal/middleware"
)

// NewRouter builds the chi router with the standard middleware stack and all
// API routes mounted.
func NewRouter(h *Handler, cfg *config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	}))

	r.Get("/healthz", h.HandleHealthz)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/ingest/events", h.HandleIngestEvent)
		r.Post("/load", h.HandleLoad)
		r.Post("/transform/runs", h.HandleTransformRun)
	})
	return r
}
