package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"beantrace/internal/middleware"
)

// RouterConfig controls the middleware stack wrapped around the handlers.
type RouterConfig struct {
	RateLimit      middleware.RateLimitConfig
	AllowedOrigins []string
	// Validator guards the /v1 routes with bearer auth when non-nil.
	// /healthz stays public either way.
	Validator middleware.JWTValidator
}

// NewRouter assembles the chi router: request IDs first so every later
// stage can tag its output, then rate limiting, CORS, and finally auth
// on the versioned routes.
func NewRouter(h *Handler, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RateLimiter(cfg.RateLimit))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:         300,
	}))

	r.Get("/healthz", h.Healthz)

	r.Route("/v1", func(r chi.Router) {
		if cfg.Validator != nil {
			r.Use(middleware.Auth(cfg.Validator))
		}
		r.Post("/trace", h.Trace)
		r.Post("/trace/batch", h.TraceBatch)
		r.Get("/lots/{lot}/statistics", h.LotStatistics)
		r.Get("/contracts", h.ListContracts)
		r.Get("/contracts/{id}/lots", h.ContractLots)
		r.Get("/contracts/{id}/report", h.ContractReport)
		r.Get("/tables", h.ListTables)
		r.Get("/index/stats", h.IndexStats)
		r.Post("/reindex", h.Reindex)
	})

	return r
}
