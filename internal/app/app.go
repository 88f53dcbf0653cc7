// Package app provides application-level wiring for the tracing service:
// it connects the configured table source to the service layer, builds the
// HTTP surface, and owns the optional reindex scheduler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"beantrace/internal/api"
	"beantrace/internal/config"
	"beantrace/internal/domain"
	"beantrace/internal/middleware"
	"beantrace/internal/service/tracing"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// the loaded config, the table source, and the logger.
type Deps struct {
	Cfg    *config.Config
	Source domain.TableSource
	Logger *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Tracing   *tracing.Service
	Handler   *api.Handler
	Router    http.Handler
	Scheduler *Scheduler // nil when no reindex cron is configured
}

// New wires the tracing service, HTTP handler, and router from the
// provided deps. When the config asks for it, the first index snapshot is
// built before returning, so the server never answers from an empty index.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// === Tracing service ===
	svc := tracing.NewService(deps.Source, cfg.MaxTraceDepth, cfg.MaxBatchLots, logger)

	// === First snapshot ===
	if cfg.ReindexOnStart {
		stats, err := svc.Reindex(ctx)
		if err != nil {
			return nil, fmt.Errorf("initial reindex: %w", err)
		}
		logger.Info("initial snapshot built",
			"records", stats.Records,
			"lots", stats.Lots,
			"contracts", stats.Contracts,
		)
	}

	// === Bearer auth ===
	var validator middleware.JWTValidator
	if cfg.AuthEnabled() {
		v, err := middleware.NewHS256Validator(cfg.JWTSecret)
		if err != nil {
			return nil, fmt.Errorf("auth setup: %w", err)
		}
		validator = v
	}

	// === HTTP surface ===
	handler := api.NewHandler(svc, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimitRPS,
			Burst:             cfg.RateLimitBurst,
		},
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Validator:      validator,
	})

	// === Reindex scheduler ===
	var sched *Scheduler
	if cfg.ReindexCron != "" {
		s, err := NewScheduler(svc, cfg.ReindexCron, logger)
		if err != nil {
			return nil, err
		}
		sched = s
	}

	return &App{
		Tracing:   svc,
		Handler:   handler,
		Router:    router,
		Scheduler: sched,
	}, nil
}
