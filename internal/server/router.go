// Package server assembles the HTTP surface: routing, middleware and the
// operational endpoints.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"growify-relay/internal/common/config"
	apperrors "growify-relay/internal/common/errors"
	"growify-relay/internal/common/logger"
	"growify-relay/internal/common/observability"
	"growify-relay/pkg/registry"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Options struct {
	Config  *config.Config
	Catalog *registry.Catalog
	// Handlers maps catalog endpoint ids to their handlers.
	Handlers      map[string]http.Handler
	Observability *observability.Observability
	// Ready checks backing services for /ready. Nil means always ready.
	Ready  func(ctx context.Context) error
	Logger logger.Logger
}

func NewRouter(opts Options) (http.Handler, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = registry.Default()
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("endpoint catalog: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}

	cfg := opts.Config
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(log))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.Server.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			if err := opts.Ready(r.Context()); err != nil {
				apperrors.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "not ready",
					"error":  err.Error(),
				})
				return
			}
		}
		apperrors.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	listing := catalog.WithEnabled(func(id string) bool { return config.IsEndpointEnabled(cfg, id) })
	r.Get("/api/endpoints", func(w http.ResponseWriter, r *http.Request) {
		apperrors.WriteJSON(w, http.StatusOK, listing)
	})

	var limiter *RateLimiter
	if cfg.Server.RateLimit.Enabled {
		limiter = NewRateLimiter(cfg.Server.RateLimit.RequestsPerMinute, cfg.Server.RateLimit.Burst)
	}

	for _, ep := range catalog.Endpoints {
		handler, ok := opts.Handlers[ep.ID]
		if !ok || handler == nil {
			return nil, fmt.Errorf("no handler registered for endpoint %s", ep.ID)
		}

		chain := []func(http.Handler) http.Handler{Observe(opts.Observability, ep.ID)}
		if cfg.Server.MaxBodyBytes > 0 {
			chain = append(chain, middleware.RequestSize(cfg.Server.MaxBodyBytes))
		}

		for _, method := range ep.Methods {
			mws := chain
			if method == http.MethodPost && ep.Public && limiter != nil {
				mws = append(append([]func(http.Handler) http.Handler{}, chain...), limiter.Middleware)
			}
			r.With(mws...).Method(method, ep.Path, handler)
		}

		log.Info("Endpoint mounted", map[string]interface{}{
			"endpoint": ep.ID,
			"path":     ep.Path,
			"methods":  ep.Methods,
			"enabled":  config.IsEndpointEnabled(cfg, ep.ID),
		})
	}

	return r, nil
}
