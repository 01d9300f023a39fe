package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloud-ru/finplan-go/internal/apierrors"
	"github.com/cloud-ru/finplan-go/internal/config"
	"github.com/cloud-ru/finplan-go/internal/storage"
	"github.com/cloud-ru/finplan-go/internal/tools"
)

// NewRouter собирает HTTP API сервиса
func NewRouter(cfg *config.Config, registry *tools.Registry, store storage.Store, logger *slog.Logger) http.Handler {
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(StructuredLogger(logger))
	r.Use(Recoverer(logger))
	r.Use(Metrics)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]interface{}{
			"status": "ok",
			"tools":  len(registry.List()),
		})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	limiter := NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, logger)
	calc := NewCalculationHandler(registry, store, errorHandler, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Use(middleware.Timeout(cfg.RequestTimeout))
		r.Use(render.SetContentType(render.ContentTypeJSON))
		calc.RegisterRoutes(r)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleError(w, r, apierrors.NotFoundError("route"))
	})

	return r
}

// NewServer создает http.Server с таймаутами из конфигурации
func NewServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
}
