package guestbook

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/guestbook/internal/http/handlers/entry/create"
	"github.com/magabrotheeeer/guestbook/internal/http/handlers/entry/list"
	"github.com/magabrotheeeer/guestbook/internal/http/handlers/entry/read"
	"github.com/magabrotheeeer/guestbook/internal/http/handlers/entry/remove"
	"github.com/magabrotheeeer/guestbook/internal/http/handlers/health"
	"github.com/magabrotheeeer/guestbook/internal/http/middlewarectx"
)

// EntryService объединяет операции, которые обслуживают маршруты /entries.
type EntryService interface {
	create.Service
	read.Service
	list.Service
	remove.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, service EntryService, limiter *rate.Limiter, checks map[string]health.Pinger) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/entries", list.New(logger, service).ServeHTTP)
		r.Get("/entries/{id}", read.New(logger, service).ServeHTTP)
		r.Delete("/entries/{id}", remove.New(logger, service).ServeHTTP)

		// Запись ограничена по частоте
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Post("/entries", create.New(logger, service).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, checks).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
