// Package guestbook собирает HTTP-приложение гостевой книги: хранилище, кеш,
// публикацию событий, сервис и маршруты.
package guestbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/guestbook/internal/cache"
	"github.com/magabrotheeeer/guestbook/internal/config"
	"github.com/magabrotheeeer/guestbook/internal/http/handlers/health"
	"github.com/magabrotheeeer/guestbook/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/migrations"
	gbservice "github.com/magabrotheeeer/guestbook/internal/services/guestbook"
	"github.com/magabrotheeeer/guestbook/internal/storage/repository"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	server    *http.Server
	logger    *slog.Logger
	db        *repository.Storage
	cache     *cache.Cache
	amqpConn  *amqp.Connection
	publisher *rabbitmq.Publisher
}

// New подключает зависимости, применяет миграции и настраивает HTTP-сервер.
// Пустой cfg.RabbitMQ.URL отключает публикацию событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.guestbook.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = repository.CheckDatabaseReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger: logger,
		db:     db,
		cache:  cacheRedis,
	}

	var publisher gbservice.Publisher
	if cfg.RabbitMQ.URL != "" {
		if err := app.connectBroker(cfg.RabbitMQ); err != nil {
			app.closeResources()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = app.publisher
	} else {
		logger.Info("rabbitmq url is empty, entry events are not published")
	}

	service := gbservice.NewService(db, cacheRedis, publisher, cfg.EntryTTL, logger)

	router := chi.NewRouter()
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	RegisterRoutes(router, logger, service, limiter, map[string]health.Pinger{
		"postgres": db,
		"redis":    cacheRedis,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

func (a *App) connectBroker(cfg config.RabbitMQ) error {
	conn, err := rabbitmq.Connect(cfg.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return err
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, []rabbitmq.QueueConfig{
		{QueueName: cfg.Queue, RoutingKey: cfg.RoutingKey},
	})
	if err != nil {
		_ = conn.Close()
		return err
	}

	a.amqpConn = conn
	a.publisher = rabbitmq.NewPublisher(ch, cfg.Exchange, cfg.RoutingKey)
	a.logger.Info("connected to rabbitmq", slog.String("exchange", cfg.Exchange))
	return nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.closeResources()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.closeResources()
		return err
	}
}

func (a *App) closeResources() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis client", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
