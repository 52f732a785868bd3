// Package notifier собирает фоновый процесс, который читает события о новых
// записях из RabbitMQ и отправляет письма владельцу книги.
package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/guestbook/internal/config"
	"github.com/magabrotheeeer/guestbook/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/lib/smtp"
	"github.com/magabrotheeeer/guestbook/internal/models"
	notifierservice "github.com/magabrotheeeer/guestbook/internal/services/notifier"
)

// Ошибки конфигурации уведомлений.
var (
	ErrNoBroker      = errors.New("rabbitmq url is not set")
	ErrBadNotifyMail = errors.New("smtp notify_mail must be a valid mail")
)

type App struct {
	conn    *amqp.Connection
	ch      *amqp.Channel
	queue   string
	service *notifierservice.Service
	logger  *slog.Logger
}

// Validate проверяет, что конфигурации достаточно для запуска уведомлений.
func Validate(cfg *config.Config) error {
	if cfg.RabbitMQ.URL == "" {
		return ErrNoBroker
	}
	if !models.ValidMail(cfg.NotifyMail) {
		return ErrBadNotifyMail
	}
	return nil
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.Retries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, []rabbitmq.QueueConfig{
		{QueueName: cfg.Queue, RoutingKey: cfg.RoutingKey},
	})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:    conn,
		ch:      ch,
		queue:   cfg.Queue,
		service: notifierservice.NewService(transport, cfg.NotifyMail, logger),
		logger:  logger,
	}, nil
}

// Run потребляет события до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	consumer, err := rabbitmq.ConsumeMessages(ctx, a.ch, a.queue, a.logger, a.service.NotifyEntryCreated)
	if err != nil {
		a.logger.Error("failed to start consumer", slog.String("queue", a.queue), sl.Err(err))
		return err
	}
	a.logger.Info("notifier is consuming", slog.String("queue", a.queue))

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")
	consumer.Wait()

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	return nil
}
