package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
)

// maxInFlight ограничивает число одновременно обрабатываемых сообщений.
const maxInFlight = 10

// Handler обрабатывает тело сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// Consumer запущенный потребитель очереди.
type Consumer struct {
	wg sync.WaitGroup
}

// Wait блокируется, пока цикл чтения не завершится и все начатые обработчики не
// подтвердят или не вернут свои сообщения. Канал можно закрывать только после Wait.
func (c *Consumer) Wait() {
	c.wg.Wait()
}

// ConsumeMessages запускает потребителя очереди queueName и возвращается сразу.
// Успешно обработанные сообщения подтверждаются, остальные возвращаются в очередь.
// Потребление прекращается при отмене ctx или закрытии канала.
func ConsumeMessages(ctx context.Context, ch *amqp.Channel, queueName string, log *slog.Logger, handler Handler) (*Consumer, error) {
	const op = "rabbitmq.ConsumeMessages"

	if err := ch.Qos(maxInFlight, 0, false); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	deliveries, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(slog.String("op", op), slog.String("queue", queueName))
	return consume(ctx, deliveries, log, handler), nil
}

func consume(ctx context.Context, deliveries <-chan amqp.Delivery, log *slog.Logger, handler Handler) *Consumer {
	c := &Consumer{}
	sem := make(chan struct{}, maxInFlight)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case d, ok := <-deliveries:
				if !ok {
					log.Info("delivery channel closed")
					return
				}
				sem <- struct{}{}
				c.wg.Add(1)
				go func(d amqp.Delivery) {
					defer c.wg.Done()
					defer func() { <-sem }()
					if err := handler(ctx, d.Body); err != nil {
						log.Warn("failed to handle message, requeue", sl.Err(err))
						if nackErr := d.Nack(false, true); nackErr != nil {
							log.Error("failed to nack message", sl.Err(nackErr))
						}
						return
					}
					if ackErr := d.Ack(false); ackErr != nil {
						log.Error("failed to ack message", sl.Err(ackErr))
					}
				}(d)
			case <-ctx.Done():
				return
			}
		}
	}()
	return c
}
