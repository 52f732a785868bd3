// Package notifier отправляет владельцу гостевой книги письма о новых записях.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/lib/smtp"
	"github.com/magabrotheeeer/guestbook/internal/services/guestbook"
)

// Service формирует и отправляет уведомления по событиям EntryCreated.
type Service struct {
	transport smtp.TransportInterface
	to        string
	log       *slog.Logger
}

// NewService создает Service, отправляющий письма на адрес to.
func NewService(transport smtp.TransportInterface, to string, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		to:        to,
		log:       log,
	}
}

// NotifyEntryCreated разбирает событие и отправляет письмо.
// Нечитаемое событие отбрасывается без ошибки, чтобы не возвращаться в очередь.
func (s *Service) NotifyEntryCreated(_ context.Context, body []byte) error {
	const op = "services.notifier.NotifyEntryCreated"
	log := s.log.With(slog.String("op", op))

	var event guestbook.EntryCreated
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal event, dropping", sl.Err(err))
		return nil
	}
	if event.EntryID <= 0 {
		log.Error("event without entry id, dropping", slog.String("event_id", event.EventID))
		return nil
	}

	subject := fmt.Sprintf("Новая запись #%d в гостевой книге", event.EntryID)
	bodyText := fmt.Sprintf("Здравствуйте!\n\n%s оставил(а) запись #%d (%s).",
		event.Name, event.EntryID, event.CreatedAt.UTC().Format(time.RFC3339))

	if err := s.sendEmail([]string{s.to}, subject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("notification sent", slog.Int64("entry_id", event.EntryID), slog.String("event_id", event.EventID))
	return nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("failed to close smtp client", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from %s: %w", from, err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return client.Quit()
}
