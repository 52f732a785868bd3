// Package guestbook содержит бизнес-логику гостевой книги: создание записей
// через models.NewEntry, сохранение, кеширование и публикацию событий.
package guestbook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/guestbook/internal/lib/sl"
	"github.com/magabrotheeeer/guestbook/internal/metrics"
	"github.com/magabrotheeeer/guestbook/internal/models"
)

// Ограничения выборки последних записей.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Repository определяет методы хранилища записей.
type Repository interface {
	// CreateEntry сохраняет запись и назначает ей ID.
	CreateEntry(ctx context.Context, entry *models.Entry) (int64, error)
	// ReadEntry возвращает запись по ID.
	ReadEntry(ctx context.Context, id int64) (*models.Entry, error)
	// ListEntries возвращает последние записи, не больше limit.
	ListEntries(ctx context.Context, limit int) ([]*models.Entry, error)
	// CountEntries возвращает общее количество записей.
	CountEntries(ctx context.Context) (int, error)
	// RemoveEntry удаляет запись и возвращает количество удалённых строк.
	RemoveEntry(ctx context.Context, id int64) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Publisher публикует события о новых записях.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// EntryCreated событие о сохранённой записи.
type EntryCreated struct {
	EventID   string    `json:"event_id"`
	EntryID   int64     `json:"entry_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Listing последние записи и общее количество записей.
type Listing struct {
	Entries []*models.Entry `json:"entries"`
	Total   int             `json:"total"`
}

// Service реализует бизнес-логику гостевой книги.
type Service struct {
	repo      Repository
	cache     Cache
	publisher Publisher
	ttl       time.Duration
	log       *slog.Logger

	// stale хранит ID удалённых записей, которые не удалось убрать из кеша.
	mu    sync.Mutex
	stale map[int64]struct{}
}

// NewService создает Service. publisher может быть nil, тогда события не публикуются.
func NewService(repo Repository, cache Cache, publisher Publisher, ttl time.Duration, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		ttl:       ttl,
		log:       log,
		stale:     make(map[int64]struct{}),
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("entry:%d", id)
}

// Create проверяет данные, сохраняет запись, кладёт её в кеш и публикует EntryCreated.
// Ошибки кеша и публикации логируются и не прерывают создание.
func (s *Service) Create(ctx context.Context, req models.EntryRequest) (*models.Entry, error) {
	const op = "services.guestbook.Create"

	entry, err := models.NewEntry(req.Name, req.Mail, req.Text)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			metrics.RecordValidationFailure(verr.Field)
		}
		return nil, err
	}

	id, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordEntryCreated()
	s.log.Info("created new entry", slog.Int64("id", id))

	// TIMESTAMPTZ хранит микросекунды, кеш и ответ должны совпадать с хранилищем.
	stored, err := models.RehydrateEntry(id, entry.Name(), entry.Mail(), entry.Text(), entry.CreatedAt().Truncate(time.Microsecond))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := cacheKey(id)
	if err := s.cache.Set(ctx, key, stored, s.ttl); err != nil {
		metrics.RecordSideEffectFailure(metrics.KindCacheSet)
		s.log.Warn("failed to cache entry", slog.String("key", key), sl.Err(err))
	}

	if s.publisher != nil {
		event := EntryCreated{
			EventID:   uuid.NewString(),
			EntryID:   id,
			Name:      stored.Name(),
			CreatedAt: stored.CreatedAt(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			metrics.RecordSideEffectFailure(metrics.KindPublish)
			s.log.Warn("failed to publish entry created event", slog.Int64("id", id), sl.Err(err))
		}
	}

	return stored, nil
}

// Read возвращает запись по ID, сначала из кеша, затем из хранилища.
func (s *Service) Read(ctx context.Context, id int64) (*models.Entry, error) {
	const op = "services.guestbook.Read"

	key := cacheKey(id)
	if s.isStale(id) {
		s.evict(ctx, id)
	}
	// Пока кеш не очищен после удаления, читаем только из хранилища.
	bypass := s.isStale(id)

	if !bypass {
		var cached models.Entry
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			metrics.RecordSideEffectFailure(metrics.KindCacheGet)
			s.log.Warn("failed to read entry from cache", slog.String("key", key), sl.Err(err))
		}
		metrics.RecordCacheLookup(found)
		if found {
			return &cached, nil
		}
	}

	entry, err := s.repo.ReadEntry(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if bypass {
		return entry, nil
	}

	if err := s.cache.Set(ctx, key, entry, s.ttl); err != nil {
		metrics.RecordSideEffectFailure(metrics.KindCacheSet)
		s.log.Warn("failed to cache entry", slog.String("key", key), sl.Err(err))
	}
	return entry, nil
}

// List возвращает последние записи. limit вне диапазона [1, MaxListLimit] приводится к границам,
// нулевой или отрицательный заменяется на DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) (Listing, error) {
	const op = "services.guestbook.List"

	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	entries, err := s.repo.ListEntries(ctx, limit)
	if err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}
	total, err := s.repo.CountEntries(ctx)
	if err != nil {
		return Listing{}, fmt.Errorf("%s: %w", op, err)
	}

	return Listing{Entries: entries, Total: total}, nil
}

// Remove удаляет запись по ID, затем инвалидирует кеш.
// Если инвалидировать не удалось, Read обходит кеш для этого ID до успешной очистки.
func (s *Service) Remove(ctx context.Context, id int64) (int, error) {
	const op = "services.guestbook.Remove"

	count, err := s.repo.RemoveEntry(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	metrics.RecordEntriesRemoved(count)

	s.evict(ctx, id)

	return count, nil
}

func (s *Service) evict(ctx context.Context, id int64) {
	key := cacheKey(id)
	err := s.cache.Invalidate(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		metrics.RecordSideEffectFailure(metrics.KindCacheInvalidate)
		s.log.Warn("failed to remove from cache", slog.String("key", key), sl.Err(err))
		s.stale[id] = struct{}{}
		return
	}
	delete(s.stale, id)
}

func (s *Service) isStale(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.stale[id]
	return ok
}
