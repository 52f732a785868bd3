package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/magabrotheeeer/guestbook/internal/models"
)

// CreateEntry вставляет новую запись и назначает ей выданный базой ID.
func (s *Storage) CreateEntry(ctx context.Context, entry *models.Entry) (int64, error) {
	const op = "storage.CreateEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	if entry.ID().IsPersisted() {
		return 0, fmt.Errorf("%s: %w: %s", op, ErrAlreadyPersisted, entry.ID())
	}

	query := `INSERT INTO entries (name, mail, text, created_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`
	var newID int64
	err := s.DB.QueryRowContext(ctx, query,
		entry.Name(), entry.Mail(), entry.Text(), entry.CreatedAt()).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := entry.AssignID(newID); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// ReadEntry возвращает запись по её ID.
func (s *Storage) ReadEntry(ctx context.Context, id int64) (*models.Entry, error) {
	const op = "storage.ReadEntry"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, mail, text, created_at
			  FROM entries WHERE id = $1`
	entry, err := scanEntry(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return entry, nil
}

// ListEntries возвращает последние записи, не больше limit, от новых к старым.
func (s *Storage) ListEntries(ctx context.Context, limit int) ([]*models.Entry, error) {
	const op = "storage.ListEntries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, mail, text, created_at
			  FROM entries
			  ORDER BY created_at DESC, id DESC
			  LIMIT $1`
	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = rows.Close() }()

	result := []*models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// CountEntries возвращает общее количество записей.
func (s *Storage) CountEntries(ctx context.Context) (int, error) {
	const op = "storage.CountEntries"

	var count int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}

// RemoveEntry удаляет запись по ID и возвращает количество удалённых строк.
func (s *Storage) RemoveEntry(ctx context.Context, id int64) (int, error) {
	const op = "storage.RemoveEntry"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	result, err := s.DB.ExecContext(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		id        int64
		name      string
		mail      string
		text      string
		createdAt time.Time
	)
	if err := row.Scan(&id, &name, &mail, &text, &createdAt); err != nil {
		return nil, err
	}
	return models.RehydrateEntry(id, name, mail, text, createdAt)
}
