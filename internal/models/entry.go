// Package models содержит доменную модель записи гостевой книги.
//
// Entry создаётся только через NewEntry, который проверяет обязательные поля
// и формат почты. После создания имя, почта, текст и время создания не
// меняются. Идентификатор назначает хранилище, ровно один раз, через AssignID.
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntryID идентификатор записи в хранилище. Нулевое значение означает,
// что запись ещё не сохранена.
type EntryID struct {
	value int64
	set   bool
}

// Value возвращает идентификатор и признак того, что он назначен.
func (id EntryID) Value() (int64, bool) {
	return id.value, id.set
}

// IsPersisted сообщает, сохранена ли запись.
func (id EntryID) IsPersisted() bool {
	return id.set
}

func (id EntryID) String() string {
	if !id.set {
		return "<unsaved>"
	}
	return strconv.FormatInt(id.value, 10)
}

// Entry одна запись гостевой книги.
type Entry struct {
	id        EntryID
	name      string
	mail      string
	text      string
	createdAt time.Time
}

// NewEntry проверяет входные данные и создаёт новую запись с текущим временем.
//
// Поля проверяются в порядке: имя, непустая почта, формат почты, текст.
// Возвращается первая найденная ошибка (*ValidationError). Значения
// сохраняются как есть, без обрезки пробелов.
func NewEntry(name, mail, text string) (*Entry, error) {
	if !hasText(name) {
		return nil, &ValidationError{Field: FieldName, Err: ErrEmptyName}
	}
	if !hasText(mail) {
		return nil, &ValidationError{Field: FieldMail, Err: ErrEmptyMail}
	}
	if !ValidMail(mail) {
		return nil, &ValidationError{Field: FieldMail, Err: ErrInvalidMailFormat}
	}
	if !hasText(text) {
		return nil, &ValidationError{Field: FieldText, Err: ErrEmptyText}
	}

	return &Entry{
		name:      name,
		mail:      mail,
		text:      text,
		createdAt: time.Now(),
	}, nil
}

// RehydrateEntry восстанавливает сохранённую запись из значений хранилища.
// Формат почты не проверяется повторно: данные уже прошли NewEntry при записи.
// Используется только слоем хранилища.
func RehydrateEntry(id int64, name, mail, text string, createdAt time.Time) (*Entry, error) {
	const op = "models.RehydrateEntry"

	if id <= 0 {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidID, id)
	}
	switch {
	case !hasText(name):
		return nil, fmt.Errorf("%s: %w: empty name in entry %d", op, ErrMalformedEntry, id)
	case !hasText(mail):
		return nil, fmt.Errorf("%s: %w: empty mail in entry %d", op, ErrMalformedEntry, id)
	case !hasText(text):
		return nil, fmt.Errorf("%s: %w: empty text in entry %d", op, ErrMalformedEntry, id)
	case createdAt.IsZero():
		return nil, fmt.Errorf("%s: %w: missing creation time in entry %d", op, ErrMalformedEntry, id)
	}

	return &Entry{
		id:        EntryID{value: id, set: true},
		name:      name,
		mail:      mail,
		text:      text,
		createdAt: createdAt,
	}, nil
}

// AssignID назначает идентификатор, выданный хранилищем. Повторный вызов
// возвращает ErrIDAlreadyAssigned и не меняет запись.
func (e *Entry) AssignID(id int64) error {
	if e.id.set {
		return ErrIDAlreadyAssigned
	}
	if id <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidID, id)
	}
	e.id = EntryID{value: id, set: true}
	return nil
}

// ID возвращает идентификатор записи.
func (e *Entry) ID() EntryID { return e.id }

// Name возвращает имя автора.
func (e *Entry) Name() string { return e.name }

// Mail возвращает почту автора.
func (e *Entry) Mail() string { return e.mail }

// Text возвращает текст сообщения.
func (e *Entry) Text() string { return e.text }

// CreatedAt возвращает время создания записи.
func (e *Entry) CreatedAt() time.Time { return e.createdAt }

func hasText(s string) bool {
	return strings.TrimSpace(s) != ""
}

// entryJSON формат записи в JSON-ответах и в кеше.
type entryJSON struct {
	ID        *int64    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Mail      string    `json:"mail"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// MarshalJSON реализует json.Marshaler.
func (e *Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Name:      e.name,
		Mail:      e.mail,
		Text:      e.text,
		CreatedAt: e.createdAt,
	}
	if id, ok := e.id.Value(); ok {
		out.ID = &id
	}
	return json.Marshal(out)
}

// UnmarshalJSON реализует json.Unmarshaler. Принимаются только сохранённые
// записи, восстановление идёт через RehydrateEntry.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var in entryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.ID == nil {
		return fmt.Errorf("models.Entry.UnmarshalJSON: %w: id is missing", ErrInvalidID)
	}
	restored, err := RehydrateEntry(*in.ID, in.Name, in.Mail, in.Text, in.CreatedAt)
	if err != nil {
		return err
	}
	*e = *restored
	return nil
}

// EntryRequest используется для приёма данных из JSON-запроса
// перед созданием записи через NewEntry.
type EntryRequest struct {
	Name string `json:"name" validate:"notblank"`            // Имя автора
	Mail string `json:"mail" validate:"notblank,mailformat"` // Почта автора
	Text string `json:"text" validate:"notblank"`            // Текст сообщения
}
