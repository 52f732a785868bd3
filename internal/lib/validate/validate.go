// Package validate настраивает validator для входящих запросов гостевой книги.
package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/guestbook/internal/models"
)

// Дополнительные теги валидации.
const (
	TagNotBlank   = "notblank"
	TagMailFormat = "mailformat"
)

// New возвращает validator с зарегистрированными тегами notblank и mailformat.
func New() *validator.Validate {
	v := validator.New()

	// Ошибки регистрации возможны только при пустом теге или nil-функции.
	_ = v.RegisterValidation(TagNotBlank, notBlank)
	_ = v.RegisterValidation(TagMailFormat, mailFormat)

	return v
}

func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func mailFormat(fl validator.FieldLevel) bool {
	return models.ValidMail(fl.Field().String())
}

// FirstViolation переводит первое нарушение из ошибки validator в *models.ValidationError.
// Поля EntryRequest проверяются в порядке name, mail, text, поэтому результат совпадает
// с ошибкой models.NewEntry. Возвращает nil, если err не содержит нарушений.
func FirstViolation(err error) *models.ValidationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return nil
	}

	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch {
	case field == models.FieldName:
		return &models.ValidationError{Field: field, Err: models.ErrEmptyName}
	case field == models.FieldMail && fe.Tag() == TagMailFormat:
		return &models.ValidationError{Field: field, Err: models.ErrInvalidMailFormat}
	case field == models.FieldMail:
		return &models.ValidationError{Field: field, Err: models.ErrEmptyMail}
	case field == models.FieldText:
		return &models.ValidationError{Field: field, Err: models.ErrEmptyText}
	default:
		return &models.ValidationError{Field: field, Err: models.ErrMalformedEntry}
	}
}
