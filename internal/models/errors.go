package models

import "errors"

// Имена полей записи, используются в ошибках валидации.
const (
	FieldName = "name"
	FieldMail = "mail"
	FieldText = "text"
)

// Ошибки валидации входных данных.
var (
	ErrEmptyName         = errors.New("Name must not be null or empty!")
	ErrEmptyMail         = errors.New("Mail must not be null or empty!")
	ErrInvalidMailFormat = errors.New("Mail must have a valid format!")
	ErrEmptyText         = errors.New("Text must not be null or empty!")
)

// Ошибки идентификатора и восстановления записей из хранилища.
var (
	ErrIDAlreadyAssigned = errors.New("entry id is already assigned")
	ErrInvalidID         = errors.New("invalid entry id")
	ErrMalformedEntry    = errors.New("malformed stored entry")
)

// ValidationError ошибка проверки пользовательских данных.
// Field указывает поле, Err одну из ошибок ErrEmpty*/ErrInvalidMailFormat.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidation сообщает, является ли err ошибкой валидации записи.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
