package models

import (
	"errors"
	"fmt"
)

// Базовые категории ошибок для сопоставления через errors.Is
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrPersistence = errors.New("persistence error")

	ErrUnknownType     = fmt.Errorf("%w: unknown equipment type", ErrValidation)
	ErrUnknownStrategy = fmt.Errorf("%w: unknown maintenance strategy", ErrValidation)
)

// ValidationError ошибка валидации входных данных
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError создает ошибку валидации для поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NotFoundError сущность с указанным ID не найдена
type NotFoundError struct {
	Entity string
	ID     string
}

// NewNotFoundError создает ошибку отсутствия сущности
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s не найден", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
