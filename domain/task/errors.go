package task

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation indicates a missing or malformed required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the operation targeted a nonexistent task.
	ErrNotFound = errors.New("task not found")
)

// Error codes carried across module and HTTP boundaries.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

// Code classifies err into one of the error codes.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}

// FromCode rebuilds an error from a code and message, wrapping the matching sentinel.
func FromCode(code, message string) error {
	switch code {
	case CodeValidation:
		return fmt.Errorf("%w: %s", ErrValidation, strings.TrimPrefix(message, ErrValidation.Error()+": "))
	case CodeNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, strings.TrimPrefix(message, ErrNotFound.Error()+": "))
	default:
		return errors.New(message)
	}
}

// NotFound returns ErrNotFound annotated with the task id.
func NotFound(id int64) error {
	return fmt.Errorf("%w: %d", ErrNotFound, id)
}
