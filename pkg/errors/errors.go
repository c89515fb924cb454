package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrSourceNotFound      = errors.New("source not found")
	ErrParse               = errors.New("parse failure")
	ErrPersistence         = errors.New("persistence failure")
	ErrOutputUnavailable   = errors.New("output destination unavailable")
	ErrIndexLocked         = errors.New("index run already in progress")
	ErrInvalidInput        = errors.New("invalid input")
	ErrExpanderUnavailable = errors.New("synonym expander unavailable")
	ErrInternal            = errors.New("internal error")
	ErrTimeout             = errors.New("operation timed out")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrSourceNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrParse):
		return http.StatusBadRequest
	case errors.Is(err, ErrIndexLocked):
		return http.StatusConflict
	case errors.Is(err, ErrPersistence), errors.Is(err, ErrExpanderUnavailable), errors.Is(err, ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
