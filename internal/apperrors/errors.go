// Package apperrors defines the error taxonomy shared by the gallery services
// and the HTTP layer. Each AppError carries the status code it maps to.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the category of an AppError.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeTooLarge     ErrorType = "too_large"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeDecode       ErrorType = "decode"
	ErrorTypeCompositing  ErrorType = "compositing"
	ErrorTypePersistence  ErrorType = "persistence"
	ErrorTypeInternal     ErrorType = "internal"
)

// AppError is a categorized application error.
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{Type: t, Message: message, StatusCode: status, Cause: cause}
}

// NewValidationError reports bad client input: mime type, missing field,
// unknown quality tier.
func NewValidationError(message string, cause error) *AppError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewTooLargeError reports an upload over the configured size cap.
func NewTooLargeError(message string, cause error) *AppError {
	return newError(ErrorTypeTooLarge, http.StatusRequestEntityTooLarge, message, cause)
}

func NewUnauthorizedError(message string, cause error) *AppError {
	return newError(ErrorTypeUnauthorized, http.StatusUnauthorized, message, cause)
}

func NewNotFoundError(message string, cause error) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewDecodeError reports bytes that are not a recognized raster format.
func NewDecodeError(message string, cause error) *AppError {
	return newError(ErrorTypeDecode, http.StatusInternalServerError, message, cause)
}

// NewCompositingError reports an overlay rendering failure. It is recovered
// by the caller and never written to a response.
func NewCompositingError(message string, cause error) *AppError {
	return newError(ErrorTypeCompositing, http.StatusInternalServerError, message, cause)
}

// NewPersistenceError reports a blob store or database failure.
func NewPersistenceError(message string, cause error) *AppError {
	return newError(ErrorTypePersistence, http.StatusInternalServerError, message, cause)
}

func NewInternalError(message string, cause error) *AppError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// IsType reports whether any AppError in err's chain has the given type.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// StatusCode extracts the HTTP status of err, defaulting to 500.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// Message returns the client-facing message of err. Non-AppErrors get a
// generic message so internal details do not leak.
func Message(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
