// Package errors provides structured errors that carry a category, a client-safe
// message and loggable context, and map onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of error for metrics and response formatting.
type ErrorType string

const (
	TypeValidation  ErrorType = "validation"   // 400
	TypeNotFound    ErrorType = "not_found"    // 404
	TypeRateLimited ErrorType = "rate_limited" // 429
	TypeInternal    ErrorType = "internal"     // 500
	TypeExternal    ErrorType = "external"     // 502
	TypeUnavailable ErrorType = "unavailable"  // 503
)

// Error represents a structured error with type, message, and context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details string
	Context map[string]any
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the HTTP status code for this error type.
func (e *Error) HTTPStatus() int {
	switch e.Type {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeRateLimited:
		return http.StatusTooManyRequests
	case TypeExternal:
		return http.StatusBadGateway
	case TypeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func newError(t ErrorType, message string, cause error) *Error {
	return &Error{
		Type:    t,
		Message: message,
		Cause:   cause,
		Context: make(map[string]any),
	}
}

func ValidationError(message string) *Error { return newError(TypeValidation, message, nil) }

func NotFoundError(message string) *Error { return newError(TypeNotFound, message, nil) }

func RateLimitedError(message string) *Error { return newError(TypeRateLimited, message, nil) }

func InternalError(message string, cause error) *Error {
	return newError(TypeInternal, message, cause)
}

// ExternalError reports a failing upstream such as the translation provider.
func ExternalError(message string, cause error) *Error {
	return newError(TypeExternal, message, cause)
}

func UnavailableError(message string, cause error) *Error {
	return newError(TypeUnavailable, message, cause)
}

// WithField adds a context field to the error (chainable).
func (e *Error) WithField(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// WithDetails attaches a client-visible detail line, typically the upstream
// failure message (chainable).
func (e *Error) WithDetails(details string) *Error {
	e.Details = details
	return e
}

// ErrorResponse represents the JSON structure sent to clients.
type ErrorResponse struct {
	Error   string         `json:"error"`
	Type    ErrorType      `json:"type"`
	Details string         `json:"details,omitempty"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Type:    e.Type,
		Details: e.Details,
		Context: e.Context,
	}
}

// AsStructuredError converts any error into a structured Error.
// Unstructured errors become internal errors.
func AsStructuredError(err error) *Error {
	if err == nil {
		return nil
	}

	var structuredErr *Error
	if errors.As(err, &structuredErr) {
		return structuredErr
	}

	return InternalError("internal server error", err)
}
