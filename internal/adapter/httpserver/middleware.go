package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/lingobridge/internal/platform/correlation"
	apperrors "github.com/pscheid92/lingobridge/internal/platform/errors"
)

// correlationMiddleware tags the request context with the caller's
// X-Request-ID (or a fresh ID) and echoes it back.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.FromHeader(c.Request().Header.Get(correlation.HeaderName))
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set(correlation.HeaderName, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return HandleError(c, WrapHTTPError(httpErr))
			}

			return HandleError(c, err)
		}
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if clientID, ok := clientIDFrom(c); ok {
		attrs = append(attrs, "client_id", clientID.String())
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeRateLimited:
		slog.WarnContext(ctx, "Rate limited", attrs...)
	case apperrors.TypeExternal, apperrors.TypeUnavailable:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "External service error", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

// HandleError renders err as a structured JSON error response.
func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := apperrors.AsStructuredError(err)
	logError(c, structuredErr)
	if c.Response().Committed {
		return nil
	}
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}

// WrapHTTPError converts an echo.HTTPError into a structured error.
func WrapHTTPError(httpErr *echo.HTTPError) *apperrors.Error {
	message := http.StatusText(httpErr.Code)
	if msg, ok := httpErr.Message.(string); ok && msg != "" {
		message = msg
	}

	var errType apperrors.ErrorType
	switch httpErr.Code {
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		errType = apperrors.TypeValidation
	case http.StatusNotFound:
		errType = apperrors.TypeNotFound
	case http.StatusTooManyRequests:
		errType = apperrors.TypeRateLimited
	case http.StatusBadGateway:
		errType = apperrors.TypeExternal
	case http.StatusServiceUnavailable:
		errType = apperrors.TypeUnavailable
	default:
		errType = apperrors.TypeInternal
	}

	return &apperrors.Error{
		Type:    errType,
		Message: message,
		Cause:   httpErr.Internal,
		Context: make(map[string]any),
	}
}
