package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	apperrors "github.com/pscheid92/lingobridge/internal/platform/errors"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter throttles requests per client IP with a token bucket.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		ErrorHandler: func(c echo.Context, err error) error {
			slog.WarnContext(c.Request().Context(), "Rate limiter could not identify caller", "error", err)
			return c.JSON(http.StatusForbidden, apperrors.ValidationError("unidentifiable client").ToResponse())
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			rlErr := apperrors.RateLimitedError("rate limit exceeded").WithField("ip", identifier)
			return c.JSON(rlErr.HTTPStatus(), rlErr.ToResponse())
		},
	})
}
