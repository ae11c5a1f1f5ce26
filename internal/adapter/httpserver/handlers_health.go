package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pscheid92/lingobridge/internal/platform/version"
)

const (
	startupProbeTimeout   = 2 * time.Second
	readinessProbeTimeout = 5 * time.Second
)

// HealthCheck is a named dependency probe used by the startup and readiness
// endpoints. Optional marks a dependency the service can degrade without.
type HealthCheck struct {
	Name     string
	Optional bool
	Check    func(ctx context.Context) error
}

func (s *Server) registerHealthRoutes() {
	s.echo.GET("/health/startup", s.handleStartup)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/version", s.handleVersion)
}

func (s *Server) handleStartup(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), startupProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

func (s *Server) handleLiveness(c echo.Context) error {
	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to write liveness response: %w", err)
	}
	return nil
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), readinessProbeTimeout)
	defer cancel()

	return s.runHealthChecks(c, ctx)
}

// runHealthChecks stops at the first failing required check. Failing optional
// checks are reported as degraded but keep the probe green.
func (s *Server) runHealthChecks(c echo.Context, ctx context.Context) error {
	degraded := map[string]string{}

	for _, hc := range s.healthChecks {
		err := hc.Check(ctx)
		if err == nil {
			continue
		}
		if hc.Optional {
			degraded[hc.Name] = err.Error()
			continue
		}

		response := map[string]any{
			"status":       "unhealthy",
			"failed_check": hc.Name,
			"error":        err.Error(),
		}
		if err := c.JSON(http.StatusServiceUnavailable, response); err != nil {
			return fmt.Errorf("failed to send JSON response: %w", err)
		}
		return nil
	}

	response := map[string]any{"status": "ready"}
	if len(degraded) > 0 {
		response["degraded"] = degraded
	}
	if err := c.JSON(http.StatusOK, response); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}

func (s *Server) handleVersion(c echo.Context) error {
	if err := c.JSON(http.StatusOK, version.Get()); err != nil {
		return fmt.Errorf("failed to write version response: %w", err)
	}
	return nil
}
