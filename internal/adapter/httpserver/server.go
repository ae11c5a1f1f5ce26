package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/langdetect"
	"github.com/pscheid92/lingobridge/internal/platform/config"
)

type appService interface {
	Proxy(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error)
	Detect(text string) langdetect.Result
	History(ctx context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error)
	ClearHistory(ctx context.Context, clientID uuid.UUID) error
}

type sessionHandler interface {
	Serve(w http.ResponseWriter, r *http.Request, clientID uuid.UUID, ip string) error
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	app      appService
	sessions sessionHandler

	clientStore  *sessions.CookieStore
	registry     *prometheus.Registry
	httpMetrics  *metrics.HTTPMetrics
	healthChecks []HealthCheck
	startTime    time.Time
}

// NewServer wires the HTTP surface. registry and httpMetrics may be nil, in
// which case /metrics and request metrics are left out.
func NewServer(cfg *config.Config, app appService, sessions sessionHandler, registry *prometheus.Registry, httpMetrics *metrics.HTTPMetrics, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		app:          app,
		sessions:     sessions,
		clientStore:  newClientStore(cfg),
		registry:     registry,
		httpMetrics:  httpMetrics,
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()
	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
