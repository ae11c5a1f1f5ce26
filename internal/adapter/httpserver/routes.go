package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/web"
)

func (s *Server) registerRoutes() {
	s.echo.Use(correlationMiddleware)
	s.echo.Use(s.setupRequestLoggerMiddleware())
	s.echo.Use(middleware.Recover())
	if s.httpMetrics != nil {
		s.echo.Use(s.httpMetrics.Middleware())
	}
	s.echo.Use(ErrorHandlingMiddleware())
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         63072000, // 2 years; only sent over HTTPS
		HSTSPreloadEnabled: true,
		ContentSecurityPolicy: "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"connect-src 'self' ws: wss: https://translate.googleapis.com; " +
			"frame-ancestors 'none'",
		ReferrerPolicy: "strict-origin-when-cross-origin",
	}))

	s.echo.GET("/", s.handleIndex, s.withClient)
	s.echo.StaticFS("/static", echo.MustSubFS(web.StaticFiles, "static"))

	s.registerHealthRoutes()
	s.registerAPIRoutes()
	s.echo.GET("/ws/session", s.handleSession, s.withClient)

	if s.registry != nil {
		s.echo.GET("/metrics", echo.WrapHandler(metrics.Handler(s.registry)))
	}
}

func (s *Server) setupRequestLoggerMiddleware() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health/live"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
			}
			slog.InfoContext(c.Request().Context(), "Request", attrs...)
			return nil
		},
	})
}

func (s *Server) setupCORSMiddleware() echo.MiddlewareFunc {
	origins := []string{"*"}
	if s.config.IsProduction() {
		origins = []string{s.config.AppURL}
	}
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType},
	})
}

func (s *Server) handleIndex(c echo.Context) error {
	return echo.StaticFileHandler("static/index.html", web.StaticFiles)(c)
}
