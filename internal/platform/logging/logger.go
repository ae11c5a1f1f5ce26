package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/pscheid92/lingobridge/internal/platform/correlation"
)

// Logger is the application-wide structured logger instance.
var Logger = slog.Default()

// InitLogger initializes the global logger with the specified level and format.
// level: "debug", "info", "warn", "error" (defaults to "info")
// format: "json" or "text" (defaults to "text")
func InitLogger(level, format string) {
	Logger = New(os.Stdout, level, format)
	slog.SetDefault(Logger)
}

// New builds a correlation-aware logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: ParseLevel(level),
	}

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(correlation.NewHandler(handler))
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithSession returns a logger with session_id and client_id fields.
func WithSession(sessionID, clientID string) *slog.Logger {
	return Logger.With("session_id", sessionID, "client_id", clientID)
}

// WithClient returns a logger with client_id field.
func WithClient(clientID string) *slog.Logger {
	return Logger.With("client_id", clientID)
}
