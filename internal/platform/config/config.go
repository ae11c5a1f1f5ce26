package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// History backends selectable through HISTORY_BACKEND.
const (
	HistoryBackendMemory   = "memory"
	HistoryBackendRedis    = "redis"
	HistoryBackendPostgres = "postgres"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" default:"development"`
	AppURL        string `env:"APP_URL" default:"http://localhost:3000"`
	Port          string `env:"PORT" default:"3000"`
	LogLevel      string `env:"LOG_LEVEL" default:"info"`
	LogFormat     string `env:"LOG_FORMAT" default:"text"`
	SessionSecret string `env:"SESSION_SECRET"`

	GoogleCredentialsFile string        `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	FallbackTranslateURL  string        `env:"FALLBACK_TRANSLATE_URL" default:"https://translate.googleapis.com/translate_a/single"`
	TranslateTimeout      time.Duration `env:"TRANSLATE_TIMEOUT" default:"10s"`
	TranslationCacheTTL   time.Duration `env:"TRANSLATION_CACHE_TTL" default:"24h"`

	HistoryBackend string `env:"HISTORY_BACKEND" default:"memory"`
	HistoryLimit   int    `env:"HISTORY_LIMIT" default:"100"`
	RedisURL       string `env:"REDIS_URL"`
	DatabaseURL    string `env:"DATABASE_URL"`

	SilenceTimeout           time.Duration `env:"SILENCE_TIMEOUT" default:"30s"`
	RetryDelay               time.Duration `env:"RETRY_DELAY" default:"1s"`
	MaxRecognitionRetries    int           `env:"MAX_RECOGNITION_RETRIES" default:"3"`
	LanguageSwitchConfidence float64       `env:"LANGUAGE_SWITCH_CONFIDENCE" default:"0.6"`
	AutoSpeak                bool          `env:"AUTO_SPEAK" default:"true"`

	APIRateLimit            float64 `env:"API_RATE_LIMIT" default:"5"`
	APIRateBurst            int     `env:"API_RATE_BURST" default:"20"`
	MaxWebSocketConnections int     `env:"MAX_WEBSOCKET_CONNECTIONS" default:"1000"`
	MaxConnectionsPerIP     int     `env:"MAX_CONNECTIONS_PER_IP" default:"10"`

	ClientCookieMaxAge time.Duration `env:"CLIENT_COOKIE_MAX_AGE" default:"8760h"` // 1 year
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Load(&cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if len(cfg.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}

	switch cfg.HistoryBackend {
	case HistoryBackendMemory:
	case HistoryBackendRedis:
		if cfg.RedisURL == "" {
			return errors.New("REDIS_URL is required when HISTORY_BACKEND is redis")
		}
	case HistoryBackendPostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when HISTORY_BACKEND is postgres")
		}
	default:
		return fmt.Errorf("HISTORY_BACKEND must be one of memory, redis, postgres, got %q", cfg.HistoryBackend)
	}

	if cfg.HistoryLimit < 1 {
		return errors.New("HISTORY_LIMIT must be positive")
	}
	if cfg.MaxRecognitionRetries < 0 {
		return errors.New("MAX_RECOGNITION_RETRIES must not be negative")
	}
	if cfg.LanguageSwitchConfidence < 0.5 || cfg.LanguageSwitchConfidence > 1 {
		return errors.New("LANGUAGE_SWITCH_CONFIDENCE must be between 0.5 and 1")
	}
	if cfg.SilenceTimeout <= 0 {
		return errors.New("SILENCE_TIMEOUT must be positive")
	}

	return nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
