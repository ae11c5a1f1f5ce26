package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"

	"github.com/pscheid92/lingobridge/internal/adapter/httpserver"
	"github.com/pscheid92/lingobridge/internal/adapter/memory"
	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/adapter/postgres"
	"github.com/pscheid92/lingobridge/internal/adapter/redis"
	"github.com/pscheid92/lingobridge/internal/adapter/translation"
	"github.com/pscheid92/lingobridge/internal/adapter/websocket"
	"github.com/pscheid92/lingobridge/internal/app"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/platform/config"
	"github.com/pscheid92/lingobridge/internal/platform/logging"
	"github.com/pscheid92/lingobridge/internal/platform/version"
	"github.com/pscheid92/lingobridge/internal/recognition"
)

type appMetrics struct {
	http        *metrics.HTTPMetrics
	websocket   *metrics.WebSocketMetrics
	recognition *metrics.RecognitionMetrics
	translation *metrics.TranslationMetrics
	cache       *metrics.CacheMetrics
	storage     *metrics.StorageMetrics
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupMetrics() (*prometheus.Registry, appMetrics) {
	reg := metrics.NewRegistry(version.Get())
	return reg, appMetrics{
		http:        metrics.NewHTTPMetrics(reg),
		websocket:   metrics.NewWebSocketMetrics(reg),
		recognition: metrics.NewRecognitionMetrics(reg),
		translation: metrics.NewTranslationMetrics(reg),
		cache:       metrics.NewCacheMetrics(reg),
		storage:     metrics.NewStorageMetrics(reg),
	}
}

func setupDB(cfg *config.Config, m *metrics.StorageMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, m)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

func setupRedis(cfg *config.Config, m *metrics.StorageMetrics) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL, m)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupHistory(cfg *config.Config, pool *pgxpool.Pool, rdb *goredis.Client) domain.HistoryStore {
	switch cfg.HistoryBackend {
	case config.HistoryBackendPostgres:
		return postgres.NewHistoryRepo(pool, cfg.HistoryLimit)
	case config.HistoryBackendRedis:
		return redis.NewHistoryStore(rdb, cfg.HistoryLimit)
	default:
		return memory.NewHistoryStore(cfg.HistoryLimit)
	}
}

// setupTranslators returns the session translator (cloud with public fallback,
// optionally cached) and the proxy translator used by /api/translate. proxy is
// nil when no cloud credentials are configured.
func setupTranslators(cfg *config.Config, rdb *goredis.Client, clock clockwork.Clock, m appMetrics) (session *translation.FallbackTranslator, cached domain.Translator, proxy domain.Translator, closeFn func()) {
	closeFn = func() {}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var primary domain.Translator
	cloud, err := translation.NewCloudTranslator(ctx, cfg.GoogleCredentialsFile)
	if err != nil {
		slog.Warn("Cloud translation unavailable, using public endpoint only", "error", err)
	} else {
		primary = cloud
		proxy = cloud
		closeFn = func() {
			if err := cloud.Close(); err != nil {
				slog.Error("Failed to close cloud translator", "error", err)
			}
		}
	}

	public := translation.NewPublicTranslator(cfg.FallbackTranslateURL, cfg.TranslateTimeout)
	session = translation.NewFallbackTranslator(primary, public, translation.DefaultRetryPolicy(clock), m.translation)

	cached = session
	if rdb != nil {
		cached = translation.NewCachedTranslator(session, redis.NewTranslationCache(rdb), cfg.TranslationCacheTTL, m.cache)
	}
	return session, cached, proxy, closeFn
}

func healthChecks(pool *pgxpool.Pool, rdb *goredis.Client, historyBackend string, breaker *translation.FallbackTranslator) []httpserver.HealthCheck {
	var checks []httpserver.HealthCheck
	if pool != nil {
		checks = append(checks, httpserver.HealthCheck{Name: "postgres", Check: pool.Ping})
	}
	if rdb != nil {
		checks = append(checks, httpserver.HealthCheck{
			Name:     "redis",
			Optional: historyBackend != config.HistoryBackendRedis,
			Check: func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		})
	}
	checks = append(checks, httpserver.HealthCheck{
		Name:     "translation_primary",
		Optional: true,
		Check: func(context.Context) error {
			if breaker.BreakerState() == gobreaker.StateOpen {
				return errors.New("circuit breaker open")
			}
			return nil
		},
	})
	return checks
}

func runGracefulShutdown(srv *httpserver.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Get().Version, "history_backend", cfg.HistoryBackend)

	registry, m := setupMetrics()

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		pool = setupDB(cfg, m.storage)
		defer pool.Close()
	}

	var rdb *goredis.Client
	if cfg.RedisURL != "" {
		rdb = setupRedis(cfg, m.storage)
		defer func() { _ = rdb.Close() }()
	}

	history := setupHistory(cfg, pool, rdb)
	session, translator, proxy, closeTranslators := setupTranslators(cfg, rdb, clock, m)
	defer closeTranslators()

	appSvc := app.NewService(app.ServiceDeps{
		Translator:         translator,
		Proxy:              proxy,
		History:            history,
		HistoryBackend:     cfg.HistoryBackend,
		Clock:              clock,
		TranslationMetrics: m.translation,
		StorageMetrics:     m.storage,
	})

	limits := websocket.NewConnectionLimits(int64(cfg.MaxWebSocketConnections), cfg.MaxConnectionsPerIP, clock)
	sessions := websocket.NewHandler(appSvc, limits, websocket.HandlerConfig{
		Session: recognition.Config{
			SilenceTimeout:   cfg.SilenceTimeout,
			RetryDelay:       cfg.RetryDelay,
			MaxRetries:       cfg.MaxRecognitionRetries,
			SwitchConfidence: cfg.LanguageSwitchConfidence,
		},
		AutoSpeak:   cfg.AutoSpeak,
		CheckOrigin: websocket.NewCheckOrigin(cfg.AppURL, !cfg.IsProduction()),
		Clock:       clock,
	}, m.websocket, m.recognition)

	srv := httpserver.NewServer(cfg, appSvc, sessions, registry, m.http, healthChecks(pool, rdb, cfg.HistoryBackend, session))

	done := runGracefulShutdown(srv)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
