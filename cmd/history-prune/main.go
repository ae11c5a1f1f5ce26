// Command history-prune trims Redis-backed translation history to a limit.
// Run it after lowering HISTORY_LIMIT; lists are otherwise only trimmed on write.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/adapter/redis"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/platform/logging"
)

func defaultLimit() int {
	if n, err := strconv.Atoi(os.Getenv("HISTORY_LIMIT")); err == nil && n > 0 {
		return n
	}
	return domain.DefaultHistoryLimit
}

func main() {
	var (
		redisURL = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		limit    = flag.Int("limit", defaultLimit(), "Entries to keep per client (or set HISTORY_LIMIT env)")
		dryRun   = flag.Bool("dry-run", false, "Dry run mode (don't write to Redis)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.InitLogger(level, "text")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	rdb, err := redis.NewClient(ctx, *redisURL, metrics.NewStorageMetrics(prometheus.NewRegistry()))
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = rdb.Close() }()

	start := time.Now()
	slog.Info("Starting history prune", "limit", *limit, "dry_run", *dryRun)

	stats, err := redis.PruneHistory(ctx, rdb, *limit, *dryRun)
	if err != nil {
		log.Fatalf("Prune failed: %v", err)
	}

	slog.Info("Prune summary",
		"scanned", stats.Scanned,
		"trimmed", stats.Trimmed,
		"removed", stats.Removed,
		"dry_run", *dryRun,
		"duration_ms", time.Since(start).Milliseconds())
}
