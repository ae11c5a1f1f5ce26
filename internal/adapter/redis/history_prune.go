package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	historyKeyPattern = "history:*"
	pruneScanCount    = 100
)

// PruneStats summarizes one PruneHistory run.
type PruneStats struct {
	Scanned int
	Trimmed int
	Removed int
}

// PruneHistory walks every history list and trims it to limit entries. Keys
// whose suffix is not a client UUID are deleted. With dryRun set nothing is
// written, but the stats report what would have changed.
func PruneHistory(ctx context.Context, rdb goredis.Cmdable, limit int, dryRun bool) (PruneStats, error) {
	var stats PruneStats
	if limit <= 0 {
		return stats, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var cursor uint64
	for {
		keys, next, err := rdb.Scan(ctx, cursor, historyKeyPattern, pruneScanCount).Result()
		if err != nil {
			return stats, fmt.Errorf("scan failed: %w", err)
		}

		for _, key := range keys {
			stats.Scanned++

			if _, err := uuid.Parse(strings.TrimPrefix(key, "history:")); err != nil {
				slog.Debug("Removing history key with invalid client ID", "key", key)
				stats.Removed++
				if !dryRun {
					if err := rdb.Del(ctx, key).Err(); err != nil {
						return stats, fmt.Errorf("del failed for %s: %w", key, err)
					}
				}
				continue
			}

			n, err := rdb.LLen(ctx, key).Result()
			if err != nil {
				return stats, fmt.Errorf("llen failed for %s: %w", key, err)
			}
			if n <= int64(limit) {
				continue
			}

			slog.Debug("Trimming history", "key", key, "length", n, "limit", limit)
			stats.Trimmed++
			if !dryRun {
				if err := rdb.LTrim(ctx, key, 0, int64(limit-1)).Err(); err != nil {
					return stats, fmt.Errorf("ltrim failed for %s: %w", key, err)
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return stats, nil
}
