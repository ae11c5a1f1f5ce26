package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// HistoryStore keeps one list per client, newest entry at the head.
// Entries are JSON documents; the list is trimmed to the limit on every write.
type HistoryStore struct {
	rdb   goredis.Cmdable
	limit int
}

func NewHistoryStore(rdb goredis.Cmdable, limit int) *HistoryStore {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}
	return &HistoryStore{rdb: rdb, limit: limit}
}

func historyKey(clientID uuid.UUID) string {
	return "history:" + clientID.String()
}

func (s *HistoryStore) Add(ctx context.Context, clientID uuid.UUID, entry domain.HistoryEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	key := historyKey(clientID)
	_, err = s.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(s.limit-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add history entry: %w", err)
	}
	return nil
}

func (s *HistoryStore) List(ctx context.Context, clientID uuid.UUID, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 || limit > s.limit {
		limit = s.limit
	}

	raw, err := s.rdb.LRange(ctx, historyKey(clientID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}

	entries := make([]domain.HistoryEntry, 0, len(raw))
	for _, item := range raw {
		var entry domain.HistoryEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			slog.WarnContext(ctx, "Skipping corrupt history entry", "client_id", clientID.String(), "error", err)
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *HistoryStore) Clear(ctx context.Context, clientID uuid.UUID) error {
	if err := s.rdb.Del(ctx, historyKey(clientID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
