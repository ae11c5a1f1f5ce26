package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// TranslationCache stores translated text under a digest of direction and source text.
type TranslationCache struct {
	rdb goredis.Cmdable
}

func NewTranslationCache(rdb goredis.Cmdable) *TranslationCache {
	return &TranslationCache{rdb: rdb}
}

func translationKey(source, target domain.Language, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("translation:%s:%s:%s", source, target, hex.EncodeToString(sum[:]))
}

func (c *TranslationCache) Get(ctx context.Context, source, target domain.Language, text string) (string, bool, error) {
	val, err := c.rdb.Get(ctx, translationKey(source, target, text)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cached translation: %w", err)
	}
	return val, true, nil
}

func (c *TranslationCache) Set(ctx context.Context, source, target domain.Language, text, translated string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, translationKey(source, target, text), translated, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache translation: %w", err)
	}
	return nil
}
