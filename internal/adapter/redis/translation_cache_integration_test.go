package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pscheid92/lingobridge/internal/domain"
)

func TestTranslationCache_MissThenHit(t *testing.T) {
	client := setupTestClient(t)
	cache := NewTranslationCache(client)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, domain.LanguageJapanese, domain.LanguageVietnamese, "こんにちは")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, domain.LanguageJapanese, domain.LanguageVietnamese, "こんにちは", "Xin chào", time.Hour))

	got, ok, err := cache.Get(ctx, domain.LanguageJapanese, domain.LanguageVietnamese, "こんにちは")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Xin chào", got)

	_, ok, err = cache.Get(ctx, domain.LanguageVietnamese, domain.LanguageJapanese, "こんにちは")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslationCache_AppliesTTL(t *testing.T) {
	client := setupTestClient(t)
	cache := NewTranslationCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, domain.LanguageVietnamese, domain.LanguageJapanese, "cảm ơn", "ありがとう", time.Minute))

	ttl, err := client.TTL(ctx, translationKey(domain.LanguageVietnamese, domain.LanguageJapanese, "cảm ơn")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)
	assert.LessOrEqual(t, ttl, time.Minute)
}
