package translation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
)

// CachedTranslator is a read-through cache in front of another translator.
// Concurrent requests for the same text and direction share one upstream call.
// Cache errors are logged and never fail a translation.
type CachedTranslator struct {
	next    domain.Translator
	cache   domain.TranslationCache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.CacheMetrics
}

func NewCachedTranslator(next domain.Translator, cache domain.TranslationCache, ttl time.Duration, m *metrics.CacheMetrics) *CachedTranslator {
	if m == nil {
		m = metrics.NewCacheMetrics(prometheus.NewRegistry())
	}
	return &CachedTranslator{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
	}
}

func (t *CachedTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}

	cached, ok, err := t.cache.Get(ctx, source, target, text)
	if err != nil {
		t.metrics.Errors.WithLabelValues("get").Inc()
		slog.WarnContext(ctx, "Translation cache read failed", "error", err)
	}
	if ok {
		t.metrics.Hits.Inc()
		return &domain.Translation{
			OriginalText:   text,
			TranslatedText: cached,
			SourceLanguage: source,
			TargetLanguage: target,
			Provider:       domain.ProviderCache,
		}, nil
	}
	t.metrics.Misses.Inc()

	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context ends.
	flightCtx := context.WithoutCancel(ctx)
	key := string(source) + ":" + string(target) + ":" + text
	ch := t.group.DoChan(key, func() (any, error) {
		res, err := t.next.Translate(flightCtx, text, source, target)
		if err != nil {
			return nil, err
		}
		if res.Provider != domain.ProviderPlaceholder {
			if err := t.cache.Set(flightCtx, source, target, text, res.TranslatedText, t.ttl); err != nil {
				t.metrics.Errors.WithLabelValues("set").Inc()
				slog.WarnContext(flightCtx, "Translation cache write failed", "error", err)
			}
		}
		return res, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			t.metrics.Shared.Inc()
		}
		out := *r.Val.(*domain.Translation)
		return &out, nil
	}
}
