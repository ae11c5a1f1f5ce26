package translation

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
	"github.com/pscheid92/lingobridge/internal/domain"
	"github.com/pscheid92/lingobridge/internal/platform/retry"
)

const (
	breakerName             = "translation_primary"
	breakerFailureThreshold = 5
	breakerOpenTimeout      = 30 * time.Second
	breakerInterval         = time.Minute

	primaryAttempts = 2
	primaryBackoff  = 200 * time.Millisecond
)

// Fallback reasons reported to metrics.
const (
	reasonNoPrimary    = "no_primary"
	reasonPrimaryError = "primary_error"
	reasonBreakerOpen  = "breaker_open"
	reasonPlaceholder  = "placeholder"
)

// DefaultRetryPolicy is the retry policy for the primary provider.
func DefaultRetryPolicy(clock clockwork.Clock) retry.Policy {
	return retry.Policy{
		MaxAttempts:    primaryAttempts,
		InitialBackoff: primaryBackoff,
		Clock:          clock,
	}
}

// FallbackTranslator tries the primary provider behind a circuit breaker and
// then the fallback provider. When both fail it still answers, with the
// failure placeholder of the source language.
type FallbackTranslator struct {
	primary  domain.Translator
	fallback domain.Translator
	breaker  *gobreaker.CircuitBreaker
	policy   retry.Policy
	metrics  *metrics.TranslationMetrics
}

// NewFallbackTranslator wires the two providers. primary may be nil, in which
// case every request goes to the fallback. With nil m the metrics are kept on
// a private registry.
func NewFallbackTranslator(primary, fallback domain.Translator, policy retry.Policy, m *metrics.TranslationMetrics) *FallbackTranslator {
	if m == nil {
		m = metrics.NewTranslationMetrics(prometheus.NewRegistry())
	}
	t := &FallbackTranslator{
		primary:  primary,
		fallback: fallback,
		policy:   policy,
		metrics:  m,
	}

	t.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    breakerInterval,
		Timeout:     breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerFailureThreshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !countsAsOutage(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "component", name, "from", from.String(), "to", to.String())
			m.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
	m.BreakerState.WithLabelValues(breakerName).Set(0)

	return t
}

func (t *FallbackTranslator) Translate(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if err := domain.ValidatePair(source, target); err != nil {
		return nil, err
	}

	reason := reasonNoPrimary
	if t.primary != nil {
		res, err := retry.Do(ctx, t.policy, classify, func(ctx context.Context) (*domain.Translation, error) {
			return t.callPrimary(ctx, text, source, target)
		})
		if err == nil {
			return res, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		reason = reasonPrimaryError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			reason = reasonBreakerOpen
		}
		slog.WarnContext(ctx, "Primary translation failed, using fallback", "source", source, "target", target, "error", err)
	}

	res, err := t.observe(domain.ProviderPublic, func() (*domain.Translation, error) {
		return t.fallback.Translate(ctx, text, source, target)
	})
	if err == nil {
		res.Fallback = true
		t.metrics.FallbacksTotal.WithLabelValues(reason).Inc()
		return res, nil
	}

	slog.ErrorContext(ctx, "Fallback translation failed", "source", source, "target", target, "error", err)
	t.metrics.FallbacksTotal.WithLabelValues(reasonPlaceholder).Inc()
	return &domain.Translation{
		OriginalText:   text,
		TranslatedText: source.FailureText(),
		SourceLanguage: source,
		TargetLanguage: target,
		Provider:       domain.ProviderPlaceholder,
		Fallback:       true,
	}, nil
}

// BreakerState exposes the primary breaker state for health reporting.
func (t *FallbackTranslator) BreakerState() gobreaker.State {
	return t.breaker.State()
}

func (t *FallbackTranslator) callPrimary(ctx context.Context, text string, source, target domain.Language) (*domain.Translation, error) {
	return t.observe(domain.ProviderCloud, func() (*domain.Translation, error) {
		res, err := t.breaker.Execute(func() (interface{}, error) {
			return t.primary.Translate(ctx, text, source, target)
		})
		if err != nil {
			return nil, err
		}
		return res.(*domain.Translation), nil
	})
}

func (t *FallbackTranslator) observe(provider string, fn func() (*domain.Translation, error)) (*domain.Translation, error) {
	start := time.Now()
	res, err := fn()
	t.metrics.TranslationDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	result := "success"
	if err != nil {
		result = "error"
	}
	t.metrics.TranslationsTotal.WithLabelValues(provider, result).Inc()
	return res, err
}

func classify(err error) retry.Action {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return retry.Stop
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return retry.Stop
	case errors.Is(err, domain.ErrEmptyText), errors.Is(err, domain.ErrUnsupportedLanguage):
		return retry.Stop
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusTooManyRequests:
			return retry.After
		case statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
			return retry.Stop
		}
	}
	return retry.Retry
}

// countsAsOutage reports whether err says something about provider health.
func countsAsOutage(err error) bool {
	return !errors.Is(err, context.Canceled) &&
		!errors.Is(err, domain.ErrEmptyText) &&
		!errors.Is(err, domain.ErrUnsupportedLanguage)
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
