// Package retry runs an operation with bounded attempts and doubling backoff.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Stop  Action = iota // permanent error, abort immediately
	Retry               // transient error, use normal backoff
	After               // rate-limited, use longer backoff
)

type Policy struct {
	MaxAttempts      int
	InitialBackoff   time.Duration
	RateLimitBackoff time.Duration
	MaxBackoff       time.Duration // zero means unbounded
	Clock            clockwork.Clock
	OnRetry          func(attempt int, err error, backoff time.Duration)
}

type Classify func(err error) Action
type Operation[T any] func(ctx context.Context) (T, error)

func Do[T any](ctx context.Context, p Policy, classify Classify, op Operation[T]) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("retry policy needs at least one attempt, got %d", p.MaxAttempts)
	}

	clock := p.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	backoff := p.InitialBackoff
	for attempt := 1; ; attempt++ {
		val, err := op(ctx)
		if err == nil {
			return val, nil
		}

		if classify(err) == Stop {
			return zero, &PermanentError{Err: err}
		}
		if attempt == p.MaxAttempts {
			return zero, fmt.Errorf("failed after %d attempts: %w", p.MaxAttempts, err)
		}

		wait := backoff
		if classify(err) == After && p.RateLimitBackoff > wait {
			wait = p.RateLimitBackoff
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}

		select {
		case <-clock.After(wait):
			backoff *= 2
			if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
				backoff = p.MaxBackoff
			}
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled during retry: %w", ctx.Err())
		}
	}
}

func DoVoid(ctx context.Context, p Policy, classify Classify, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, classify, func(ctx context.Context) (struct{}, error) { return struct{}{}, op(ctx) })
	return err
}

type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
