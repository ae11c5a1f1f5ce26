package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
)

const (
	breakerFailureRate      = 0.6
	breakerMinExecutions    = 5
	breakerWindow           = 10 * time.Second
	breakerDelay            = 30 * time.Second
	breakerSuccessThreshold = 1

	staleReadTTL        = 5 * time.Minute
	staleReadMaxEntries = 10000
)

// CircuitBreakerHook guards all Redis operations with a circuit breaker.
// While the breaker is open, GETs are answered from the last value seen for
// the key (if fresh enough) and everything else fails fast with circuitbreaker.ErrOpen.
type CircuitBreakerHook struct {
	cb    circuitbreaker.CircuitBreaker[any]
	reads *staleReads
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

type staleReads struct {
	mu     sync.RWMutex
	values map[string]staleRead
}

type staleRead struct {
	data      string
	timestamp time.Time
}

// NewCircuitBreakerHook trips at a 60% failure rate over at least 5 requests
// in a 10s window, half-opens after 30s and closes on the first success.
func NewCircuitBreakerHook(m *metrics.StorageMetrics) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(breakerFailureRate, breakerMinExecutions, breakerWindow).
		WithDelay(breakerDelay).
		WithSuccessThreshold(breakerSuccessThreshold).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			m.BreakerStateChanges.WithLabelValues(e.NewState.String()).Inc()
			m.BreakerState.WithLabelValues("redis").Set(stateToFloat(e.NewState))
		}).
		Build()

	return &CircuitBreakerHook{
		cb:    cb,
		reads: &staleReads{values: make(map[string]staleRead)},
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("circuit breaker dial failed: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, fmt.Errorf("circuit breaker dial failed: %w", err)
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return h.serveStale(cmd)
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker process failed: %w", err)
		}

		h.cb.RecordSuccess()
		h.remember(cmd)
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil {
			h.cb.RecordError(err)
			return fmt.Errorf("circuit breaker pipeline failed: %w", err)
		}
		h.cb.RecordSuccess()
		return nil
	}
}

func (h *CircuitBreakerHook) serveStale(cmd goredis.Cmder) error {
	if cmd.Name() == "get" {
		if c, ok := cmd.(*goredis.StringCmd); ok {
			if value, ok := h.lookup(cmd); ok {
				slog.Debug("Circuit breaker open, serving stale read", "command", cmd.Name())
				c.SetVal(value)
				return nil
			}
		}
	}
	return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
}

func (h *CircuitBreakerHook) remember(cmd goredis.Cmder) {
	if cmd.Name() != "get" || len(cmd.Args()) < 2 {
		return
	}
	c, ok := cmd.(*goredis.StringCmd)
	if !ok {
		return
	}
	value, err := c.Result()
	if err != nil || value == "" {
		return
	}

	key := fmt.Sprintf("%v", cmd.Args()[1])
	h.reads.mu.Lock()
	if len(h.reads.values) >= staleReadMaxEntries {
		h.reads.values = make(map[string]staleRead)
	}
	h.reads.values[key] = staleRead{data: value, timestamp: time.Now()}
	h.reads.mu.Unlock()
}

func (h *CircuitBreakerHook) lookup(cmd goredis.Cmder) (string, bool) {
	if len(cmd.Args()) < 2 {
		return "", false
	}
	key := fmt.Sprintf("%v", cmd.Args()[1])

	h.reads.mu.RLock()
	defer h.reads.mu.RUnlock()

	cached, ok := h.reads.values[key]
	if !ok || time.Since(cached.timestamp) > staleReadTTL {
		return "", false
	}
	return cached.data, true
}

// State returns the current breaker state.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
