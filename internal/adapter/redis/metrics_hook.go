package redis

import (
	"context"
	"errors"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
)

// MetricsHook implements redis.Hook to collect metrics on all Redis operations.
type MetricsHook struct {
	m *metrics.StorageMetrics
}

var _ goredis.Hook = (*MetricsHook)(nil)

func NewMetricsHook(m *metrics.StorageMetrics) *MetricsHook {
	return &MetricsHook{m: m}
}

func (h *MetricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.m.RedisConnectionErrors.Inc()
		}
		return conn, err
	}
}

func (h *MetricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(cmd.Name(), start, err)
		return err
	}
}

// ProcessPipelineHook tracks a pipeline as a single operation.
func (h *MetricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		h.observe("pipeline", start, err)
		return err
	}
}

func (h *MetricsHook) observe(operation string, start time.Time, err error) {
	status := "success"
	if err != nil && !errors.Is(err, goredis.Nil) {
		status = "error"
	}
	h.m.RedisOpsTotal.WithLabelValues(operation, status).Inc()
	h.m.RedisOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
