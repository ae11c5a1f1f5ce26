package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pscheid92/lingobridge/internal/adapter/metrics"
)

// MetricsTracer implements pgx.QueryTracer to collect query timings and errors.
type MetricsTracer struct {
	m *metrics.StorageMetrics
}

var _ pgx.QueryTracer = (*MetricsTracer)(nil)

func NewMetricsTracer(m *metrics.StorageMetrics) *MetricsTracer {
	return &MetricsTracer{m: m}
}

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	queryName string
}

func (t *MetricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryContextKey{}, queryContext{
		startTime: time.Now(),
		queryName: queryName(data.SQL),
	})
}

func (t *MetricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	t.m.DBQueryDuration.WithLabelValues(qctx.queryName).Observe(time.Since(qctx.startTime).Seconds())
	if data.Err != nil {
		t.m.DBErrorsTotal.WithLabelValues(qctx.queryName).Inc()
	}
}

// queryName reduces a statement to its leading keyword to keep label cardinality low.
func queryName(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToUpper(fields[0])
}
