package metrics

import "github.com/prometheus/client_golang/prometheus"

// StorageMetrics holds Prometheus metrics for history storage and Redis.
type StorageMetrics struct {
	HistoryOps            *prometheus.CounterVec
	RedisOpsTotal         *prometheus.CounterVec
	RedisOpDuration       *prometheus.HistogramVec
	RedisConnectionErrors prometheus.Counter
	BreakerStateChanges   *prometheus.CounterVec
	BreakerState          *prometheus.GaugeVec
	DBQueryDuration       *prometheus.HistogramVec
	DBErrorsTotal         *prometheus.CounterVec
}

// NewStorageMetrics creates and registers storage metrics on the given registry.
func NewStorageMetrics(reg prometheus.Registerer) *StorageMetrics {
	m := &StorageMetrics{
		HistoryOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "operations_total",
			Help:      "Total number of history operations, by backend, operation and result.",
		}, []string{"backend", "operation", "result"}),
		RedisOpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operations_total",
			Help:      "Total number of Redis commands, by command and status.",
		}, []string{"operation", "status"}),
		RedisOpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "operation_duration_seconds",
			Help:      "Duration of Redis commands in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}, []string{"operation"}),
		RedisConnectionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "connection_errors_total",
			Help:      "Total number of failed Redis dials.",
		}),
		BreakerStateChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state_changes_total",
			Help:      "Total number of Redis circuit breaker transitions, by new state.",
		}, []string{"state"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "redis",
			Name:      "circuit_breaker_state",
			Help:      "Redis circuit breaker state (0=closed, 1=half-open, 2=open).",
		}, []string{"component"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Duration of PostgreSQL queries in seconds, by statement kind.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"query"}),
		DBErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "errors_total",
			Help:      "Total number of failed PostgreSQL queries, by statement kind.",
		}, []string{"query"}),
	}

	reg.MustRegister(
		m.HistoryOps, m.RedisOpsTotal, m.RedisOpDuration, m.RedisConnectionErrors,
		m.BreakerStateChanges, m.BreakerState, m.DBQueryDuration, m.DBErrorsTotal,
	)
	return m
}
