package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics holds Prometheus metrics for the translation cache.
type CacheMetrics struct {
	Hits   prometheus.Counter
	Misses prometheus.Counter
	Errors *prometheus.CounterVec
	Shared prometheus.Counter
}

// NewCacheMetrics creates and registers cache metrics on the given registry.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	m := &CacheMetrics{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "hits_total",
			Help:      "Total number of translation cache hits.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "misses_total",
			Help:      "Total number of translation cache misses.",
		}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "errors_total",
			Help:      "Total number of translation cache errors, by operation.",
		}, []string{"operation"}),
		Shared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation_cache",
			Name:      "shared_total",
			Help:      "Total number of translations shared with a concurrent identical request.",
		}),
	}

	reg.MustRegister(m.Hits, m.Misses, m.Errors, m.Shared)
	return m
}
