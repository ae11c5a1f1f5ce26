package metrics

import "github.com/prometheus/client_golang/prometheus"

// TranslationMetrics holds Prometheus metrics for the translation path.
type TranslationMetrics struct {
	TranslationsTotal   *prometheus.CounterVec
	TranslationDuration *prometheus.HistogramVec
	FallbacksTotal      *prometheus.CounterVec
	BreakerState        *prometheus.GaugeVec
	DetectionsTotal     *prometheus.CounterVec
}

// NewTranslationMetrics creates and registers translation metrics on the given registry.
func NewTranslationMetrics(reg prometheus.Registerer) *TranslationMetrics {
	m := &TranslationMetrics{
		TranslationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "requests_total",
			Help:      "Total number of translation attempts, by provider and result.",
		}, []string{"provider", "result"}),
		TranslationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "duration_seconds",
			Help:      "Duration of translation provider calls in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider"}),
		FallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "translation",
			Name:      "fallbacks_total",
			Help:      "Total number of translations served by a fallback, by reason.",
		}, []string{"reason"}),
		BreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open), by breaker.",
		}, []string{"breaker"}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "langdetect",
			Name:      "detections_total",
			Help:      "Total number of language detections, by detected language.",
		}, []string{"language"}),
	}

	reg.MustRegister(m.TranslationsTotal, m.TranslationDuration, m.FallbacksTotal, m.BreakerState, m.DetectionsTotal)
	return m
}
