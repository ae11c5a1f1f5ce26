package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pscheid92/lingobridge/internal/domain"
)

// RecognitionMetrics holds Prometheus metrics for listening sessions.
type RecognitionMetrics struct {
	ActiveSessions    prometheus.Gauge
	RecognizerStarts  *prometheus.CounterVec
	LanguageSwitches  *prometheus.CounterVec
	SessionsStopped   *prometheus.CounterVec
	UtterancesDropped prometheus.Counter
}

// NewRecognitionMetrics creates and registers recognition metrics on the given registry.
func NewRecognitionMetrics(reg prometheus.Registerer) *RecognitionMetrics {
	m := &RecognitionMetrics{
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recognition",
			Name:      "active_sessions",
			Help:      "Number of open recognition sessions.",
		}),
		RecognizerStarts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recognition",
			Name:      "recognizer_starts_total",
			Help:      "Total number of recognizer starts, by language and reason.",
		}, []string{"language", "reason"}),
		LanguageSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recognition",
			Name:      "language_switches_total",
			Help:      "Total number of automatic language switches, by target language.",
		}, []string{"to"}),
		SessionsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recognition",
			Name:      "stops_total",
			Help:      "Total number of listening stops, by reason.",
		}, []string{"reason"}),
		UtterancesDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recognition",
			Name:      "utterances_dropped_total",
			Help:      "Total number of finalized fragments dropped because the translation queue was full.",
		}),
	}

	reg.MustRegister(m.ActiveSessions, m.RecognizerStarts, m.LanguageSwitches, m.SessionsStopped, m.UtterancesDropped)
	return m
}

func (m *RecognitionMetrics) RecognizerStarted(lang domain.Language, reason string) {
	m.RecognizerStarts.WithLabelValues(lang.String(), reason).Inc()
}

func (m *RecognitionMetrics) LanguageSwitched(_, to domain.Language) {
	m.LanguageSwitches.WithLabelValues(to.String()).Inc()
}

func (m *RecognitionMetrics) SessionStopped(reason domain.StopReason) {
	m.SessionsStopped.WithLabelValues(string(reason)).Inc()
}
