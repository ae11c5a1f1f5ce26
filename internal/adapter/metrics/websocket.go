package metrics

import "github.com/prometheus/client_golang/prometheus"

// WebSocketMetrics holds Prometheus metrics for session WebSocket connections.
type WebSocketMetrics struct {
	ActiveConnections  prometheus.Gauge
	FramesSent         prometheus.Counter
	FramesReceived     *prometheus.CounterVec
	SlowClientsEvicted prometheus.Counter
	ConnectionsRefused *prometheus.CounterVec
}

// NewWebSocketMetrics creates and registers WebSocket metrics on the given registry.
func NewWebSocketMetrics(reg prometheus.Registerer) *WebSocketMetrics {
	m := &WebSocketMetrics{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "active_connections",
			Help:      "Number of active WebSocket connections.",
		}),
		FramesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_sent_total",
			Help:      "Total number of WebSocket frames queued for clients.",
		}),
		FramesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "frames_received_total",
			Help:      "Total number of WebSocket frames received, by frame type.",
		}, []string{"type"}),
		SlowClientsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "slow_clients_evicted_total",
			Help:      "Total number of clients disconnected because their send buffer was full.",
		}),
		ConnectionsRefused: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "websocket",
			Name:      "connections_refused_total",
			Help:      "Total number of refused WebSocket connections, by limit.",
		}, []string{"reason"}),
	}

	reg.MustRegister(m.ActiveConnections, m.FramesSent, m.FramesReceived, m.SlowClientsEvicted, m.ConnectionsRefused)
	return m
}
