package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Route labels for requests outside the API.
const (
	RouteStatic    = "static"
	RouteUnmatched = "unmatched"
	RouteSession   = "/ws/session"
)

// HTTPMetrics tracks API requests and session upgrades. Probes, /metrics and
// /version are not recorded.
type HTTPMetrics struct {
	RequestDuration *prometheus.HistogramVec
	RequestsTotal   *prometheus.CounterVec
	ResponseSize    *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge
}

func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds. Translation calls dominate the upper buckets.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"method", "route", "status_code"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests by route, including websocket session upgrades.",
		}, []string{"method", "route", "status_code"}),
		ResponseSize: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "Size of API responses in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 7),
		}, []string{"route"}),
		InFlightGauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "API requests currently being processed.",
		}),
	}

	reg.MustRegister(m.RequestDuration, m.RequestsTotal, m.ResponseSize, m.InFlightGauge)
	return m
}

// RouteLabel maps an echo route pattern to a bounded label value. The second
// result is false for routes that are not recorded.
func RouteLabel(path string) (string, bool) {
	switch {
	case path == "/metrics", path == "/version", strings.HasPrefix(path, "/health/"):
		return "", false
	case path == RouteSession:
		return RouteSession, true
	case strings.HasPrefix(path, "/api/"):
		return path, true
	case path == "/", strings.HasPrefix(path, "/static"):
		return RouteStatic, true
	default:
		return RouteUnmatched, true
	}
}

// Middleware records every request except probes. A session upgrade lives as
// long as the websocket, so it is only counted.
func (m *HTTPMetrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route, ok := RouteLabel(c.Path())
			if !ok {
				return next(c)
			}

			method := c.Request().Method
			if route == RouteSession {
				err := next(c)
				status := statusOf(c, err)
				if err == nil && status == http.StatusOK {
					// the hijacked connection bypasses the echo response
					status = http.StatusSwitchingProtocols
				}
				m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
				return err
			}

			m.InFlightGauge.Inc()
			defer m.InFlightGauge.Dec()

			var err error
			timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
				status := strconv.Itoa(statusOf(c, err))
				m.RequestDuration.WithLabelValues(method, route, status).Observe(v)
				m.RequestsTotal.WithLabelValues(method, route, status).Inc()
				if route != RouteStatic {
					m.ResponseSize.WithLabelValues(route).Observe(float64(c.Response().Size))
				}
			}))

			err = next(c)
			timer.ObserveDuration()
			return err
		}
	}
}

// statusOf is the status the error handler will write for err. The
// middleware runs before it, so the response does not carry it yet.
func statusOf(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}
