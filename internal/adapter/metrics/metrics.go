// Package metrics defines the Prometheus collectors of the service. Each
// component gets its own metric set, registered on a shared registry.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pscheid92/lingobridge/internal/platform/version"
)

const namespace = "lingobridge"

// NewRegistry returns a registry with the runtime collectors and a
// build_info gauge describing info.
func NewRegistry(info version.Info) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		buildInfo(info),
	)
	return reg
}

func buildInfo(info version.Info) prometheus.Collector {
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "build_info",
		Help:      "Build of the running binary. Always 1.",
	}, []string{"version", "commit", "go_version"})
	g.WithLabelValues(info.Version, info.ShortCommit(), info.GoVersion).Set(1)
	return g
}

// Handler serves the registry. Scrape failures are counted on the registry itself.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
