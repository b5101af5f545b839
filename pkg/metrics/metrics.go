// Package metrics exposes Prometheus metrics for the nearest-cities API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Provider struct {
	reg       *prometheus.Registry
	buildInfo *prometheus.GaugeVec
}

func New(version string) *Provider {
	reg := prometheus.NewRegistry()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	build := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_build_info",
			Help: "Build info for this binary (value is always 1).",
		},
		[]string{"version"},
	)
	reg.MustRegister(build)
	if version == "" {
		version = "dev"
	}
	build.WithLabelValues(version).Set(1)

	return &Provider{reg: reg, buildInfo: build}
}

func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

func (p *Provider) Register(cs ...prometheus.Collector) {
	for _, c := range cs {
		p.reg.MustRegister(c)
	}
}

const (
	OpInsert = "insert"
	OpDelete = "delete"
)

// CityMetrics are the service level metrics of the city index and the nearest query.
type CityMetrics struct {
	IndexSize         prometheus.Gauge
	IndexMutations    *prometheus.CounterVec
	NearestDuration   prometheus.Histogram
	DroppedCandidates prometheus.Counter
}

func NewCityMetrics(p *Provider) *CityMetrics {
	m := &CityMetrics{
		IndexSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "cities_index_size",
			Help: "Number of entries in the spatial index.",
		}),
		IndexMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cities_index_mutations_total",
			Help: "Spatial index inserts and deletes.",
		}, []string{"op"}),
		NearestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cities_nearest_duration_seconds",
			Help:    "Duration of nearest-cities queries in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100us to ~0.8s
		}),
		DroppedCandidates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cities_nearest_dropped_candidates_total",
			Help: "Index candidates that were missing from the store during a nearest query.",
		}),
	}
	p.Register(m.IndexSize, m.IndexMutations, m.NearestDuration, m.DroppedCandidates)
	return m
}

func (m *CityMetrics) ObserveMutation(op string, indexSize int) {
	m.IndexMutations.WithLabelValues(op).Inc()
	m.IndexSize.Set(float64(indexSize))
}

func (m *CityMetrics) ObserveNearest(durationSeconds float64, dropped int) {
	m.NearestDuration.Observe(durationSeconds)
	if dropped > 0 {
		m.DroppedCandidates.Add(float64(dropped))
	}
}
