package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of the HTTP server.
type Metrics struct {
	Computations    *prometheus.CounterVec
	RegionsFlagged  prometheus.Counter
	ComputeDuration prometheus.Histogram
	CacheHits       prometheus.Counter
}

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Computations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "neededschools_computations_total",
			Help: "Total number of needs computations, by outcome",
		}, []string{"outcome"}),
		RegionsFlagged: f.NewCounter(prometheus.CounterOpts{
			Name: "neededschools_regions_flagged_total",
			Help: "Total number of regions flagged for bad input or geometry",
		}),
		ComputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "neededschools_compute_duration_seconds",
			Help:    "Time spent reading sources and aggregating",
			Buckets: prometheus.DefBuckets,
		}),
		CacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: "neededschools_cache_hits_total",
			Help: "Requests served from cached results",
		}),
	}
}

// ObserveComputation records one computation. flagged is ignored on error.
func (m *Metrics) ObserveComputation(seconds float64, flagged int, err error) {
	m.ComputeDuration.Observe(seconds)
	if err != nil {
		m.Computations.WithLabelValues("error").Inc()
		return
	}
	m.Computations.WithLabelValues("ok").Inc()
	m.RegionsFlagged.Add(float64(flagged))
}
