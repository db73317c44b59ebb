// Package metrics exposes Prometheus instruments for summary builds and
// document store reads.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tyotilasto"

// Metrics groups the collectors registered on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	pairFailures  *prometheus.CounterVec
	builds        prometheus.Counter
	buildDuration prometheus.Histogram
	cacheResults  *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "series_fetches_total",
			Help:      "Series reads from the document store by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "series_fetch_duration_seconds",
			Help:      "Latency of a single series read.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"region"}),
		pairFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_pair_failures_total",
			Help:      "Region/indicator pairs omitted from a summary, by failure kind.",
		}, []string{"kind"}),
		builds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_builds_total",
			Help:      "Completed summary builds.",
		}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "summary_build_duration_seconds",
			Help:      "Wall time of a full summary build.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		cacheResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_requests_total",
			Help:      "Summary cache lookups by result.",
		}, []string{"result"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_events_total",
			Help:      "Data refresh notifications handled, by source.",
		}, []string{"source"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.fetches, m.fetchDuration, m.pairFailures,
		m.builds, m.buildDuration, m.cacheResults, m.refreshes,
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one series read.
func (m *Metrics) ObserveFetch(region, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.fetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.WithLabelValues(region).Observe(d.Seconds())
}

// PairFailed counts an omitted pair.
func (m *Metrics) PairFailed(kind string) {
	if m == nil {
		return
	}
	m.pairFailures.WithLabelValues(kind).Inc()
}

// ObserveBuild records a finished summary build.
func (m *Metrics) ObserveBuild(d time.Duration) {
	if m == nil {
		return
	}
	m.builds.Inc()
	m.buildDuration.Observe(d.Seconds())
}

// CacheHit and CacheMiss count summary cache lookups.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheResults.WithLabelValues("hit").Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheResults.WithLabelValues("miss").Inc()
	}
}

// Refreshed counts a handled refresh notification.
func (m *Metrics) Refreshed(source string) {
	if m != nil {
		m.refreshes.WithLabelValues(source).Inc()
	}
}
