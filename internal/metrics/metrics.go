// Package metrics exposes Prometheus instrumentation for grounding,
// disambiguation, caching and resource reloads. All methods are safe on a
// nil *Metrics so components can be built without instrumentation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "termground"

// Metrics owns a private registry and the collectors registered on it.
type Metrics struct {
	registry       *prometheus.Registry
	requests       *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	matches        prometheus.Histogram
	disambiguation *prometheus.CounterVec
	cache          *prometheus.CounterVec
	terms          prometheus.Gauge
	reloads        *prometheus.CounterVec
}

// New creates the collectors plus the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Grounding API requests by operation.",
		}, []string{"operation"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving an operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		matches: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matches_per_query",
			Help:      "Number of candidates returned by ground.",
			Buckets:   []float64{0, 1, 2, 3, 5, 10, 20, 50},
		}),
		disambiguation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disambiguations_total",
			Help:      "Disambiguation calls by backend type and outcome.",
		}, []string{"type", "outcome"}),
		cache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by result.",
		}, []string{"result"}),
		terms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "index_terms",
			Help:      "Terms in the active index snapshot.",
		}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reloads_total",
			Help:      "Resource reloads by outcome.",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(
		m.requests, m.latency, m.matches, m.disambiguation, m.cache, m.terms, m.reloads,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRequest counts one operation and its latency.
func (m *Metrics) ObserveRequest(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(operation).Inc()
	m.latency.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveMatches records the size of one ground result.
func (m *Metrics) ObserveMatches(n int) {
	if m == nil {
		return
	}
	m.matches.Observe(float64(n))
}

// Disambiguated counts a successful prediction.
func (m *Metrics) Disambiguated(kind string) {
	if m == nil {
		return
	}
	m.disambiguation.WithLabelValues(kind, "ok").Inc()
}

// DisambiguationFailed counts a predictor error.
func (m *Metrics) DisambiguationFailed(kind string) {
	if m == nil {
		return
	}
	m.disambiguation.WithLabelValues(kind, "error").Inc()
}

// CacheLookup counts a result cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cache.WithLabelValues(result).Inc()
}

// SetTerms records the size of the active snapshot.
func (m *Metrics) SetTerms(n int) {
	if m == nil {
		return
	}
	m.terms.Set(float64(n))
}

// Reloaded counts a snapshot rebuild.
func (m *Metrics) Reloaded(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.reloads.WithLabelValues(outcome).Inc()
}
