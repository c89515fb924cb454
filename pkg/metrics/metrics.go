// Package metrics defines the Prometheus collectors shared by the indexer,
// the search engine and the HTTP service, and exposes a scrape handler.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all collectors. The helper methods are safe on a nil
// receiver so components can run without instrumentation.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	SearchQueriesTotal   *prometheus.CounterVec
	SearchLatency        prometheus.Histogram
	SearchResultsCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	DocsIndexedTotal     *prometheus.CounterVec
	PostingsWrittenTotal prometheus.Counter
	IndexRunDuration     prometheus.Histogram
	TFIDFLookupsTotal    *prometheus.CounterVec
	SynonymRequestsTotal *prometheus.CounterVec
	CircuitBreakerState  *prometheus.GaugeVec
}

// New creates all collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Search queries by outcome (ok, zero_result, error).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Time to rank one query.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of ranked documents per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Documents processed by the indexer, by status.",
			},
			[]string{"status"},
		),
		PostingsWrittenTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "postings_written_total",
				Help: "Term frequency postings persisted by the indexer.",
			},
		),
		IndexRunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "index_run_duration_seconds",
				Help:    "Wall time of a full indexing run.",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		TFIDFLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tfidf_lookups_total",
				Help: "tf-idf posting lookups by source (memoized, computed).",
			},
			[]string{"source"},
		),
		SynonymRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synonym_requests_total",
				Help: "Synonym expansion requests by status.",
			},
			[]string{"status"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.PostingsWrittenTotal,
		m.IndexRunDuration,
		m.TFIDFLookupsTotal,
		m.SynonymRequestsTotal,
		m.CircuitBreakerState,
	)
	return m
}

func (m *Metrics) ObserveSearch(outcome string, elapsed time.Duration, results int) {
	if m == nil {
		return
	}
	m.SearchQueriesTotal.WithLabelValues(outcome).Inc()
	m.SearchLatency.Observe(elapsed.Seconds())
	m.SearchResultsCount.Observe(float64(results))
}

func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

func (m *Metrics) DocumentIndexed(ok bool, postings int) {
	if m == nil {
		return
	}
	status := "indexed"
	if !ok {
		status = "failed"
	}
	m.DocsIndexedTotal.WithLabelValues(status).Inc()
	m.PostingsWrittenTotal.Add(float64(postings))
}

func (m *Metrics) ObserveIndexRun(elapsed time.Duration) {
	if m != nil {
		m.IndexRunDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) TFIDFLookup(source string) {
	if m != nil {
		m.TFIDFLookupsTotal.WithLabelValues(source).Inc()
	}
}

func (m *Metrics) SynonymRequest(status string) {
	if m != nil {
		m.SynonymRequestsTotal.WithLabelValues(status).Inc()
	}
}

func (m *Metrics) SetBreakerState(name string, state int) {
	if m != nil {
		m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
	}
}

// Handler returns the scrape handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
