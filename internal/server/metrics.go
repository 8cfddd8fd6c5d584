package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mifile/internal/index"
)

const namespace = "mifile"

// Metrics holds the Prometheus collectors of one server. Each server owns a
// registry so several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SearchQueriesTotal  *prometheus.CounterVec
	SearchCandidates    prometheus.Histogram
	SearchPruned        prometheus.Histogram
	SearchSurvivors     prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	DocsIndexedTotal    prometheus.Counter
	IndexBuildsTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 10)
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "search_queries_total",
				Help:      "Total search queries by index (flat, mifile, cache).",
			},
			[]string{"index"},
		),
		SearchCandidates: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_candidates",
				Help:      "Distinct candidates that received posting evidence per MI-File query.",
				Buckets:   sizeBuckets,
			},
		),
		SearchPruned: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_pruned_candidates",
				Help:      "Candidates excluded by the score bound per MI-File query.",
				Buckets:   sizeBuckets,
			},
		),
		SearchSurvivors: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_survivors",
				Help:      "Candidates re-ranked by true distance per MI-File query.",
				Buckets:   sizeBuckets,
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of search cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of search cache misses.",
			},
		),
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "docs_indexed_total",
				Help:      "Total documents inserted.",
			},
		),
		IndexBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "index_builds_total",
				Help:      "Total index builds by status.",
			},
			[]string{"status"},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SearchQueriesTotal,
		m.SearchCandidates,
		m.SearchPruned,
		m.SearchSurvivors,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocsIndexedTotal,
		m.IndexBuildsTotal,
	)
	return m
}

// Handler returns the scrape handler for this server's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// observeQuery records the work of one MI-File query.
func (m *Metrics) observeQuery(stats *index.QueryStats) {
	if stats == nil {
		m.SearchQueriesTotal.WithLabelValues("flat").Inc()
		return
	}
	m.SearchQueriesTotal.WithLabelValues("mifile").Inc()
	m.SearchCandidates.Observe(float64(stats.Candidates))
	m.SearchPruned.Observe(float64(stats.Pruned))
	m.SearchSurvivors.Observe(float64(stats.Survivors))
}

// middleware counts and times every request by route.
func (m *Metrics) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
