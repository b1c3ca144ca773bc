// Package monitoring exposes Prometheus collectors for the API and the analytics engine.
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics represents the monitoring system
type Metrics struct {
	// HTTP metrics
	requestDuration *prometheus.HistogramVec
	requestCount    *prometheus.CounterVec
	errorCount      *prometheus.CounterVec

	// Analytics metrics
	rankingDuration prometheus.Histogram
	rankedRecords   prometheus.Histogram
	viewCacheHits   *prometheus.CounterVec
	solverRuns      *prometheus.CounterVec

	// Market metrics
	marketRate prometheus.Gauge
	digestSent prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewMetrics creates a new metrics collector registered on reg.
// A nil reg uses a private registry.
func NewMetrics(namespace string, reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)
	return &Metrics{
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"route", "method", "status"},
		),
		requestCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		errorCount: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "error_count_total",
				Help:      "Total number of errors",
			},
			[]string{"type"},
		),
		rankingDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ranking_duration_seconds",
				Help:      "Duration of ranking passes",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
			},
		),
		rankedRecords: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "ranked_records",
				Help:      "Number of records in a ranked view",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		viewCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_cache_lookups_total",
				Help:      "Ranked view cache lookups by result",
			},
			[]string{"result"},
		),
		solverRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "solver_runs_total",
				Help:      "Buying power solver runs by limiting constraint",
			},
			[]string{"constraint"},
		),
		marketRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "market_mortgage_rate",
				Help:      "Latest observed 30-year mortgage rate (fraction)",
			},
		),
		digestSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "digest_emails_sent_total",
				Help:      "Top-pick digest emails sent",
			},
		),
		gatherer: reg,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(route, method, code).Observe(duration.Seconds())
	m.requestCount.WithLabelValues(route, method, code).Inc()
}

// RecordError records an error by type
func (m *Metrics) RecordError(errorType string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(errorType).Inc()
}

// RecordRanking records a ranking pass
func (m *Metrics) RecordRanking(duration time.Duration, records int) {
	if m == nil {
		return
	}
	m.rankingDuration.Observe(duration.Seconds())
	m.rankedRecords.Observe(float64(records))
}

// RecordViewCache records a cache lookup
func (m *Metrics) RecordViewCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.viewCacheHits.WithLabelValues(result).Inc()
}

// RecordSolver records a buying power computation
func (m *Metrics) RecordSolver(constraint string) {
	if m == nil {
		return
	}
	m.solverRuns.WithLabelValues(constraint).Inc()
}

// SetMarketRate records the latest market rate
func (m *Metrics) SetMarketRate(rate float64) {
	if m == nil {
		return
	}
	m.marketRate.Set(rate)
}

// RecordDigest records a sent digest email
func (m *Metrics) RecordDigest() {
	if m == nil {
		return
	}
	m.digestSent.Inc()
}
