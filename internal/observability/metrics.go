// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Classification metrics
	ClassificationsTotal *prometheus.CounterVec

	// Portfolio metrics
	PortfolioRequests     *prometheus.CounterVec
	PortfolioPagesFetched prometheus.Counter

	// Ingestion metrics
	IngestTicksTotal   *prometheus.CounterVec
	SandwichesIngested prometheus.Counter
	DuplicatesSkipped  prometheus.Counter

	// Latency metrics
	RPCCallLatency     *prometheus.HistogramVec
	IndexerCallLatency *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solspy"
	}

	return &Metrics{
		ClassificationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classifications_total",
			Help:      "Total address classifications by resolved kind.",
		}, []string{"kind"}),

		PortfolioRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_requests_total",
			Help:      "Total portfolio aggregations by outcome.",
		}, []string{"status"}),

		PortfolioPagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "portfolio_pages_fetched_total",
			Help:      "Total indexer asset pages fetched.",
		}),

		IngestTicksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_ticks_total",
			Help:      "Total sandwich ingestion ticks by outcome.",
		}, []string{"status"}),

		SandwichesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sandwiches_ingested_total",
			Help:      "Total new sandwich events persisted.",
		}),

		DuplicatesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sandwich_duplicates_skipped_total",
			Help:      "Total feed records skipped as already known.",
		}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_call_duration_seconds",
			Help:      "Solana RPC call latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),

		IndexerCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "indexer_call_duration_seconds",
			Help:      "Asset indexer / feed call latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// DefaultMetrics is the process-wide metrics instance.
var DefaultMetrics = NewMetrics("solspy")

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordClassification records a resolved classification kind.
func RecordClassification(kind string) {
	DefaultMetrics.ClassificationsTotal.WithLabelValues(kind).Inc()
}

// RecordPortfolioRequest records a portfolio aggregation outcome.
func RecordPortfolioRequest(status string, pages int) {
	DefaultMetrics.PortfolioRequests.WithLabelValues(status).Inc()
	DefaultMetrics.PortfolioPagesFetched.Add(float64(pages))
}

// RecordIngestTick records an ingestion tick outcome.
func RecordIngestTick(status string, inserted, duplicates int) {
	DefaultMetrics.IngestTicksTotal.WithLabelValues(status).Inc()
	DefaultMetrics.SandwichesIngested.Add(float64(inserted))
	DefaultMetrics.DuplicatesSkipped.Add(float64(duplicates))
}

// ObserveRPCCall records RPC call latency.
func ObserveRPCCall(method string, seconds float64) {
	DefaultMetrics.RPCCallLatency.WithLabelValues(method).Observe(seconds)
}

// ObserveIndexerCall records indexer call latency.
func ObserveIndexerCall(operation string, seconds float64) {
	DefaultMetrics.IndexerCallLatency.WithLabelValues(operation).Observe(seconds)
}
