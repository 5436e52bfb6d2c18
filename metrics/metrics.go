// Package metrics registers the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	ChainCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_calls_total",
		Help: "Contract reads by method and result.",
	}, []string{"method", "result"})

	EnrichmentFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "enrichment_failures_total",
		Help: "Per-item marketplace enrichment failures that fell back to partial data.",
	}, []string{"stage"})

	OrderEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_total",
		Help: "Ledger events received by the listener.",
	}, []string{"event"})
)

// ObserveChainCall records the outcome of a contract read.
func ObserveChainCall(method string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ChainCalls.WithLabelValues(method, result).Inc()
}
