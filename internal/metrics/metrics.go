// Package metrics provides the Prometheus metrics of the carrier sales service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// =============================================================================
// HTTP
// =============================================================================

// HTTPRequestsTotal counts served requests by route template and status code.
var HTTPRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "carrier_sales",
	Subsystem: "http",
	Name:      "requests_total",
	Help:      "HTTP requests by method, route and status code",
}, []string{"method", "route", "status"})

// HTTPRequestDurationSeconds tracks request latency by route template.
var HTTPRequestDurationSeconds = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "carrier_sales",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
}, []string{"method", "route"})

// RateLimitedTotal counts requests rejected by the global rate limiter.
var RateLimitedTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "carrier_sales",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected with 429 by the rate limiter",
})

// =============================================================================
// Domain
// =============================================================================

// LoadCatalogSize is the number of loads read at startup.
var LoadCatalogSize = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "carrier_sales",
	Name:      "load_catalog_size",
	Help:      "Number of loads in the catalog",
})

// LoadSearchResults tracks how many loads a search returns.
var LoadSearchResults = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "carrier_sales",
	Name:      "load_search_results",
	Help:      "Loads matched per search",
	Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
})

// CallRecordsTotal counts logged calls by outcome.
var CallRecordsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "carrier_sales",
	Name:      "call_records_total",
	Help:      "Call records appended, by outcome",
}, []string{"outcome"})

// CallStoreErrorsTotal counts call store failures by operation.
var CallStoreErrorsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "carrier_sales",
	Name:      "call_store_errors_total",
	Help:      "Call store failures by operation",
}, []string{"operation"})

// HandoffsTotal counts sales transfers by result ("ok" or "error").
var HandoffsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "carrier_sales",
	Name:      "handoffs_total",
	Help:      "Sales transfers by result",
}, []string{"result"})

// HandoffSinkOpen is 1 while the breaker of a hand-off sink is open.
var HandoffSinkOpen = factory.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "carrier_sales",
	Name:      "handoff_sink_open",
	Help:      "Whether a hand-off sink is paused after repeated failures",
}, []string{"sink"})
