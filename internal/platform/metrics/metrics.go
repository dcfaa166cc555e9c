// Package metrics exposes the service's Prometheus collectors on a
// dedicated registry, following the same registration shape the gpsnav
// pack member uses for its HTTP and webhook metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated registry for this service's metrics.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)

	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OperationDuration records internal operation durations (routing
	// queries, geocoding, sequencing) in seconds.
	OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "dispatch_operation_duration_seconds", Help: "Internal operation duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"operation", "status"},
	)

	// DispatchOutcomes counts single-order dispatch verdicts by kind.
	DispatchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_outcomes_total", Help: "Dispatch verdicts by outcome kind."},
		[]string{"kind"},
	)

	// BatchAssigned counts orders assigned vs. unassigned across batch runs.
	BatchAssigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "dispatch_batch_orders_total", Help: "Batch dispatch orders by status."},
		[]string{"status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers every collector exactly once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OperationDuration)
		Registry.MustRegister(DispatchOutcomes)
		Registry.MustRegister(BatchAssigned)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
