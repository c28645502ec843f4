// Package metrics provides Prometheus metrics for thread store operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "thread_store_operations_total",
			Help: "Total number of thread store operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "thread_store_operation_duration_seconds",
			Help:    "Thread store operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)

	operationsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "thread_store_operations_in_flight",
			Help: "Number of thread store operations currently being processed",
		},
	)
)

// Track marks an operation as started. Call the returned func with the
// operation's final error when it completes.
func Track(operation string) func(err error) {
	start := time.Now()
	operationsInFlight.Inc()
	return func(err error) {
		operationsInFlight.Dec()
		status := StatusOK
		if err != nil {
			status = StatusError
		}
		operationsTotal.WithLabelValues(operation, status).Inc()
		operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
