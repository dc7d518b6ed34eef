// Package metrics provides Prometheus metrics for the portfolio dev server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "portfolio"
)

// HTTP metrics
var (
	// HTTPRequestsTotal counts HTTP requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks HTTP request latency.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// HTTPRequestsInFlight tracks concurrent HTTP requests.
	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being processed",
		},
	)
)

// RPC metrics
var (
	// RPCCallsTotal counts dispatched actions by outcome.
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "calls_total",
			Help:      "Total RPC actions dispatched, by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	// RPCCallDuration tracks how long each action takes to dispatch,
	// including simulated mock latency.
	RPCCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "rpc",
			Name:      "call_duration_seconds",
			Help:      "RPC action latency in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, .75, 1, 2.5, 5, 10, 30},
		},
		[]string{"action"},
	)
)

// Mock backend metrics
var (
	// MockIdeas tracks how many ideas the mock backend holds.
	MockIdeas = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mock",
			Name:      "ideas",
			Help:      "Number of ideas held by the mock backend",
		},
	)
)

// Outcome labels for RPCCallsTotal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ObserveRPC records one dispatched action.
func ObserveRPC(action string, success bool, elapsed time.Duration) {
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	RPCCallsTotal.WithLabelValues(action, outcome).Inc()
	RPCCallDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}
