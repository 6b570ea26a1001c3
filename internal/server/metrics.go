package server

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	// requestsTotal counts HTTP requests.
	// Labels: route (gin route pattern, "unmatched" for 404s), code
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyroot",
		Subsystem: "server",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status code",
	}, []string{"route", "code"})

	// toolCallsTotal counts tool calls.
	// Labels: tool, status (ok, error)
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "polyroot",
		Subsystem: "server",
		Name:      "tool_calls_total",
		Help:      "Total tool calls by tool and status",
	}, []string{"tool", "status"})

	// solveDuration measures FindAllRoots latency.
	// Labels: outcome (ok, invalid, non_finite)
	solveDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "polyroot",
		Subsystem: "solver",
		Name:      "duration_seconds",
		Help:      "Root finding latency in seconds",
		Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"outcome"})

	// rootsFound tracks how many roots a successful search returned.
	rootsFound = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyroot",
		Subsystem: "solver",
		Name:      "roots_found",
		Help:      "Number of real roots returned per search",
		Buckets:   []float64{0, 1, 2, 3, 4, 6, 8, 12, 16, 32},
	})

	// missingRoots tracks degree minus roots found. Complex pairs,
	// repeated roots and unseeded basins all land here.
	missingRoots = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "polyroot",
		Subsystem: "solver",
		Name:      "unreported_roots",
		Help:      "Polynomial degree minus number of roots returned",
		Buckets:   []float64{0, 1, 2, 4, 8, 16},
	})
)

// =============================================================================
// Metrics Recording Functions
// =============================================================================

// RecordRequest records a finished HTTP request.
func RecordRequest(route string, code int) {
	requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// RecordToolCall records a tool call by outcome.
func RecordToolCall(tool string, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	toolCallsTotal.WithLabelValues(tool, status).Inc()
}

// RecordSolve records one FindAllRoots call. degree and found are ignored
// for invalid input.
func RecordSolve(outcome string, durationSec float64, degree, found int) {
	solveDuration.WithLabelValues(outcome).Observe(durationSec)
	if outcome != "ok" {
		return
	}
	rootsFound.Observe(float64(found))
	missingRoots.Observe(float64(degree - found))
}
