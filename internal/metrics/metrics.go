// Package metrics provides Prometheus metrics for the engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "legalconnect"

var (
	// HTTPRequests counts requests by route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// SwipeDecisions counts committed browse transitions.
	SwipeDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swipe_decisions_total",
			Help:      "Committed accept/skip decisions by input source",
		},
		[]string{"decision", "input"},
	)

	FilterResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_result_count",
			Help:      "Distribution of filtered result sizes",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	CSVExports = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "csv_exports_total",
			Help:      "Total number of shortlist CSV exports",
		},
	)

	AuthFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected authentication attempts by reason",
		},
		[]string{"reason"},
	)

	RosterSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "roster_lawyers",
			Help:      "Number of lawyers in the roster",
		},
	)

	BrowseSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "browse_sessions",
			Help:      "Live browse sessions held in memory",
		},
	)

	SSEClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sse_clients",
			Help:      "Connected /events subscribers",
		},
	)

	SSEDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sse_dropped_events_total",
			Help:      "Events dropped because a subscriber fell behind",
		},
	)
)

// RecordRequest records one served HTTP request.
func RecordRequest(method, route, status string, seconds float64) {
	HTTPRequests.WithLabelValues(method, route, status).Inc()
	HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// RecordDecision records a committed browse transition.
func RecordDecision(decision, input string) {
	SwipeDecisions.WithLabelValues(decision, input).Inc()
}

func RecordAuthFailure(reason string) {
	AuthFailures.WithLabelValues(reason).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }
