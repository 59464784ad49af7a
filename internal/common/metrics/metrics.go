// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RelayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_requests_total",
			Help: "Total number of requests handled per endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	RelayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_request_duration_seconds",
			Help:    "Duration of request handling in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	RelayRequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relay_requests_active",
			Help: "Number of in-flight requests per endpoint",
		},
		[]string{"endpoint"},
	)

	OutboundCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_outbound_calls_total",
			Help: "Outbound calls to webhooks and the report generator",
		},
		[]string{"target", "result"},
	)

	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_fallbacks_total",
			Help: "Simulated agent responses substituted for failed webhook calls",
		},
		[]string{"endpoint"},
	)

	CallbackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_events_total",
			Help: "Agent callbacks received per status",
		},
		[]string{"status"},
	)
)
