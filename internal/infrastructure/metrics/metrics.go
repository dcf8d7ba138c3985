// Package metrics provides Prometheus metrics for the relay-api service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts inbound HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration tracks inbound request latency.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"method", "endpoint"},
	)

	// TurnsTotal counts relayed turns by kind and classifier outcome.
	TurnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "api",
			Name:      "turns_total",
			Help:      "Total turns relayed to the workflow",
		},
		[]string{"kind", "outcome"},
	)

	// UpstreamResponses counts workflow responses by status class.
	UpstreamResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "webhook",
			Name:      "responses_total",
			Help:      "Workflow responses by status class",
		},
		[]string{"kind", "status_class"},
	)

	// UpstreamDuration tracks workflow call latency.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "relay",
			Subsystem: "webhook",
			Name:      "duration_seconds",
			Help:      "Workflow call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"kind"},
	)

	// ClipBytesTotal counts bytes of stored audio clips.
	ClipBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "relay",
			Subsystem: "audio",
			Name:      "clip_bytes_total",
			Help:      "Total bytes of audio clips served",
		},
	)
)

// RecordRequest records an HTTP request.
func RecordRequest(method, endpoint string, status int, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordTurn records a relayed turn.
func RecordTurn(kind, outcome string) {
	TurnsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordUpstream records a workflow call. status 0 means a transport failure.
func RecordUpstream(kind string, status int, durationSec float64) {
	UpstreamResponses.WithLabelValues(kind, StatusClass(status)).Inc()
	UpstreamDuration.WithLabelValues(kind).Observe(durationSec)
}

// RecordClipServed records bytes of a served clip.
func RecordClipServed(bytes int) {
	ClipBytesTotal.Add(float64(bytes))
}

// StatusClass maps a status code to 2xx/4xx/5xx, or "error" for 0.
func StatusClass(status int) string {
	if status <= 0 {
		return "error"
	}
	return strconv.Itoa(status/100) + "xx"
}
