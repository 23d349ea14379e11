package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tubestream",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tubestream",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tubestream",
			Subsystem: "extractor",
			Name:      "calls_total",
			Help:      "Extraction adapter calls by operation, backend and outcome",
		},
		[]string{"operation", "backend", "outcome"},
	)

	ExtractionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tubestream",
			Subsystem: "extractor",
			Name:      "call_duration_seconds",
			Help:      "Extraction adapter call duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"operation", "backend"},
	)
)

// Outcomes recorded for extraction calls.
const (
	OutcomeOK         = "ok"
	OutcomeExtraction = "extraction_error"
	OutcomeUnexpected = "unexpected_error"
)

// RecordRequest records a served HTTP request.
func RecordRequest(method, route, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, route, status).Inc()
	RequestDuration.WithLabelValues(method, route).Observe(durationSec)
}

// RecordExtraction records one adapter call.
func RecordExtraction(operation, backend, outcome string, durationSec float64) {
	ExtractionsTotal.WithLabelValues(operation, backend, outcome).Inc()
	ExtractionDuration.WithLabelValues(operation, backend).Observe(durationSec)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
