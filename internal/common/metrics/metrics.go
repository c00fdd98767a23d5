// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of generation requests by endpoint and status code",
		},
		[]string{"endpoint", "status"},
	)

	RequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_failed_total",
			Help: "Total number of failed generation requests by error code",
		},
		[]string{"endpoint", "error_code"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "Duration of generation requests in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	RequestsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gateway_requests_active",
			Help: "Number of in-flight requests per endpoint",
		},
		[]string{"endpoint"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_generation_duration_seconds",
			Help:    "Duration of calls to the generation service in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model", "status"},
	)

	UploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_upload_bytes",
			Help:    "Size of uploaded attachments in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
		[]string{"modality"},
	)
)
