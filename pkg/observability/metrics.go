// Package observability provides Prometheus metrics and HTTP middleware
// for monitoring the listora service.
package observability

import "github.com/prometheus/client_golang/prometheus"

// AIBuckets defines histogram buckets suited for AI inference latencies,
// ranging from 100ms to 120s.
var AIBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listora_request_duration_seconds",
			Help:    "Request duration",
			Buckets: AIBuckets,
		},
		[]string{"method", "route"},
	)

	// GenerationsTotal counts listing generations by marketplace and outcome.
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_generations_total",
			Help: "Listing generations",
		},
		[]string{"marketplace", "status"},
	)

	// GenerationDuration records the duration of a generation stage in seconds.
	GenerationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listora_generation_duration_seconds",
			Help:    "Generation stage duration",
			Buckets: AIBuckets,
		},
		[]string{"stage"},
	)

	// AIRequestsTotal counts requests sent to the AI backend.
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_ai_requests_total",
			Help: "AI backend requests",
		},
		[]string{"operation", "model", "status"},
	)

	// AILatency records AI backend latency in seconds.
	AILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "listora_ai_latency_seconds",
			Help:    "AI backend latency",
			Buckets: AIBuckets,
		},
		[]string{"operation", "model"},
	)

	// AITokensTotal counts tokens processed by direction (input/output).
	AITokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_ai_tokens_total",
			Help: "Token count",
		},
		[]string{"model", "direction"},
	)

	// UploadBytesTotal counts accepted upload bytes by kind (image/audio).
	UploadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_upload_bytes_total",
			Help: "Accepted upload bytes",
		},
		[]string{"kind"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listora_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		GenerationsTotal,
		GenerationDuration,
		AIRequestsTotal,
		AILatency,
		AITokensTotal,
		UploadBytesTotal,
		RateLimitRejectedTotal,
	)
}
