package observability

import (
	"net/http"
	"strconv"
	"time"
)

// MetricsMiddleware wraps an HTTP handler to record request metrics.
//
// It captures:
//   - listora_requests_total (counter): incremented per request with method, status class, and route labels
//   - listora_request_duration_seconds (histogram): request duration with method and route labels
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()

		// Use the matched route pattern as the label so draft IDs do not
		// explode metric cardinality.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		// Build a status class label like "2xx", "4xx", "5xx".
		statusStr := strconv.Itoa(sw.status/100) + "xx"

		RequestsTotal.WithLabelValues(r.Method, statusStr, route).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(duration)
	})
}

// RecordAICall records counter, latency, and token metrics for one AI
// backend call.
func RecordAICall(operation, model string, duration time.Duration, usage AITokenUsage, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AIRequestsTotal.WithLabelValues(operation, model, status).Inc()
	AILatency.WithLabelValues(operation, model).Observe(duration.Seconds())

	if usage.PromptTokens > 0 {
		AITokensTotal.WithLabelValues(model, "input").Add(float64(usage.PromptTokens))
	}
	if usage.CompletionTokens > 0 {
		AITokensTotal.WithLabelValues(model, "output").Add(float64(usage.CompletionTokens))
	}
}

// AITokenUsage carries token counts into RecordAICall without importing
// the provider package.
type AITokenUsage struct {
	PromptTokens     int
	CompletionTokens int
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status  int
	written bool
}

// WriteHeader captures the status code and delegates to the underlying writer.
func (w *statusWriter) WriteHeader(status int) {
	if !w.written {
		w.status = status
		w.written = true
	}
	w.ResponseWriter.WriteHeader(status)
}

// Write delegates to the underlying writer and marks the status as written.
func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap returns the underlying ResponseWriter, enabling http.ResponseController
// and similar utilities to access the original writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
