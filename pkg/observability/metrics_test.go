package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// TestMetricsRegistered verifies that all metrics are registered in the
// default registry without panicking.
func TestMetricsRegistered(t *testing.T) {
	expected := map[string]bool{
		"listora_requests_total":               false,
		"listora_request_duration_seconds":     false,
		"listora_generations_total":            false,
		"listora_generation_duration_seconds":  false,
		"listora_ai_requests_total":            false,
		"listora_ai_latency_seconds":           false,
		"listora_ai_tokens_total":              false,
		"listora_upload_bytes_total":           false,
		"listora_ratelimit_rejected_total":     false,
	}

	// Counters and histograms only appear after first observation, so seed
	// every metric before gathering.
	RequestsTotal.WithLabelValues("GET", "2xx", "test").Inc()
	RequestDuration.WithLabelValues("GET", "test").Observe(0.1)
	GenerationsTotal.WithLabelValues("amazon_in", "success").Inc()
	GenerationDuration.WithLabelValues("render").Observe(0.1)
	AIRequestsTotal.WithLabelValues("generate", "test", "success").Inc()
	AILatency.WithLabelValues("generate", "test").Observe(0.1)
	AITokensTotal.WithLabelValues("test", "input").Add(10)
	UploadBytesTotal.WithLabelValues("image").Add(1024)
	RateLimitRejectedTotal.WithLabelValues("default").Inc()

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("unexpected gather error: %v", err)
	}

	for _, mf := range families {
		if _, ok := expected[mf.GetName()]; ok {
			expected[mf.GetName()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("metric %q not found in default registry", name)
		}
	}
}

// TestMiddlewareRecordsRequestCount verifies that the middleware increments
// the request counter for each served request.
func TestMiddlewareRecordsRequestCount(t *testing.T) {
	before := counterValue(t, RequestsTotal, "GET", "2xx", "unmatched")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/v1/drafts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	after := counterValue(t, RequestsTotal, "GET", "2xx", "unmatched")
	if after-before != 1 {
		t.Errorf("expected request count to increase by 1, got delta=%f", after-before)
	}
}

// TestMiddlewareRecordsDuration verifies that the middleware records
// a positive request duration observation.
func TestMiddlewareRecordsDuration(t *testing.T) {
	before := histogramCount(t, RequestDuration, "POST", "unmatched")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/v1/drafts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	after := histogramCount(t, RequestDuration, "POST", "unmatched")
	if after-before != 1 {
		t.Errorf("expected histogram sample count to increase by 1, got delta=%d", after-before)
	}
}

// TestMiddlewareCapturesStatusCode verifies that non-200 status codes are
// captured correctly in the status label.
func TestMiddlewareCapturesStatusCode(t *testing.T) {
	before := counterValue(t, RequestsTotal, "POST", "4xx", "unmatched")

	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))

	req := httptest.NewRequest("POST", "/v1/drafts", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	after := counterValue(t, RequestsTotal, "POST", "4xx", "unmatched")
	if after-before != 1 {
		t.Errorf("expected 4xx count to increase by 1, got delta=%f", after-before)
	}
}

// TestRecordAICall verifies counter and token accounting for AI calls.
func TestRecordAICall(t *testing.T) {
	beforeOK := counterValue(t, AIRequestsTotal, "vision", "vision-model", "success")
	beforeErr := counterValue(t, AIRequestsTotal, "vision", "vision-model", "error")
	beforeIn := counterValue(t, AITokensTotal, "vision-model", "input")

	RecordAICall("vision", "vision-model", 50*time.Millisecond,
		AITokenUsage{PromptTokens: 100, CompletionTokens: 40}, nil)
	RecordAICall("vision", "vision-model", 50*time.Millisecond,
		AITokenUsage{}, errors.New("backend down"))

	if d := counterValue(t, AIRequestsTotal, "vision", "vision-model", "success") - beforeOK; d != 1 {
		t.Errorf("success counter delta = %f, want 1", d)
	}
	if d := counterValue(t, AIRequestsTotal, "vision", "vision-model", "error") - beforeErr; d != 1 {
		t.Errorf("error counter delta = %f, want 1", d)
	}
	if d := counterValue(t, AITokensTotal, "vision-model", "input") - beforeIn; d != 100 {
		t.Errorf("input token delta = %f, want 100", d)
	}
}

// counterValue reads the current value of a CounterVec for the given labels.
func counterValue(t *testing.T, cv *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	m := &dto.Metric{}
	c, err := cv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting counter metric: %v", err)
	}
	if err := c.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing counter metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

// histogramCount reads the observation count from a HistogramVec.
func histogramCount(t *testing.T, hv *prometheus.HistogramVec, labels ...string) uint64 {
	t.Helper()
	m := &dto.Metric{}
	obs, err := hv.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("getting histogram metric: %v", err)
	}
	if err := obs.(prometheus.Metric).Write(m); err != nil {
		t.Fatalf("writing histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}
