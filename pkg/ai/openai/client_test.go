package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "test-key", 5*time.Second)
	c.retryDelay = time.Millisecond
	return c, srv
}

func chatResponse(content string) ChatCompletionResponse {
	return ChatCompletionResponse{
		ID:    "chatcmpl-test-123",
		Model: "test-model",
		Choices: []ChatChoice{
			{
				Index:        0,
				Message:      ChatResponseMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: &ChatUsage{PromptTokens: 12, CompletionTokens: 9, TotalTokens: 21},
	}
}

func TestClient_Generate(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Verify request.
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("expected path /v1/chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Authorization header, got %q", r.Header.Get("Authorization"))
		}

		var chatReq ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if chatReq.Model != "test-model" {
			t.Errorf("expected model %q, got %q", "test-model", chatReq.Model)
		}
		if chatReq.N != 1 {
			t.Errorf("expected N=1, got %d", chatReq.N)
		}
		if chatReq.Stream {
			t.Error("expected stream to be false")
		}
		if len(chatReq.Messages) != 2 {
			t.Fatalf("expected system + user messages, got %d", len(chatReq.Messages))
		}
		if chatReq.Messages[0].Role != "system" || chatReq.Messages[1].Role != "user" {
			t.Errorf("unexpected message roles: %+v", chatReq.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("Generated text."))
	}))

	temp := 0.7
	resp, err := c.Generate(context.Background(), &ai.GenerateRequest{
		Model:       "test-model",
		System:      "You are a copywriter.",
		Prompt:      "Write a description.",
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if resp.Text != "Generated text." {
		t.Errorf("expected text %q, got %q", "Generated text.", resp.Text)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 21 {
		t.Errorf("unexpected usage: %+v", resp.Usage)
	}
}

func TestClient_AnalyzeImage_DataURL(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw struct {
			Messages []struct {
				Role    string            `json:"role"`
				Content []ChatContentPart `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		if len(raw.Messages) != 1 || len(raw.Messages[0].Content) != 2 {
			t.Fatalf("expected one message with text + image parts, got %+v", raw.Messages)
		}

		text := raw.Messages[0].Content[0]
		if text.Type != "text" || text.Text == "" {
			t.Errorf("unexpected text part: %+v", text)
		}

		img := raw.Messages[0].Content[1]
		if img.Type != "image_url" || img.ImageURL == nil {
			t.Fatalf("unexpected image part: %+v", img)
		}
		if !strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,") {
			t.Errorf("expected base64 data URL, got %q", img.ImageURL.URL)
		}

		json.NewEncoder(w).Encode(chatResponse(`{"product_name": "Bottle"}`))
	}))

	resp, err := c.AnalyzeImage(context.Background(), &ai.VisionRequest{
		Model:    "vision-model",
		Prompt:   "Analyze this product image.",
		Image:    []byte{0x89, 0x50, 0x4e, 0x47},
		MIMEType: "image/png",
	})
	if err != nil {
		t.Fatalf("AnalyzeImage failed: %v", err)
	}
	if !strings.Contains(resp.Text, "Bottle") {
		t.Errorf("unexpected response text: %q", resp.Text)
	}
}

func TestClient_Transcribe_MultipartForm(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("expected path /v1/audio/transcriptions, got %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("expected model whisper-1, got %q", got)
		}
		if got := r.FormValue("language"); got != "en" {
			t.Errorf("expected language en, got %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "note.mp3" {
			t.Errorf("expected filename note.mp3, got %q", header.Filename)
		}

		json.NewEncoder(w).Encode(TranscriptionResponse{Text: "red cotton shirt", Language: "en"})
	}))

	resp, err := c.Transcribe(context.Background(), &ai.TranscribeRequest{
		Model:    "whisper-1",
		Filename: "note.mp3",
		Audio:    []byte("fake-audio-bytes"),
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if resp.Text != "red cotton shirt" {
		t.Errorf("expected transcript text, got %q", resp.Text)
	}
}

func TestClient_RetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(chatResponse("recovered"))
	}))

	resp, err := c.Generate(context.Background(), &ai.GenerateRequest{Model: "m", Prompt: "p"})
	if err != nil {
		t.Fatalf("Generate should succeed after retry: %v", err)
	}
	if resp.Text != "recovered" {
		t.Errorf("expected retried response, got %q", resp.Text)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestClient_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit_error"},
		})
	}))

	_, err := c.Generate(context.Background(), &ai.GenerateRequest{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}

	apiErr, ok := err.(*api.APIError)
	if !ok {
		t.Fatalf("expected *api.APIError, got %T", err)
	}
	if apiErr.Type != api.ErrorTypeTooManyRequests {
		t.Errorf("expected too_many_requests, got %s", apiErr.Type)
	}
	if apiErr.Message != "rate limited" {
		t.Errorf("expected backend message passed through, got %q", apiErr.Message)
	}
}

func TestClient_NoRetryOnBadRequest(t *testing.T) {
	var calls atomic.Int32
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "bad prompt", "type": "invalid_request_error"},
		})
	}))

	_, err := c.Generate(context.Background(), &ai.GenerateRequest{Model: "m", Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("4xx must not retry, got %d calls", calls.Load())
	}

	apiErr, ok := err.(*api.APIError)
	if !ok {
		t.Fatalf("expected *api.APIError, got %T", err)
	}
	if apiErr.Type != api.ErrorTypeInvalidRequest {
		t.Errorf("expected invalid_request, got %s", apiErr.Type)
	}
}

func TestClient_ListModels(t *testing.T) {
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			t.Errorf("expected path /v1/models, got %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ChatModelsResponse{
			Object: "list",
			Data: []ChatModel{
				{ID: "gpt-4-1106-preview", Object: "model", OwnedBy: "openai"},
				{ID: "whisper-1", Object: "model", OwnedBy: "openai"},
			},
		})
	}))

	models, err := c.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("expected 2 models, got %d", len(models))
	}
	if models[0].ID != "gpt-4-1106-preview" {
		t.Errorf("unexpected model: %+v", models[0])
	}
}
