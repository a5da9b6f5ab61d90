// Command mock-ai runs a deterministic OpenAI-compatible backend for
// local development and integration testing. It classifies incoming
// chat requests by content and returns predictable responses: image
// requests get a structured product extraction, merge requests get a
// consolidated brief, and enrichment requests get marketplace copy.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("POST /v1/audio/transcriptions", handleTranscriptions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock AI backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock AI backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock AI backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// --- Handlers ---

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":{"message":"invalid request","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	resp := classifyAndRespond(&req)
	resp.Model = req.Model
	if resp.Model == "" {
		resp.Model = "mock-model"
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func classifyAndRespond(req *chatRequest) chatResponse {
	if hasImageContent(req) {
		return visionResponse()
	}

	system := systemPrompt(req)
	switch {
	case strings.Contains(system, "merging and normalizing"):
		return mergeResponse()
	case strings.Contains(system, "optimized product content"):
		return enrichResponse(req)
	}

	return makeTextResponse("This is a mock response.")
}

// visionResponse mimics structured product extraction from an image.
func visionResponse() chatResponse {
	return makeTextResponse(`{
    "product_name": "Stainless Steel Water Bottle 750ml",
    "brand_name": "AquaFlow",
    "features": ["Double-wall vacuum insulation", "Leak-proof cap", "Brushed steel finish"],
    "visible_text": "AquaFlow 750ml",
    "category": "Drinkware",
    "usps": ["Keeps drinks cold for 24 hours"]
}`)
}

// mergeResponse mimics multi-source brief consolidation.
func mergeResponse() chatResponse {
	return makeTextResponse(`{
    "product_name": "AquaFlow Stainless Steel Water Bottle 750ml",
    "brand_name": "AquaFlow",
    "category": "Drinkware",
    "description": "A double-wall insulated bottle that keeps drinks cold for a full day.",
    "features": ["Double-wall vacuum insulation", "Leak-proof cap", "750ml capacity"],
    "target_audience": "Outdoor enthusiasts and commuters",
    "usps": ["Keeps drinks cold for 24 hours"],
    "additional_notes": "Hand wash recommended."
}`)
}

// enrichResponse mimics a marketplace-tuned product description. The
// marketplace name is echoed back so callers can tell responses apart.
func enrichResponse(req *chatRequest) chatResponse {
	name := "your marketplace"
	prompt := lastUserMessage(req)
	if idx := strings.LastIndex(prompt, "Write a product description for "); idx >= 0 {
		rest := prompt[idx+len("Write a product description for "):]
		if end := strings.Index(rest, " that highlights"); end > 0 {
			name = rest[:end]
		}
	}

	return makeTextResponse("Discover a product built to last. Crafted with premium materials " +
		"and designed for everyday use, it is the perfect choice for shoppers on " + name + ". " +
		"Order now and experience the difference.")
}

func makeTextResponse(text string) chatResponse {
	return chatResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMsg{Role: "assistant", Content: text},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{PromptTokens: 50, CompletionTokens: 60, TotalTokens: 110},
	}
}

// --- Transcriptions endpoint ---

func handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(25 << 20); err != nil {
		http.Error(w, `{"error":{"message":"invalid multipart form","type":"invalid_request_error"}}`, http.StatusBadRequest)
		return
	}

	resp := map[string]any{
		"text":     "This bottle keeps water cold for a whole day and fits in a standard cup holder.",
		"language": "en",
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-model", "object": "model", "owned_by": "listora-mock"},
			{"id": "mock-vision", "object": "model", "owned_by": "listora-mock"},
			{"id": "mock-whisper", "object": "model", "owned_by": "listora-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

func systemPrompt(req *chatRequest) string {
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			if s, ok := msg.Content.(string); ok {
				return s
			}
		}
	}
	return ""
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role == "user" {
			if s, ok := req.Messages[i].Content.(string); ok {
				return s
			}
		}
	}
	return ""
}

func hasImageContent(req *chatRequest) bool {
	for _, msg := range req.Messages {
		if msg.Role != "user" {
			continue
		}
		parts, ok := msg.Content.([]any)
		if !ok {
			continue
		}
		for _, part := range parts {
			if m, ok := part.(map[string]any); ok {
				if t, ok := m["type"].(string); ok && t == "image_url" {
					return true
				}
			}
		}
	}
	return false
}
