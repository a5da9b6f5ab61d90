package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
)

// Client performs HTTP requests against an OpenAI-compatible backend:
// Chat Completions for text and vision, audio transcriptions for speech.
//
// A request that fails with a 429, a 5xx, or a network error is retried
// once after a short delay before the error is surfaced.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	// retryDelay is the pause before the single retry. Tests shorten it.
	retryDelay time.Duration
}

var _ ai.Provider = (*Client)(nil)

// NewClient creates a new Client for an OpenAI-compatible backend.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	// Normalize: remove trailing slash from base URL.
	baseURL = strings.TrimRight(baseURL, "/")

	if timeout == 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:    baseURL,
		apiKey:     apiKey,
		retryDelay: time.Second,
	}
}

// Name returns the provider identifier.
func (c *Client) Name() string {
	return "openai"
}

// Generate performs a text generation request against the Chat Completions
// endpoint.
func (c *Client) Generate(ctx context.Context, req *ai.GenerateRequest) (*ai.GenerateResult, error) {
	var messages []ChatMessage
	if req.System != "" {
		messages = append(messages, ChatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, ChatMessage{Role: "user", Content: req.Prompt})

	chatReq := &ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	}

	return c.complete(ctx, chatReq)
}

// AnalyzeImage sends an image as an inline base64 data URL to a
// vision-capable model.
func (c *Client) AnalyzeImage(ctx context.Context, req *ai.VisionRequest) (*ai.GenerateResult, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		req.MIMEType, base64.StdEncoding.EncodeToString(req.Image))

	chatReq := &ChatCompletionRequest{
		Model: req.Model,
		Messages: []ChatMessage{
			{
				Role: "user",
				Content: []ChatContentPart{
					{Type: "text", Text: req.Prompt},
					{Type: "image_url", ImageURL: &ChatImageURL{URL: dataURL}},
				},
			},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		N:           1,
	}

	return c.complete(ctx, chatReq)
}

// complete marshals a chat request, posts it with one retry, and extracts
// the first choice.
func (c *Client) complete(ctx context.Context, chatReq *ChatCompletionRequest) (*ai.GenerateResult, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to marshal request: %s", err.Error()))
	}

	httpResp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		return c.newJSONRequest(ctx, "/v1/chat/completions", body)
	})
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var chatResp ChatCompletionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&chatResp); err != nil {
		return nil, api.NewModelError(fmt.Sprintf("failed to parse backend response: %s", err.Error()))
	}

	if len(chatResp.Choices) == 0 {
		return nil, api.NewModelError("backend returned no choices")
	}

	result := &ai.GenerateResult{
		Text:  chatResp.Choices[0].Message.Content,
		Model: chatResp.Model,
	}
	if chatResp.Usage != nil {
		result.Usage = &ai.Usage{
			PromptTokens:     chatResp.Usage.PromptTokens,
			CompletionTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:      chatResp.Usage.TotalTokens,
		}
	}

	return result, nil
}

// ListModels returns available models from the backend by querying
// the /v1/models endpoint.
func (c *Client) ListModels(ctx context.Context) ([]ai.ModelInfo, error) {
	url := c.baseURL + "/v1/models"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var modelsResp ChatModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewModelError(fmt.Sprintf("failed to parse models response: %s", err.Error()))
	}

	var models []ai.ModelInfo
	for _, m := range modelsResp.Data {
		models = append(models, ai.ModelInfo{
			ID:      m.ID,
			Object:  m.Object,
			OwnedBy: m.OwnedBy,
		})
	}

	return models, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// newJSONRequest builds a POST request with JSON body and auth header.
func (c *Client) newJSONRequest(ctx context.Context, path string, body []byte) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	return httpReq, nil
}

// doWithRetry executes a request and retries once on a 429, a 5xx, or a
// network error. The build function is called per attempt so the body
// reader is fresh each time.
func (c *Client) doWithRetry(ctx context.Context, build func() (*http.Request, error)) (*http.Response, error) {
	var lastErr *api.APIError

	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, MapNetworkError(ctx.Err())
			}
		}

		httpReq, err := build()
		if err != nil {
			return nil, err
		}

		httpResp, doErr := c.httpClient.Do(httpReq)
		if doErr != nil {
			lastErr = MapNetworkError(doErr)
			continue
		}

		if httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= http.StatusInternalServerError {
			lastErr = MapHTTPError(httpResp)
			httpResp.Body.Close()
			continue
		}

		if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
			defer httpResp.Body.Close()
			return nil, MapHTTPError(httpResp)
		}

		return httpResp, nil
	}

	return nil, lastErr
}
