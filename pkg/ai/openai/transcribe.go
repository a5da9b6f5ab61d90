package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
)

// Transcribe converts an audio recording to text via the
// /v1/audio/transcriptions endpoint. The audio travels as a multipart
// form with the model name and an optional language hint.
func (c *Client) Transcribe(ctx context.Context, req *ai.TranscribeRequest) (*ai.TranscribeResult, error) {
	body, contentType, err := buildTranscriptionForm(req)
	if err != nil {
		return nil, api.NewServerError(fmt.Sprintf("failed to build transcription form: %s", err.Error()))
	}

	httpResp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.baseURL+"/v1/audio/transcriptions", bytes.NewReader(body))
		if err != nil {
			return nil, api.NewServerError(fmt.Sprintf("failed to create HTTP request: %s", err.Error()))
		}
		httpReq.Header.Set("Content-Type", contentType)
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		return httpReq, nil
	})
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var transcription TranscriptionResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&transcription); err != nil {
		return nil, api.NewModelError(fmt.Sprintf("failed to parse transcription response: %s", err.Error()))
	}

	return &ai.TranscribeResult{
		Text:     transcription.Text,
		Language: transcription.Language,
	}, nil
}

// buildTranscriptionForm assembles the multipart body once so retries can
// reuse the same bytes.
func buildTranscriptionForm(req *ai.TranscribeRequest) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "audio"
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Audio); err != nil {
		return nil, "", err
	}

	if err := w.WriteField("model", req.Model); err != nil {
		return nil, "", err
	}
	if req.Language != "" {
		if err := w.WriteField("language", req.Language); err != nil {
			return nil, "", err
		}
	}
	if err := w.WriteField("response_format", "json"); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
