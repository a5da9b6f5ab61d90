package ai

import "context"

// Provider abstracts an AI inference backend. The interface is
// protocol-agnostic: each adapter handles its own backend protocol
// internally.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Provider interface {
	// Name returns the provider identifier (e.g., "openai").
	Name() string

	// Generate performs a text generation request.
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)

	// AnalyzeImage sends an image with an instruction prompt to a
	// vision-capable model and returns its textual answer.
	AnalyzeImage(ctx context.Context, req *VisionRequest) (*GenerateResult, error)

	// Transcribe converts an audio recording to text.
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error)

	// ListModels returns available models from the backend.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// Close releases provider resources (HTTP clients, connections).
	Close() error
}

// GenerateRequest describes a text generation call.
type GenerateRequest struct {
	Model       string
	System      string
	Prompt      string
	Temperature *float64
	MaxTokens   *int
}

// VisionRequest describes an image analysis call. Image holds the raw
// bytes; the adapter handles encoding for its wire format.
type VisionRequest struct {
	Model       string
	Prompt      string
	Image       []byte
	MIMEType    string
	Temperature *float64
	MaxTokens   *int
}

// TranscribeRequest describes a speech-to-text call. Filename is passed
// through to the backend so it can infer the container format.
type TranscribeRequest struct {
	Model    string
	Filename string
	Audio    []byte
	Language string
}

// GenerateResult is the outcome of a text or vision call.
type GenerateResult struct {
	Text  string
	Model string
	Usage *Usage
}

// TranscribeResult is the outcome of a transcription call.
type TranscribeResult struct {
	Text     string
	Language string
}

// Usage holds token accounting reported by the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ModelInfo describes a model available on the backend.
type ModelInfo struct {
	ID      string
	Object  string
	OwnedBy string
}
