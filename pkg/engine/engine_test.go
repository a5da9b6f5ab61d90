package engine

import (
	"context"
	"testing"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
)

// fakeProvider is a scripted ai.Provider for engine tests. Each call is
// recorded so tests can assert on the requests the engine builds.
type fakeProvider struct {
	generateFunc   func(req *ai.GenerateRequest) (*ai.GenerateResult, error)
	visionFunc     func(req *ai.VisionRequest) (*ai.GenerateResult, error)
	transcribeFunc func(req *ai.TranscribeRequest) (*ai.TranscribeResult, error)

	generateCalls   []*ai.GenerateRequest
	visionCalls     []*ai.VisionRequest
	transcribeCalls []*ai.TranscribeRequest
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Generate(_ context.Context, req *ai.GenerateRequest) (*ai.GenerateResult, error) {
	f.generateCalls = append(f.generateCalls, req)
	if f.generateFunc == nil {
		return &ai.GenerateResult{Text: "generated text", Model: req.Model}, nil
	}
	return f.generateFunc(req)
}

func (f *fakeProvider) AnalyzeImage(_ context.Context, req *ai.VisionRequest) (*ai.GenerateResult, error) {
	f.visionCalls = append(f.visionCalls, req)
	if f.visionFunc == nil {
		return &ai.GenerateResult{Text: "{}", Model: req.Model}, nil
	}
	return f.visionFunc(req)
}

func (f *fakeProvider) Transcribe(_ context.Context, req *ai.TranscribeRequest) (*ai.TranscribeResult, error) {
	f.transcribeCalls = append(f.transcribeCalls, req)
	if f.transcribeFunc == nil {
		return &ai.TranscribeResult{Text: "transcript"}, nil
	}
	return f.transcribeFunc(req)
}

func (f *fakeProvider) ListModels(_ context.Context) ([]ai.ModelInfo, error) {
	return []ai.ModelInfo{{ID: "fake-model", Object: "model"}}, nil
}

func (f *fakeProvider) Close() error { return nil }

func newTestEngine(t *testing.T, p *fakeProvider, cfg Config) *Engine {
	t.Helper()
	e, err := New(p, cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return e
}

// completeDraft returns a draft whose brief satisfies every marketplace
// requirement flag.
func completeDraft() *api.Draft {
	price := 29.99
	return &api.Draft{
		ID:     "draft_test",
		Object: "draft",
		Step:   api.StepMarketplaces,
		Product: api.ProductInfo{
			BasicInfo: api.BasicInfo{
				BrandName:   "Acme",
				ProductName: "Trail Bottle 750",
				Category:    "Sports & Outdoors",
				Description: "Insulated stainless steel water bottle.",
				Price:       &price,
				Currency:    "USD",
			},
			Features:       []string{"750ml capacity", "24h cold retention"},
			USPs:           []string{"Lifetime warranty"},
			Specifications: map[string]string{"Material": "Stainless steel"},
		},
		CreatedAt: 1700000000,
	}
}

func TestNew_NilProvider(t *testing.T) {
	if _, err := New(nil, Config{}); err == nil {
		t.Fatal("New(nil) should return an error")
	}
}

func TestNew_Defaults(t *testing.T) {
	e := newTestEngine(t, &fakeProvider{}, Config{})

	if e.cfg.Model != "gpt-4-1106-preview" {
		t.Errorf("default model = %q", e.cfg.Model)
	}
	if e.cfg.VisionModel != "gpt-4-vision-preview" {
		t.Errorf("default vision model = %q", e.cfg.VisionModel)
	}
	if e.cfg.SpeechModel != "whisper-1" {
		t.Errorf("default speech model = %q", e.cfg.SpeechModel)
	}
	if e.cfg.Temperature != 0.7 {
		t.Errorf("default temperature = %v", e.cfg.Temperature)
	}
	if e.cfg.MaxTokens != 1000 {
		t.Errorf("default max tokens = %d", e.cfg.MaxTokens)
	}
	if e.cfg.MergeMode != MergeDeterministic {
		t.Errorf("default merge mode = %q", e.cfg.MergeMode)
	}
}
