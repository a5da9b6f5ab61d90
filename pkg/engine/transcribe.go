package engine

import (
	"context"
	"strings"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/observability"
)

// maxTranscriptFeatures bounds how many transcript lines become features.
const maxTranscriptFeatures = 5

// Transcribe converts a voice note to text and attaches the transcript
// to the draft. When the brief has no features yet, the transcript's
// leading lines are used as features.
func (e *Engine) Transcribe(ctx context.Context, d *api.Draft, audio []byte, filename string) (*api.Transcript, error) {
	start := time.Now()
	result, err := e.provider.Transcribe(ctx, &ai.TranscribeRequest{
		Model:    e.cfg.SpeechModel,
		Filename: filename,
		Audio:    audio,
	})
	observability.RecordAICall("transcribe", e.cfg.SpeechModel, time.Since(start), observability.AITokenUsage{}, err)
	if err != nil {
		return nil, err
	}

	transcript := &api.Transcript{
		Text:     result.Text,
		Language: result.Language,
	}
	d.Transcript = transcript

	if len(d.Product.Features) == 0 {
		d.Product.Features = FeaturesFromTranscript(transcript.Text)
	}

	return transcript, nil
}

// FeaturesFromTranscript extracts candidate features from a voice note
// transcript: the first few non-empty lines, trimmed.
func FeaturesFromTranscript(text string) []string {
	var features []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		features = append(features, line)
		if len(features) == maxTranscriptFeatures {
			break
		}
	}
	return features
}
