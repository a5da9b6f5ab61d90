package engine

// Merge modes for combining form, image, and voice data into one brief.
const (
	// MergeDeterministic fills empty brief fields from vision and
	// transcript data without calling the model.
	MergeDeterministic = "deterministic"

	// MergeLLM asks the text model to consolidate all sources into a
	// fresh brief before generation.
	MergeLLM = "llm"
)

// Config holds configuration for the generation engine.
type Config struct {
	// Model is the text-generation model for enrichment and LLM merge.
	Model string

	// VisionModel handles product image analysis.
	VisionModel string

	// SpeechModel handles voice note transcription.
	SpeechModel string

	// Temperature is the sampling temperature for text generation.
	// Zero means use the default of 0.7.
	Temperature float64

	// MaxTokens caps generated output. Zero means use the default of 1000.
	MaxTokens int

	// MergeMode selects how multi-source product data is combined:
	// MergeDeterministic (default) or MergeLLM.
	MergeMode string
}

// withDefaults returns the config with unset fields defaulted.
func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "gpt-4-1106-preview"
	}
	if c.VisionModel == "" {
		c.VisionModel = "gpt-4-vision-preview"
	}
	if c.SpeechModel == "" {
		c.SpeechModel = "whisper-1"
	}
	if c.Temperature == 0 {
		c.Temperature = 0.7
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = 1000
	}
	if c.MergeMode == "" {
		c.MergeMode = MergeDeterministic
	}
	return c
}
