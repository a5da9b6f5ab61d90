// Package ai defines the provider abstraction for the AI backends that
// power listing generation: text generation, image analysis, and speech
// transcription. Concrete adapters live in subpackages (openai).
package ai
