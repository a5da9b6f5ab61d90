// Package openai implements the ai.Provider interface against any
// OpenAI-compatible backend. Text and vision requests use the Chat
// Completions endpoint; speech-to-text uses the audio transcriptions
// endpoint. Transient backend failures (429, 5xx, network) are retried
// once before being mapped into the API error taxonomy.
package openai
