// Package engine orchestrates draft processing between the transport
// layer and the AI provider: image analysis, voice transcription, data
// merging, and marketplace listing generation.
package engine

import (
	"fmt"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/transport"
)

// Engine implements transport.Pipeline on top of an ai.Provider.
type Engine struct {
	provider ai.Provider
	cfg      Config
}

// Ensure Engine implements transport.Pipeline at compile time.
var _ transport.Pipeline = (*Engine)(nil)

// New creates a new Engine. The provider must not be nil.
func New(p ai.Provider, cfg Config) (*Engine, error) {
	if p == nil {
		return nil, fmt.Errorf("engine: provider must not be nil")
	}
	return &Engine{
		provider: p,
		cfg:      cfg.withDefaults(),
	}, nil
}
