package transport

import (
	"context"

	"github.com/listora/listora/pkg/api"
)

// Pipeline handles the AI-assisted draft operations. The HTTP adapter
// parses requests and delegates here; the engine implements it.
type Pipeline interface {
	// AnalyzeImage runs vision analysis on a product image and fills
	// empty draft fields from the result. The draft is mutated in place.
	AnalyzeImage(ctx context.Context, d *api.Draft, image []byte, mimeType string) (*api.VisionAnalysis, error)

	// Transcribe converts a voice note to text and attaches the
	// transcript to the draft. The draft is mutated in place.
	Transcribe(ctx context.Context, d *api.Draft, audio []byte, filename string) (*api.Transcript, error)

	// Generate produces listings for the requested marketplaces and
	// stores them on the draft. A partial failure (some marketplaces
	// succeed) is not an error; the failures are recorded on the draft.
	Generate(ctx context.Context, d *api.Draft, req *api.GenerateRequest) error
}

// ListOptions controls pagination, filtering, and ordering for list operations.
type ListOptions struct {
	After  string // Cursor: return items after this ID.
	Before string // Cursor: return items before this ID.
	Limit  int    // Maximum number of items to return (default 20, max 100).
	Step   int    // Filter drafts by wizard step (0 = all).
	Order  string // Sort order: "asc" or "desc" (default "desc").
}

// DraftList holds a paginated list of drafts.
type DraftList struct {
	Object  string       `json:"object"`
	Data    []*api.Draft `json:"data"`
	HasMore bool         `json:"has_more"`
	FirstID string       `json:"first_id"`
	LastID  string       `json:"last_id"`
}

// DraftStore handles persistence, retrieval, and deletion of drafts.
type DraftStore interface {
	// SaveDraft persists a new draft. Returns storage.ErrConflict if a
	// draft with the same ID already exists.
	SaveDraft(ctx context.Context, d *api.Draft) error

	// GetDraft retrieves a draft by ID. Returns storage.ErrNotFound if
	// the draft does not exist or belongs to another tenant.
	GetDraft(ctx context.Context, id string) (*api.Draft, error)

	// UpdateDraft replaces a stored draft. Returns storage.ErrNotFound
	// if the draft does not exist.
	UpdateDraft(ctx context.Context, d *api.Draft) error

	// DeleteDraft removes a draft by ID.
	DeleteDraft(ctx context.Context, id string) error

	// ListDrafts returns a paginated list of drafts. Results are
	// filtered by tenant (when present in context) and optionally by
	// wizard step. Supports cursor-based pagination and ordering.
	ListDrafts(ctx context.Context, opts ListOptions) (*DraftList, error)

	// HealthCheck verifies the store connection is functional.
	HealthCheck(ctx context.Context) error

	// Close releases database connections and resources.
	Close() error
}
