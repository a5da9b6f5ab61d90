package api

import (
	"encoding/json"
	"strings"
)

// ---------------------------------------------------------------------------
// Product brief
// ---------------------------------------------------------------------------

// BasicInfo holds the scalar form fields describing a product. All fields
// except ProductName and Description are optional; individual marketplaces
// impose additional requirements at generation time.
type BasicInfo struct {
	BrandName         string   `json:"brand_name,omitempty"`
	ProductName       string   `json:"product_name"`
	Category          string   `json:"category,omitempty"`
	Description       string   `json:"description"`
	TargetAudience    string   `json:"target_audience,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Currency          string   `json:"currency,omitempty"`
	USP               string   `json:"usp,omitempty"`
	MaterialCare      string   `json:"material_care,omitempty"`
	UsageInstructions string   `json:"usage_instructions,omitempty"`
	Ingredients       string   `json:"ingredients,omitempty"`
	AdditionalNotes   string   `json:"additional_notes,omitempty"`
}

// ProductInfo is the unified product brief assembled from the form, the
// optional image analysis, and the optional voice note transcript.
type ProductInfo struct {
	BasicInfo      BasicInfo         `json:"basic_info"`
	Features       []string          `json:"features,omitempty"`
	USPs           []string          `json:"usps,omitempty"`
	Specifications map[string]string `json:"specifications,omitempty"`
}

// Normalize trims whitespace from all string fields, drops empty features
// and USPs, and defaults the currency to USD.
func (p *ProductInfo) Normalize() {
	b := &p.BasicInfo
	b.BrandName = strings.TrimSpace(b.BrandName)
	b.ProductName = strings.TrimSpace(b.ProductName)
	b.Category = strings.TrimSpace(b.Category)
	b.Description = strings.TrimSpace(b.Description)
	b.TargetAudience = strings.TrimSpace(b.TargetAudience)
	b.USP = strings.TrimSpace(b.USP)
	b.MaterialCare = strings.TrimSpace(b.MaterialCare)
	b.UsageInstructions = strings.TrimSpace(b.UsageInstructions)
	b.Ingredients = strings.TrimSpace(b.Ingredients)
	b.AdditionalNotes = strings.TrimSpace(b.AdditionalNotes)
	if b.Currency == "" {
		b.Currency = "USD"
	}

	p.Features = trimNonEmpty(p.Features)
	p.USPs = trimNonEmpty(p.USPs)
}

// HasPrice reports whether a positive price is set.
func (p *ProductInfo) HasPrice() bool {
	return p.BasicInfo.Price != nil && *p.BasicInfo.Price > 0
}

func trimNonEmpty(in []string) []string {
	var out []string
	for _, s := range in {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// AI analysis results
// ---------------------------------------------------------------------------

// VisionAnalysis holds the product details extracted from an uploaded image.
// When the model output cannot be parsed as structured data, Raw carries the
// verbatim text and the structured fields stay empty.
type VisionAnalysis struct {
	ProductName string   `json:"product_name,omitempty"`
	BrandName   string   `json:"brand_name,omitempty"`
	Features    []string `json:"features,omitempty"`
	VisibleText string   `json:"visible_text,omitempty"`
	Category    string   `json:"category,omitempty"`
	USPs        []string `json:"usps,omitempty"`
	Raw         string   `json:"raw,omitempty"`
}

// Transcript holds the speech-to-text result for an uploaded voice note.
type Transcript struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// ---------------------------------------------------------------------------
// Generated listings
// ---------------------------------------------------------------------------

// Listing is the generated content for one marketplace: title, description,
// bullet features, SEO keywords, and the specification fields the
// marketplace requires.
type Listing struct {
	Marketplace     string            `json:"-"`
	MarketplaceName string            `json:"-"`
	Title           string            `json:"-"`
	Description     string            `json:"-"`
	BulletPoints    []string          `json:"-"`
	Keywords        []string          `json:"-"`
	Specifications  map[string]string `json:"-"`
}

// MarshalJSON ensures bullet_points and keywords are always arrays, never null.
func (l Listing) MarshalJSON() ([]byte, error) {
	type wire struct {
		Marketplace     string            `json:"marketplace"`
		MarketplaceName string            `json:"marketplace_name"`
		Title           string            `json:"title"`
		Description     string            `json:"description"`
		BulletPoints    []string          `json:"bullet_points"`
		Keywords        []string          `json:"keywords"`
		Specifications  map[string]string `json:"specifications,omitempty"`
	}
	w := wire{
		Marketplace:     l.Marketplace,
		MarketplaceName: l.MarketplaceName,
		Title:           l.Title,
		Description:     l.Description,
		BulletPoints:    l.BulletPoints,
		Keywords:        l.Keywords,
		Specifications:  l.Specifications,
	}
	if w.BulletPoints == nil {
		w.BulletPoints = []string{}
	}
	if w.Keywords == nil {
		w.Keywords = []string{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON deserializes a Listing.
func (l *Listing) UnmarshalJSON(data []byte) error {
	type wire struct {
		Marketplace     string            `json:"marketplace"`
		MarketplaceName string            `json:"marketplace_name"`
		Title           string            `json:"title"`
		Description     string            `json:"description"`
		BulletPoints    []string          `json:"bullet_points"`
		Keywords        []string          `json:"keywords"`
		Specifications  map[string]string `json:"specifications"`
	}
	var w wire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	l.Marketplace = w.Marketplace
	l.MarketplaceName = w.MarketplaceName
	l.Title = w.Title
	l.Description = w.Description
	l.BulletPoints = w.BulletPoints
	l.Keywords = w.Keywords
	l.Specifications = w.Specifications
	return nil
}

// ---------------------------------------------------------------------------
// Draft (wizard session)
// ---------------------------------------------------------------------------

// DraftStep identifies the wizard step a draft is in.
type DraftStep int

const (
	// StepProduct is the initial form step. Drafts stay here until the
	// product brief passes validation.
	StepProduct DraftStep = 1

	// StepMarketplaces means the brief is complete and the caller can
	// select marketplaces and request generation.
	StepMarketplaces DraftStep = 2

	// StepResults means generation has run and listings are available.
	StepResults DraftStep = 3
)

// GenerationFailure records a per-marketplace generation error.
type GenerationFailure struct {
	Marketplace string `json:"marketplace"`
	Message     string `json:"message"`
}

// Draft is a wizard session record. It is created from the product form,
// enriched by the optional image and voice note, and completed by the
// generation step. Drafts are request-scoped in spirit: they exist so a
// multi-request wizard can resume, not as long-lived state.
type Draft struct {
	ID          string              `json:"id"`
	Object      string              `json:"object"`
	Step        DraftStep           `json:"step"`
	Product     ProductInfo         `json:"product"`
	Vision      *VisionAnalysis     `json:"vision,omitempty"`
	Transcript  *Transcript         `json:"transcript,omitempty"`
	Listings    map[string]*Listing `json:"listings,omitempty"`
	Failures    []GenerationFailure `json:"failures,omitempty"`
	CreatedAt   int64               `json:"created_at"`
	GeneratedAt *int64              `json:"generated_at,omitempty"`
}

// ResetResults clears generation output, returning the draft to the form
// steps. Called when the product brief changes after generation.
func (d *Draft) ResetResults() {
	d.Listings = nil
	d.Failures = nil
	d.GeneratedAt = nil
}

// ---------------------------------------------------------------------------
// Request bodies
// ---------------------------------------------------------------------------

// CreateDraftRequest is the body for creating a draft from the product form.
type CreateDraftRequest struct {
	Product ProductInfo `json:"product"`
}

// UpdateDraftRequest is the body for replacing a draft's product brief.
type UpdateDraftRequest struct {
	Product ProductInfo `json:"product"`
}

// GenerateRequest selects the marketplaces to generate listings for and
// tunes the generation behavior.
type GenerateRequest struct {
	Marketplaces []string `json:"marketplaces"`

	// Enrich replaces the template-rendered description with an
	// AI-generated one following the marketplace's prompt rules.
	Enrich bool `json:"enrich,omitempty"`

	// Model overrides the configured text-generation model.
	Model string `json:"model,omitempty"`

	// Temperature overrides the configured sampling temperature (0.0-2.0).
	Temperature *float64 `json:"temperature,omitempty"`
}
