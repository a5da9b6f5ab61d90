package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/observability"
)

const mergeSystemPrompt = `You are an expert at merging and normalizing product information from multiple sources.
Combine the provided information into a single, coherent product brief.

Create a comprehensive product brief that includes:
1. Product name (most descriptive from available sources)
2. Brand name (from form or image)
3. Category (most specific from available sources)
4. Key features (consolidated list, removing duplicates)
5. Target audience (from form or inferred)
6. Unique selling points (from form, image, or audio)
7. Any additional notes or specifications

Format your response as a JSON object with these fields:
{
    "product_name": "...",
    "brand_name": "...",
    "category": "...",
    "description": "...",
    "features": ["...", "..."],
    "target_audience": "...",
    "usps": ["...", "..."],
    "additional_notes": "..."
}`

// mergedBrief is the model's consolidated view of the product sources.
type mergedBrief struct {
	ProductName     string   `json:"product_name"`
	BrandName       string   `json:"brand_name"`
	Category        string   `json:"category"`
	Description     string   `json:"description"`
	Features        []string `json:"features"`
	TargetAudience  string   `json:"target_audience"`
	USPs            []string `json:"usps"`
	AdditionalNotes string   `json:"additional_notes"`
}

// merge consolidates the draft's sources into the product brief.
//
// Deterministic mode is a no-op here: vision and transcript data were
// already folded into empty fields when they arrived. LLM mode asks the
// text model to rewrite the brief from all sources; on unparseable
// output the existing brief is kept.
func (e *Engine) merge(ctx context.Context, d *api.Draft, model string) error {
	if e.cfg.MergeMode != MergeLLM {
		return nil
	}
	if d.Vision == nil && d.Transcript == nil {
		return nil
	}

	temp := e.cfg.Temperature
	maxTokens := e.cfg.MaxTokens

	start := time.Now()
	result, err := e.provider.Generate(ctx, &ai.GenerateRequest{
		Model:       model,
		System:      mergeSystemPrompt,
		Prompt:      formatMergeSources(d),
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	observability.RecordAICall("merge", model, time.Since(start), tokenUsage(result), err)
	if err != nil {
		return err
	}

	var merged mergedBrief
	if !extractJSON(result.Text, &merged) {
		return nil
	}

	applyMerged(&d.Product, &merged)
	return nil
}

// applyMerged overwrites brief fields with the model's consolidated
// values, keeping existing values where the model returned nothing.
func applyMerged(p *api.ProductInfo, m *mergedBrief) {
	if m.ProductName != "" {
		p.BasicInfo.ProductName = m.ProductName
	}
	if m.BrandName != "" {
		p.BasicInfo.BrandName = m.BrandName
	}
	if m.Category != "" {
		p.BasicInfo.Category = m.Category
	}
	if m.Description != "" {
		p.BasicInfo.Description = m.Description
	}
	if m.TargetAudience != "" {
		p.BasicInfo.TargetAudience = m.TargetAudience
	}
	if m.AdditionalNotes != "" {
		p.BasicInfo.AdditionalNotes = m.AdditionalNotes
	}
	if len(m.Features) > 0 {
		p.Features = m.Features
	}
	if len(m.USPs) > 0 {
		p.USPs = m.USPs
	}
	p.Normalize()
}

// formatMergeSources renders the form data, image analysis, and voice
// transcript as labeled sections for the merge prompt.
func formatMergeSources(d *api.Draft) string {
	var b strings.Builder

	b.WriteString("Product Information:\n")
	basic := d.Product.BasicInfo
	fmt.Fprintf(&b, "- Brand: %s\n", orNotProvided(basic.BrandName))
	fmt.Fprintf(&b, "- Product Name: %s\n", orNotProvided(basic.ProductName))
	fmt.Fprintf(&b, "- Category: %s\n", orNotProvided(basic.Category))
	fmt.Fprintf(&b, "- Description: %s\n", orNotProvided(basic.Description))
	fmt.Fprintf(&b, "- Target Audience: %s\n", orNotProvided(basic.TargetAudience))
	if basic.Price != nil {
		fmt.Fprintf(&b, "- Price: %.2f %s\n", *basic.Price, basic.Currency)
	}
	if len(d.Product.Features) > 0 {
		b.WriteString("Features:\n")
		for _, f := range d.Product.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	b.WriteString("\nVision Analysis (from product image):\n")
	if v := d.Vision; v != nil {
		if v.Raw != "" {
			b.WriteString(v.Raw + "\n")
		} else {
			fmt.Fprintf(&b, "- product_name: %s\n", v.ProductName)
			fmt.Fprintf(&b, "- brand_name: %s\n", v.BrandName)
			fmt.Fprintf(&b, "- category: %s\n", v.Category)
			fmt.Fprintf(&b, "- visible_text: %s\n", v.VisibleText)
			fmt.Fprintf(&b, "- features: %s\n", strings.Join(v.Features, ", "))
			fmt.Fprintf(&b, "- usps: %s\n", strings.Join(v.USPs, ", "))
		}
	} else {
		b.WriteString("No image analysis available.\n")
	}

	b.WriteString("\nAudio Transcription (from voice note):\n")
	if d.Transcript != nil && d.Transcript.Text != "" {
		b.WriteString(d.Transcript.Text + "\n")
	} else {
		b.WriteString("No audio notes provided.\n")
	}

	return b.String()
}

func orNotProvided(s string) string {
	if s == "" {
		return "Not provided"
	}
	return s
}
