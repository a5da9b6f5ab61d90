package engine

import (
	"context"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/observability"
)

// visionTemperature keeps image extraction close to what is visible
// rather than inventive.
const visionTemperature = 0.1

const visionSystemPrompt = `You are an expert product information extractor.
Analyze the product image and extract the following details:
- Product name
- Brand name (if visible)
- Key features (materials, colors, size, etc.)
- Any visible text or labels
- Product category (if identifiable)
- Any unique selling points visible in the image

Format your response as a JSON object with these fields:
{
    "product_name": "...",
    "brand_name": "...",
    "features": ["...", "..."],
    "visible_text": "...",
    "category": "...",
    "usps": ["...", "..."]
}`

// AnalyzeImage runs vision analysis on a product image and fills empty
// draft fields from the result. Unparseable model output is preserved
// verbatim in the Raw field rather than treated as a failure.
func (e *Engine) AnalyzeImage(ctx context.Context, d *api.Draft, image []byte, mimeType string) (*api.VisionAnalysis, error) {
	temp := visionTemperature
	maxTokens := e.cfg.MaxTokens

	start := time.Now()
	result, err := e.provider.AnalyzeImage(ctx, &ai.VisionRequest{
		Model:       e.cfg.VisionModel,
		Prompt:      visionSystemPrompt + "\n\nExtract product information from this image.",
		Image:       image,
		MIMEType:    mimeType,
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	observability.RecordAICall("vision", e.cfg.VisionModel, time.Since(start), tokenUsage(result), err)
	if err != nil {
		return nil, err
	}

	analysis := &api.VisionAnalysis{}
	if !extractJSON(result.Text, analysis) {
		analysis = &api.VisionAnalysis{Raw: result.Text}
	}

	applyVision(&d.Product, analysis)
	d.Vision = analysis
	return analysis, nil
}

// applyVision fills empty brief fields from the image analysis. Fields
// the caller already provided are never overwritten.
func applyVision(p *api.ProductInfo, v *api.VisionAnalysis) {
	if p.BasicInfo.ProductName == "" {
		p.BasicInfo.ProductName = v.ProductName
	}
	if p.BasicInfo.BrandName == "" {
		p.BasicInfo.BrandName = v.BrandName
	}
	if p.BasicInfo.Category == "" {
		p.BasicInfo.Category = v.Category
	}
	if len(p.Features) == 0 {
		p.Features = append([]string(nil), v.Features...)
	}
	if len(p.USPs) == 0 {
		p.USPs = append([]string(nil), v.USPs...)
	}
	p.Normalize()
}

// tokenUsage extracts token counts for metrics, tolerating nil results.
func tokenUsage(r *ai.GenerateResult) observability.AITokenUsage {
	if r == nil || r.Usage == nil {
		return observability.AITokenUsage{}
	}
	return observability.AITokenUsage{
		PromptTokens:     r.Usage.PromptTokens,
		CompletionTokens: r.Usage.CompletionTokens,
	}
}
