package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/listora/listora/pkg/ai"
	"github.com/listora/listora/pkg/api"
	"github.com/listora/listora/pkg/marketplace"
	"github.com/listora/listora/pkg/observability"
)

// Generate produces listings for the requested marketplaces and stores
// them on the draft.
//
// Failure semantics follow the all-or-some rule: if every marketplace
// fails, the draft is left untouched and an error is returned; if only
// some fail, the successes are stored, the failures are recorded on the
// draft, and the call succeeds.
func (e *Engine) Generate(ctx context.Context, d *api.Draft, req *api.GenerateRequest) error {
	vcfg := api.DefaultValidationConfig()
	if apiErr := api.ValidateGenerateRequest(req, vcfg); apiErr != nil {
		return apiErr
	}

	d.Product.Normalize()
	if apiErr := api.ValidateProduct(&d.Product, vcfg); apiErr != nil {
		return apiErr
	}

	// Price is checked up front so the caller gets a single clear error
	// instead of one failure per marketplace.
	if marketplace.AnyRequiresPrice(req.Marketplaces) && !d.Product.HasPrice() {
		return api.NewInvalidRequestError("product.basic_info.price",
			"price is required for one or more selected marketplaces")
	}

	model := req.Model
	if model == "" {
		model = e.cfg.Model
	}

	if err := e.merge(ctx, d, model); err != nil {
		return err
	}

	listings := make(map[string]*api.Listing, len(req.Marketplaces))
	var failures []api.GenerationFailure

	for _, key := range req.Marketplaces {
		start := time.Now()

		listing, failMsg := e.generateOne(ctx, d, key, model, req)
		if failMsg != "" {
			failures = append(failures, api.GenerationFailure{Marketplace: key, Message: failMsg})
			observability.GenerationsTotal.WithLabelValues(key, "error").Inc()
		} else {
			listings[key] = listing
			observability.GenerationsTotal.WithLabelValues(key, "success").Inc()
		}
		observability.GenerationDuration.WithLabelValues("marketplace").Observe(time.Since(start).Seconds())
	}

	if len(listings) == 0 {
		msgs := make([]string, len(failures))
		for i, f := range failures {
			msgs[i] = fmt.Sprintf("%s: %s", f.Marketplace, f.Message)
		}
		return api.NewInvalidRequestError("marketplaces",
			"generation failed for all selected marketplaces: "+strings.Join(msgs, "; "))
	}

	now := time.Now().Unix()
	d.Listings = listings
	d.Failures = failures
	d.GeneratedAt = &now
	d.Step = api.StepResults

	return nil
}

// generateOne builds the listing for a single marketplace. A non-empty
// failure message means the marketplace produced no listing.
func (e *Engine) generateOne(ctx context.Context, d *api.Draft, key, model string, req *api.GenerateRequest) (*api.Listing, string) {
	tmpl, ok := marketplace.Get(key)
	if !ok {
		return nil, fmt.Sprintf("unknown marketplace %q", key)
	}

	if errs := marketplace.Validate(&d.Product, tmpl); len(errs) > 0 {
		return nil, "validation failed: " + strings.Join(errs, "; ")
	}

	listing := marketplace.Render(&d.Product, tmpl)

	// Enrichment failures degrade to the template description rather
	// than failing the marketplace.
	if req.Enrich {
		if text := e.enrichDescription(ctx, d, tmpl, model, req.Temperature); text != "" {
			listing.Description = text
		}
	}

	return listing, ""
}

// enrichDescription asks the text model for a marketplace-tuned
// description. Returns the empty string when the model call fails.
func (e *Engine) enrichDescription(ctx context.Context, d *api.Draft, tmpl marketplace.Template, model string, tempOverride *float64) string {
	rules := marketplace.Rules(tmpl.Key)

	temp := e.cfg.Temperature
	if tempOverride != nil {
		temp = *tempOverride
	}
	maxTokens := e.cfg.MaxTokens

	start := time.Now()
	result, err := e.provider.Generate(ctx, &ai.GenerateRequest{
		Model:       model,
		System:      enrichSystemPrompt(tmpl, rules),
		Prompt:      enrichUserPrompt(d, tmpl),
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	})
	observability.RecordAICall("generate", model, time.Since(start), tokenUsage(result), err)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(result.Text)
}

// enrichSystemPrompt states the marketplace guidelines for the model.
func enrichSystemPrompt(tmpl marketplace.Template, rules marketplace.PromptRules) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert at creating optimized product content for various marketplaces.\n\n")
	fmt.Fprintf(&b, "Your task is to write a product description for %s based on the provided product information.\n\n", tmpl.Name)
	b.WriteString("Marketplace Guidelines:\n")
	fmt.Fprintf(&b, "- Description Style: %s\n", rules.DescriptionStyle)
	fmt.Fprintf(&b, "- Tone: %s\n", rules.Tone)
	fmt.Fprintf(&b, "- Technical Specs: %s\n", requiredOrNot(tmpl.RequiresTechnicalSpecs))
	fmt.Fprintf(&b, "- Emoji Allowed: %s\n", yesNo(rules.AllowsEmoji))
	fmt.Fprintf(&b, "- HTML Allowed: %s\n", yesNo(tmpl.AllowsHTML))
	fmt.Fprintf(&b, "- Keywords Important: %s\n", yesNo(rules.KeywordsImportant))
	b.WriteString("\nWrite the description text only, following these guidelines exactly.")

	return b.String()
}

// enrichUserPrompt renders the product brief for the enrichment prompt.
func enrichUserPrompt(d *api.Draft, tmpl marketplace.Template) string {
	var b strings.Builder

	basic := d.Product.BasicInfo
	b.WriteString("Product Information:\n")
	fmt.Fprintf(&b, "Product Name: %s\n", orNotProvided(basic.ProductName))
	fmt.Fprintf(&b, "Brand: %s\n", orNotProvided(basic.BrandName))
	fmt.Fprintf(&b, "Category: %s\n", orNotProvided(basic.Category))
	fmt.Fprintf(&b, "Description: %s\n", orNotProvided(basic.Description))
	fmt.Fprintf(&b, "Target Audience: %s\n", orNotProvided(basic.TargetAudience))

	if len(d.Product.Features) > 0 {
		b.WriteString("\nFeatures:\n")
		for _, f := range d.Product.Features {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	if len(d.Product.USPs) > 0 {
		b.WriteString("\nUnique Selling Points:\n")
		for _, u := range d.Product.USPs {
			fmt.Fprintf(&b, "- %s\n", u)
		}
	}
	if len(d.Product.Specifications) > 0 {
		b.WriteString("\nSpecifications:\n")
		b.WriteString(marketplace.FormatSpecifications(d.Product.Specifications))
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\nWrite a product description for %s that highlights key features and benefits.", tmpl.Name)

	return b.String()
}

func requiredOrNot(b bool) string {
	if b {
		return "Required"
	}
	return "Not required"
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
