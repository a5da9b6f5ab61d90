package marketplace

import (
	"sort"
	"strings"

	"github.com/listora/listora/pkg/api"
)

// Placeholder defaults for fields most storefronts treat as optional prose.
const (
	defaultMaterialCare      = "Not specified"
	defaultUsageInstructions = "Refer to product packaging for usage instructions"
	defaultIngredients       = "Refer to product packaging for full ingredient list"
)

// Render produces the listing for one marketplace from a validated product
// brief. The caller is expected to run Validate first; Render itself only
// does mechanical assembly.
func Render(p *api.ProductInfo, t Template) *api.Listing {
	vars := templateVars(p, t)

	title := substitute(t.TitleFormat, vars)
	title = truncateTitle(title, t.MaxTitleLength)

	description := substitute(t.DescriptionFormat, vars)

	var bullets []string
	if t.MaxBullets > 0 && len(p.Features) > 0 {
		bullets = p.Features
		if len(bullets) > t.MaxBullets {
			bullets = bullets[:t.MaxBullets]
		}
	}

	var specs map[string]string
	if t.RequiresTechnicalSpecs && len(p.Specifications) > 0 {
		specs = p.Specifications
	}

	return &api.Listing{
		Marketplace:     t.Key,
		MarketplaceName: t.Name,
		Title:           title,
		Description:     description,
		BulletPoints:    bullets,
		Keywords:        Keywords(p.BasicInfo.ProductName, p.BasicInfo.BrandName, p.BasicInfo.Category, p.Features),
		Specifications:  specs,
	}
}

// templateVars builds the substitution map for a template.
func templateVars(p *api.ProductInfo, t Template) map[string]string {
	b := p.BasicInfo

	keyFeatures := ""
	if len(p.Features) > 0 {
		n := len(p.Features)
		if n > 3 {
			n = 3
		}
		keyFeatures = strings.Join(p.Features[:n], ", ")
	}

	return map[string]string{
		"brand":               b.BrandName,
		"product_name":        b.ProductName,
		"key_features":        keyFeatures,
		"product_description": b.Description,
		"features":            FormatBullets(p.Features, 0),
		"features_bullets":    FormatBullets(p.Features, t.MaxBullets),
		"usps":                strings.Join(p.USPs, "\n"),
		"usps_bullets":        FormatBullets(p.USPs, 3),
		"specifications":      FormatSpecifications(p.Specifications),
		"additional_notes":    b.AdditionalNotes,
		"material_care":       orDefault(b.MaterialCare, defaultMaterialCare),
		"usage_instructions":  orDefault(b.UsageInstructions, defaultUsageInstructions),
		"ingredients":         orDefault(b.Ingredients, defaultIngredients),
	}
}

// substitute replaces {name} placeholders with their values. Placeholders
// without a value in the map are left untouched.
func substitute(format string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(format)
}

// FormatBullets formats items as a "• " bulleted list, capped at max items
// when max is positive. Returns an empty string for an empty list.
func FormatBullets(items []string, max int) string {
	if len(items) == 0 {
		return ""
	}
	if max > 0 && len(items) > max {
		items = items[:max]
	}
	return "• " + strings.Join(items, "\n• ")
}

// FormatSpecifications formats the specification map as "- key: value"
// lines. Keys are sorted so rendered output is deterministic.
func FormatSpecifications(specs map[string]string) string {
	if len(specs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, "- "+k+": "+specs[k])
	}
	return strings.Join(lines, "\n")
}

// truncateTitle shortens a title to max runes, replacing the tail with "...".
func truncateTitle(title string, max int) string {
	if max <= 0 {
		return title
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
