// Package marketplace holds the static per-storefront listing formats and
// the rendering, validation, keyword, and export logic that turns a product
// brief into marketplace-ready listing content.
package marketplace

import "sort"

// Template describes the listing format and requirements of one storefront.
// Formats use {variable} placeholders substituted by Render.
type Template struct {
	Key               string `json:"key"`
	Name              string `json:"name"`
	TitleFormat       string `json:"-"`
	DescriptionFormat string `json:"-"`

	// MaxTitleLength is the storefront's title limit. Longer rendered
	// titles are truncated with a trailing ellipsis.
	MaxTitleLength int `json:"max_title_length"`

	// MaxBullets caps the bullet point list. Zero means unlimited.
	MaxBullets int `json:"max_bullets,omitempty"`

	RequiresTechnicalSpecs bool `json:"requires_technical_specs"`
	AllowsHTML             bool `json:"allows_html"`
	RequiresBrand          bool `json:"requires_brand"`
	RequiresPrice          bool `json:"requires_price"`
	RequiresCategory       bool `json:"requires_category"`
}

// templates is the storefront registry. Formats and limits follow the
// storefronts' published listing guidelines.
var templates = map[string]Template{
	"amazon_in": {
		Key:         "amazon_in",
		Name:        "Amazon India",
		TitleFormat: "{brand} {product_name} - {key_features}",
		DescriptionFormat: "**{brand} {product_name}**\n\n{product_description}\n\n" +
			"**Key Features:**\n{features}\n\n**Specifications:**\n{specifications}\n\n" +
			"**Why Choose {brand}?**\n{usps}\n\n{additional_notes}",
		MaxTitleLength:         200,
		MaxBullets:             5,
		RequiresTechnicalSpecs: true,
		AllowsHTML:             true,
		RequiresBrand:          true,
		RequiresPrice:          true,
		RequiresCategory:       true,
	},

	"flipkart": {
		Key:         "flipkart",
		Name:        "Flipkart",
		TitleFormat: "{brand} {product_name} ({key_features})",
		DescriptionFormat: "{product_description}\n\n• {features_bullets}\n\n" +
			"**Specifications:**\n{specifications}\n\n{usps_bullets}\n\n{additional_notes}",
		MaxTitleLength:         100,
		RequiresTechnicalSpecs: true,
		RequiresBrand:          true,
		RequiresPrice:          true,
		RequiresCategory:       true,
	},

	"meesho": {
		Key:               "meesho",
		Name:              "Meesho",
		TitleFormat:       "{brand} {product_name}",
		DescriptionFormat: "{product_description}\n\n{features_bullets}\n\n{usps_bullets}",
		MaxTitleLength:    60,
		MaxBullets:        3,
		RequiresPrice:     true,
		RequiresCategory:  true,
	},

	"myntra": {
		Key:         "myntra",
		Name:        "Myntra",
		TitleFormat: "{brand} {product_name} | {key_features}",
		DescriptionFormat: "{brand} presents {product_name} - {key_features}\n\n" +
			"{product_description}\n\n**Features:**\n{features}\n\n" +
			"**Specifications:**\n{specifications}\n\n{usps_bullets}",
		MaxTitleLength:         80,
		MaxBullets:             4,
		RequiresTechnicalSpecs: true,
		AllowsHTML:             true,
		RequiresBrand:          true,
		RequiresPrice:          true,
		RequiresCategory:       true,
	},

	"ajio": {
		Key:         "ajio",
		Name:        "Ajio",
		TitleFormat: "{brand} {product_name}",
		DescriptionFormat: "{product_description}\n\n**Key Features:**\n{features}\n\n" +
			"**Material & Care:**\n{material_care}\n\n{usps_bullets}",
		MaxTitleLength:   70,
		MaxBullets:       5,
		AllowsHTML:       true,
		RequiresBrand:    true,
		RequiresPrice:    true,
		RequiresCategory: true,
	},

	"nykaa": {
		Key:         "nykaa",
		Name:        "Nykaa",
		TitleFormat: "{brand} {product_name} - {key_features}",
		DescriptionFormat: "**{brand} {product_name}**\n\n{product_description}\n\n" +
			"**Key Benefits:**\n{features}\n\n**How To Use:**\n{usage_instructions}\n\n" +
			"**Ingredients:**\n{ingredients}\n\n{usps_bullets}",
		MaxTitleLength:   120,
		MaxBullets:       5,
		AllowsHTML:       true,
		RequiresBrand:    true,
		RequiresPrice:    true,
		RequiresCategory: true,
	},

	"shopify": {
		Key:         "shopify",
		Name:        "Shopify",
		TitleFormat: "{product_name} by {brand}",
		DescriptionFormat: "# {product_name}\n\n{product_description}\n\n" +
			"## Features\n{features}\n\n## Specifications\n{specifications}\n\n" +
			"## Why Choose This Product?\n{usps}",
		MaxTitleLength: 255,
		AllowsHTML:     true,
		RequiresPrice:  true,
	},

	"etsy": {
		Key:         "etsy",
		Name:        "Etsy",
		TitleFormat: "{product_name} - Handmade by {brand}",
		DescriptionFormat: "{product_description}\n\n✨ **Features:**\n{features}\n\n" +
			"📏 **Details:**\n{specifications}\n\n💖 {usps_bullets}\n\n{additional_notes}",
		MaxTitleLength:   140,
		MaxBullets:       5,
		AllowsHTML:       true,
		RequiresPrice:    true,
		RequiresCategory: true,
	},
}

// Get returns the template for a marketplace key.
func Get(key string) (Template, bool) {
	t, ok := templates[key]
	return t, ok
}

// Keys returns all registered marketplace keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(templates))
	for k := range templates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns all templates sorted by key, for the template metadata endpoint.
func All() []Template {
	out := make([]Template, 0, len(templates))
	for _, k := range Keys() {
		out = append(out, templates[k])
	}
	return out
}
