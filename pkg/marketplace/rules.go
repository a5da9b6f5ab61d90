package marketplace

// PromptRules steer AI-assisted description generation for a storefront:
// tone, structure, and what the model is allowed to use.
type PromptRules struct {
	Tone              string
	DescriptionStyle  string
	AllowsEmoji       bool
	KeywordsImportant bool
}

// promptRules holds storefront-specific generation rules. Storefronts
// without an entry use defaultRules.
var promptRules = map[string]PromptRules{
	"amazon_in": {
		Tone:              "professional",
		DescriptionStyle:  "features_and_benefits",
		KeywordsImportant: true,
	},
	"flipkart": {
		Tone:              "conversational",
		DescriptionStyle:  "paragraph",
		KeywordsImportant: true,
	},
	"meesho": {
		Tone:             "simple_hindi_english",
		DescriptionStyle: "simple_points",
		AllowsEmoji:      true,
	},
}

var defaultRules = PromptRules{
	Tone:              "professional",
	DescriptionStyle:  "standard",
	KeywordsImportant: true,
}

// Rules returns the prompt rules for a marketplace key, falling back to the
// default rule set for storefronts without specific guidance.
func Rules(key string) PromptRules {
	if r, ok := promptRules[key]; ok {
		return r
	}
	return defaultRules
}
