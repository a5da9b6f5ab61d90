package marketplace

import "strings"

// stockKeywords are generic commerce terms appended to every keyword set.
var stockKeywords = []string{"buy", "sale", "discount", "best price", "online"}

const maxKeywords = 20

// Keywords builds a deduplicated SEO keyword list from the product name,
// brand, category, and features, plus a set of stock commerce terms.
// Tokens shorter than three characters are dropped. Order is insertion
// order (name, brand, category, features, stock terms), capped at 20.
func Keywords(productName, brand, category string, features []string) []string {
	var out []string
	seen := make(map[string]bool)

	add := func(word string) {
		word = strings.TrimSpace(strings.ToLower(word))
		if len(word) <= 2 || seen[word] {
			return
		}
		seen[word] = true
		out = append(out, word)
	}

	addTokens := func(s string) {
		for _, tok := range strings.Fields(s) {
			add(tok)
		}
	}

	addTokens(productName)
	add(brand)
	addTokens(category)
	for _, f := range features {
		addTokens(f)
	}
	for _, k := range stockKeywords {
		add(k)
	}

	if len(out) > maxKeywords {
		out = out[:maxKeywords]
	}
	return out
}
