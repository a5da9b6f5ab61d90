package marketplace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/listora/listora/pkg/api"
)

// ExportMarkdown renders a listing as a Markdown document with title,
// description, key features, specifications, and SEO keyword sections.
// Empty sections are omitted.
func ExportMarkdown(l *api.Listing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", l.Title)
	fmt.Fprintf(&b, "%s\n\n", l.Description)

	if len(l.BulletPoints) > 0 {
		b.WriteString("## Key Features\n")
		for _, bp := range l.BulletPoints {
			fmt.Fprintf(&b, "- %s\n", bp)
		}
		b.WriteString("\n")
	}

	if len(l.Specifications) > 0 {
		b.WriteString("## Specifications\n")
		keys := make([]string, 0, len(l.Specifications))
		for k := range l.Specifications {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- **%s:** %s\n", k, l.Specifications[k])
		}
		b.WriteString("\n")
	}

	if len(l.Keywords) > 0 {
		fmt.Fprintf(&b, "## SEO Keywords\n%s\n", strings.Join(l.Keywords, ", "))
	}

	return b.String()
}

// ExportJSON renders a listing as indented JSON without escaping non-ASCII
// characters, matching what a human would paste into a seller console.
func ExportJSON(l *api.Listing) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
