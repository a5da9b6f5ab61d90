package engine

import (
	"encoding/json"
	"strings"
)

// extractJSON parses model output into v. Models often wrap JSON in prose
// or code fences; when direct parsing fails, the substring between the
// first '{' and the last '}' is tried before giving up.
func extractJSON(output string, v any) bool {
	trimmed := strings.TrimSpace(output)
	if json.Unmarshal([]byte(trimmed), v) == nil {
		return true
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start < 0 || end <= start {
		return false
	}

	return json.Unmarshal([]byte(trimmed[start:end+1]), v) == nil
}
