package records

import (
	"fmt"
	"slices"
	"strings"
)

// RenderText produces the embeddable text for a record: sorted field/value
// lines followed by any free text. Sorting keeps regeneration deterministic
// so a sync update produces the same text for unchanged content.
func RenderText(payload map[string]any, freeText string) string {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %v\n", k, payload[k])
	}
	if freeText != "" {
		b.WriteString(freeText)
	}

	return strings.TrimSpace(b.String())
}
