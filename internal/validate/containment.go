package validate

import (
	"fmt"
	"strings"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
)

// boilerplatePhrases are generalization markers. Their presence in stored
// free text means the content describes the domain in general rather than
// the segment at hand, which the containment invariant forbids.
var boilerplatePhrases = []string{
	"typically",
	"usually",
	"generally",
	"in general",
	"as a rule",
	"in most cases",
	"it is common",
	"best practice",
}

// ProposedRecord builds the structured record an assignment would store:
// the category's declared defaults overlaid with the segment's fields. No
// other field source exists, which is what the containment check enforces.
func ProposedRecord(cat *catalog.Category, seg *segments.Segment) map[string]any {
	out := make(map[string]any, len(cat.Defaults)+len(seg.StructuredData))
	for k, v := range cat.Defaults {
		out[k] = v
	}
	for k, v := range seg.StructuredData {
		out[k] = v
	}
	return out
}

// CheckContainment verifies that every field of the proposed stored record
// exists in the input segment or in the category's declared defaults, and
// that stored free text carries no boilerplate generalization phrases.
// Violations return ErrConstraintViolation; violating content is rejected,
// never corrected.
func CheckContainment(record map[string]any, seg *segments.Segment, cat *catalog.Category) error {
	for field := range record {
		if _, ok := seg.StructuredData[field]; ok {
			continue
		}
		if _, ok := cat.Defaults[field]; ok {
			continue
		}
		return fmt.Errorf("%w: field %q absent from input and defaults", ErrConstraintViolation, field)
	}

	if phrase := boilerplate(seg.RawContent); phrase != "" {
		return fmt.Errorf("%w: boilerplate phrase %q in free text", ErrConstraintViolation, phrase)
	}
	for _, v := range record {
		sv, ok := v.(string)
		if !ok {
			continue
		}
		if phrase := boilerplate(sv); phrase != "" {
			return fmt.Errorf("%w: boilerplate phrase %q in field text", ErrConstraintViolation, phrase)
		}
	}

	return nil
}

func boilerplate(text string) string {
	if text == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}
