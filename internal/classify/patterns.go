package classify

import "regexp"

// Domain pattern registry. Catalog categories reference these by name; an
// unknown name simply contributes no signal, so catalog overlays cannot
// break classification.
var patterns = map[string]*regexp.Regexp{
	"location_code":   regexp.MustCompile(`^[A-Z]-\d{2}-[A-Z]-\d{2}$`),
	"item_code":       regexp.MustCompile(`^SKU\d{6,12}$`),
	"order_number":    regexp.MustCompile(`^(ORD|PO|SO)-?\d{5,10}$`),
	"quantity_unit":   regexp.MustCompile(`(?i)^\d+(\.\d+)?\s?(ea|cs|plt|lb|kg|oz)$`),
	"tracking_number": regexp.MustCompile(`^(1Z[0-9A-Z]{16}|\d{12,22})$`),
}

// Pattern returns the named domain pattern, or nil when unregistered.
func Pattern(name string) *regexp.Regexp {
	return patterns[name]
}
