package catalog

// RuleType identifies how a validation rule is evaluated.
type RuleType string

const (
	// RuleRequiredField requires Field to be present in the segment. Hard.
	RuleRequiredField RuleType = "required_field"
	// RuleDataType requires Field, when present, to parse as Definition
	// (number, string, bool). Soft.
	RuleDataType RuleType = "data_type"
	// RuleBusinessConstraint applies the named constraint in Definition
	// (non_negative, non_empty, content_present) to Field. Hard.
	RuleBusinessConstraint RuleType = "business_constraint"
	// RulePatternMatch requires Field, when present, to match the Definition
	// regular expression. Soft.
	RulePatternMatch RuleType = "pattern_match"
)

// Hard reports whether failing the rule invalidates the assignment outright.
// Soft rules only apply a confidence penalty.
func (t RuleType) Hard() bool {
	return t == RuleRequiredField || t == RuleBusinessConstraint
}

// ValidationRule is a category-scoped business rule. Priority 1 is most
// important; rules are evaluated in ascending priority order.
type ValidationRule struct {
	ID         string   `toml:"id"`
	CategoryID int      `toml:"category_id"`
	Type       RuleType `toml:"type"`
	Field      string   `toml:"field"`
	Definition string   `toml:"definition"`
	Priority   int      `toml:"priority"`
}

// RelevanceRule declares that a linked category co-occurs with a primary
// assignment when any trigger field is present in the segment. Primary
// restricts the rule to a specific primary category code; empty means the
// rule applies regardless of primary.
type RelevanceRule struct {
	ID            string   `toml:"id"`
	Primary       string   `toml:"primary"`
	Linked        string   `toml:"linked"`
	TriggerFields []string `toml:"trigger_fields"`
}

// Triggered reports whether the rule fires for the given primary category
// code and set of segment field names.
func (r *RelevanceRule) Triggered(primaryCode string, fields map[string]struct{}) bool {
	if r.Primary != "" && r.Primary != primaryCode {
		return false
	}
	for _, f := range r.TriggerFields {
		if _, ok := fields[f]; ok {
			return true
		}
	}
	return false
}
