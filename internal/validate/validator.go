// Package validate implements rule validation for category assignments:
// per-category business rules evaluated in priority order, plus the
// structural containment check that keeps stored output inside the input
// segment's field set. Hard failures invalidate the assignment; soft
// failures apply a fixed confidence penalty.
package validate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
)

// Defaults for the validation policy.
const (
	DefaultPenalty   = 0.10
	DefaultThreshold = 0.70
)

// Result records one rule evaluation.
type Result struct {
	RuleID  string `json:"ruleId"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// Outcome is the validation verdict for one assignment. Confidence is the
// input confidence after soft-rule penalties, clamped to [0,1]. Eligible
// reports whether the assignment may act as Primary.
type Outcome struct {
	Passed     bool
	Eligible   bool
	Confidence float64
	Results    []Result
}

// FailingRule returns the id of the first failed rule, or empty.
func (o *Outcome) FailingRule() string {
	for _, r := range o.Results {
		if !r.Passed {
			return r.RuleID
		}
	}
	return ""
}

// Validator evaluates catalog rules against segments. Pattern rules are
// compiled once at construction; the validator is read-only afterwards and
// safe for concurrent use.
type Validator struct {
	catalog   *catalog.Catalog
	compiled  map[string]*regexp.Regexp
	penalty   float64
	threshold float64
}

// New builds a Validator over the catalog with the given soft-rule penalty
// and primary confidence threshold. Zero values select the defaults.
func New(c *catalog.Catalog, penalty, threshold float64) (*Validator, error) {
	if penalty == 0 {
		penalty = DefaultPenalty
	}
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	compiled := make(map[string]*regexp.Regexp)
	for _, r := range c.Rules {
		if r.Type != catalog.RulePatternMatch {
			continue
		}
		re, err := regexp.Compile(r.Definition)
		if err != nil {
			return nil, fmt.Errorf("compile rule %s: %w", r.ID, err)
		}
		compiled[r.ID] = re
	}

	return &Validator{
		catalog:   c,
		compiled:  compiled,
		penalty:   penalty,
		threshold: threshold,
	}, nil
}

// Threshold returns the minimum confidence for a Primary assignment.
func (v *Validator) Threshold() float64 {
	return v.threshold
}

// Validate evaluates the category's rules against the segment in ascending
// priority order, then applies the containment check to the record the
// assignment would store. Hard failures (required fields, business
// constraints, containment) mark the outcome failed; soft failures deduct
// the penalty from confidence.
func (v *Validator) Validate(cat *catalog.Category, confidence float64, seg *segments.Segment) Outcome {
	out := Outcome{Passed: true, Confidence: confidence}

	for _, rule := range v.catalog.RulesFor(cat.ID) {
		res := v.evaluate(rule, seg)
		out.Results = append(out.Results, res)
		if res.Passed {
			continue
		}
		if rule.Type.Hard() {
			out.Passed = false
		} else {
			out.Confidence -= v.penalty
		}
	}

	if err := CheckContainment(ProposedRecord(cat, seg), seg, cat); err != nil {
		out.Passed = false
		out.Results = append(out.Results, Result{
			RuleID:  "containment",
			Passed:  false,
			Message: err.Error(),
		})
	}

	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	out.Eligible = out.Passed && out.Confidence >= v.threshold

	return out
}

func (v *Validator) evaluate(rule catalog.ValidationRule, seg *segments.Segment) Result {
	res := Result{RuleID: rule.ID, Passed: true}

	value, present := seg.StructuredData[rule.Field]

	switch rule.Type {
	case catalog.RuleRequiredField:
		if !present || isBlank(value) {
			res.Passed = false
			res.Message = fmt.Sprintf("required field %q missing", rule.Field)
		}

	case catalog.RuleDataType:
		if present && !typeMatches(value, rule.Definition) {
			res.Passed = false
			res.Message = fmt.Sprintf("field %q is not a %s", rule.Field, rule.Definition)
		}

	case catalog.RuleBusinessConstraint:
		if msg := checkConstraint(rule, value, present, seg); msg != "" {
			res.Passed = false
			res.Message = msg
		}

	case catalog.RulePatternMatch:
		sv, isString := value.(string)
		if present && isString {
			if re, ok := v.compiled[rule.ID]; ok && !re.MatchString(sv) {
				res.Passed = false
				res.Message = fmt.Sprintf("field %q does not match %s", rule.Field, rule.Definition)
			}
		}
	}

	return res
}

func checkConstraint(rule catalog.ValidationRule, value any, present bool, seg *segments.Segment) string {
	switch rule.Definition {
	case "non_negative":
		if !present {
			return ""
		}
		n, ok := asNumber(value)
		if !ok {
			return fmt.Sprintf("field %q is not numeric", rule.Field)
		}
		if n < 0 {
			return fmt.Sprintf("field %q is negative", rule.Field)
		}
	case "non_empty":
		if present && isBlank(value) {
			return fmt.Sprintf("field %q is empty", rule.Field)
		}
	case "content_present":
		if seg.Empty() {
			return "segment carries no content"
		}
	}
	return ""
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func typeMatches(v any, definition string) bool {
	switch definition {
	case "number":
		_, ok := asNumber(v)
		return ok
	case "string":
		_, ok := v.(string)
		return ok
	case "bool":
		_, ok := v.(bool)
		return ok
	}
	return true
}
