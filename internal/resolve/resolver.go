// Package resolve expands a validated primary assignment into secondary
// assignments through the catalog's cross-category relevance rules. Every
// proposed secondary is validated independently; a configurable cap bounds
// the retained set, with the excess surfaced as warnings rather than
// silently dropped.
package resolve

import (
	"fmt"
	"slices"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
	"github.com/wmsforge/stockroom/internal/validate"
)

// DefaultCap bounds the number of secondary assignments per request.
const DefaultCap = 4

// Secondary is one accepted secondary assignment. Confidence is the
// validation-adjusted score; SubCategory is always Relationships, since a
// secondary exists because of a declared cross-category link.
type Secondary struct {
	Category    *catalog.Category
	SubCategory catalog.SubCategory
	Confidence  float64
	RuleID      string
	Validation  validate.Outcome
}

// Resolver applies relevance rules. Stateless and safe for concurrent use.
type Resolver struct {
	catalog   *catalog.Catalog
	validator *validate.Validator
	cap       int
}

// New creates a Resolver. A zero cap selects DefaultCap.
func New(c *catalog.Catalog, v *validate.Validator, cap int) *Resolver {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &Resolver{catalog: c, validator: v, cap: cap}
}

// Resolve proposes secondaries for the primary assignment. Rules whose
// trigger fields appear in the segment nominate their linked category; each
// nominee is validated against its own rule set and only passing nominees
// are kept. When more nominees pass than the cap allows, the highest
// confidences win and every dropped nominee is recorded as a warning.
func (r *Resolver) Resolve(primary *catalog.Category, confidence float64, seg *segments.Segment) ([]Secondary, []string) {
	fields := seg.Fields()
	seen := map[string]struct{}{primary.Code: {}}

	var accepted []Secondary
	for _, rule := range r.catalog.Relevance {
		if !rule.Triggered(primary.Code, fields) {
			continue
		}
		if _, dup := seen[rule.Linked]; dup {
			continue
		}
		seen[rule.Linked] = struct{}{}

		linked, err := r.catalog.CategoryByCode(rule.Linked)
		if err != nil {
			continue
		}

		proposed := confidence * coverage(rule, fields)
		outcome := r.validator.Validate(linked, proposed, seg)
		if !outcome.Passed {
			continue
		}

		accepted = append(accepted, Secondary{
			Category:    linked,
			SubCategory: catalog.SubRelationships,
			Confidence:  outcome.Confidence,
			RuleID:      rule.ID,
			Validation:  outcome,
		})
	}

	slices.SortStableFunc(accepted, func(a, b Secondary) int {
		if a.Confidence != b.Confidence {
			if a.Confidence > b.Confidence {
				return -1
			}
			return 1
		}
		return a.Category.ID - b.Category.ID
	})

	if len(accepted) <= r.cap {
		return accepted, nil
	}

	warnings := make([]string, 0, len(accepted)-r.cap)
	for _, dropped := range accepted[r.cap:] {
		warnings = append(warnings, fmt.Sprintf(
			"secondary category %s (rule %s, confidence %.2f) dropped: cap %d exceeded",
			dropped.Category.Code, dropped.RuleID, dropped.Confidence, r.cap))
	}

	return accepted[:r.cap], warnings
}

// coverage is the fraction of the rule's trigger fields present in the
// segment; it scales the primary confidence down for weakly-linked rules.
func coverage(rule catalog.RelevanceRule, fields map[string]struct{}) float64 {
	matched := 0
	for _, f := range rule.TriggerFields {
		if _, ok := fields[f]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(rule.TriggerFields))
}
