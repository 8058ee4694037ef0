// Package classify implements the deterministic category classifier. Each
// catalog category is scored against a segment through four independent
// signal sources, fused into a single confidence. A category only appears
// in the output when at least one concrete signal supports it; the
// classifier never proposes a category on general domain affinity alone.
package classify

import (
	"slices"
	"strings"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/segments"
)

// Method identifies the provenance of an assignment: the leading signal
// source for classified primaries, the relevance rule for derived
// secondaries, or the reviewer for manual pins.
type Method string

const (
	MethodSchemaMatch    Method = "schema_match"
	MethodPatternMatch   Method = "pattern_match"
	MethodKeywordMatch   Method = "keyword_match"
	MethodTextSimilarity Method = "text_similarity"
	MethodRelevanceRule  Method = "relevance_rule"
	MethodManual         Method = "manual"
)

// Signal weights. Schema evidence dominates, free-text similarity is the
// weakest source and needs a minimum overlap before it counts at all.
const (
	weightSchema     = 1.0
	weightPattern    = 0.8
	weightKeyword    = 0.6
	weightTextSim    = 0.4
	minTextSimSignal = 0.2
)

// Candidate is one ranked classification result.
type Candidate struct {
	Category    *catalog.Category
	SubCategory catalog.SubCategory
	Confidence  float64
	Method      Method
}

type signals struct {
	schema  float64
	pattern float64
	keyword float64
	textSim float64
}

// Classifier scores segments against a fixed catalog. It holds no mutable
// state and is safe for concurrent use.
type Classifier struct {
	catalog *catalog.Catalog
}

// New creates a Classifier over the given catalog.
func New(c *catalog.Catalog) *Classifier {
	return &Classifier{catalog: c}
}

// Classify scores the segment against every catalog category and returns
// supported candidates ranked by confidence. An empty segment fails with
// ErrInputEmpty; a segment matching nothing yields an empty list, not an
// error.
func (c *Classifier) Classify(segment *segments.Segment) ([]Candidate, error) {
	if segment == nil || segment.Empty() {
		return nil, ErrInputEmpty
	}

	n := segment.Normalize()
	values := candidateValues(&n)
	tokens := tokenize(n.FreeText())
	for _, k := range n.Keywords {
		tokens[k] = struct{}{}
	}

	var out []Candidate
	for i := range c.catalog.Categories {
		cat := &c.catalog.Categories[i]

		sig := signals{
			schema:  schemaScore(cat, &n),
			pattern: patternScore(cat, values),
			keyword: keywordScore(cat, tokens),
			textSim: textSimScore(cat, tokens),
		}
		if sig.textSim < minTextSimSignal {
			sig.textSim = 0
		}
		if sig.schema == 0 && sig.pattern == 0 && sig.keyword == 0 && sig.textSim == 0 {
			continue
		}

		out = append(out, Candidate{
			Category:    cat,
			SubCategory: leadSubCategory(sig),
			Confidence:  fuse(sig),
			Method:      leadMethod(sig),
		})
	}

	slices.SortStableFunc(out, func(a, b Candidate) int {
		if a.Confidence != b.Confidence {
			if a.Confidence > b.Confidence {
				return -1
			}
			return 1
		}
		if r := methodRank(a.Method) - methodRank(b.Method); r != 0 {
			return r
		}
		return a.Category.ID - b.Category.ID
	})

	return out, nil
}

// fuse combines independent signals so additional evidence always raises
// confidence without ever exceeding 1.
func fuse(s signals) float64 {
	miss := (1 - weightSchema*s.schema) *
		(1 - weightPattern*s.pattern) *
		(1 - weightKeyword*s.keyword) *
		(1 - weightTextSim*s.textSim)
	return 1 - miss
}

// schemaScore is the fraction of segment fields owned by the category
// schema. A segment whose fields all belong to one category scores 1.
func schemaScore(cat *catalog.Category, s *segments.Segment) float64 {
	if len(s.StructuredData) == 0 || len(cat.Schema) == 0 {
		return 0
	}
	matched := 0
	for field := range s.StructuredData {
		if cat.OwnsField(field) {
			matched++
		}
	}
	return float64(matched) / float64(len(s.StructuredData))
}

// patternScore is the fraction of the category's declared patterns that
// match at least one segment value.
func patternScore(cat *catalog.Category, values []string) float64 {
	if len(cat.Patterns) == 0 || len(values) == 0 {
		return 0
	}
	matched := 0
	for _, name := range cat.Patterns {
		re := Pattern(name)
		if re == nil {
			continue
		}
		for _, v := range values {
			if re.MatchString(v) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(cat.Patterns))
}

// keywordScore is the fraction of the category's keyword dictionary present
// in the segment's token set.
func keywordScore(cat *catalog.Category, tokens map[string]struct{}) float64 {
	if len(cat.Keywords) == 0 || len(tokens) == 0 {
		return 0
	}
	matched := 0
	for _, kw := range cat.Keywords {
		if _, ok := tokens[strings.ToLower(kw)]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(cat.Keywords))
}

// textSimScore is the token overlap between the segment text and the
// category description, relative to the segment's token count.
func textSimScore(cat *catalog.Category, tokens map[string]struct{}) float64 {
	if len(tokens) == 0 || cat.Description == "" {
		return 0
	}
	desc := tokenize(cat.Description)
	matched := 0
	for t := range tokens {
		if _, ok := desc[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(tokens))
}

func leadMethod(s signals) Method {
	switch {
	case s.schema > 0:
		return MethodSchemaMatch
	case s.pattern > 0:
		return MethodPatternMatch
	case s.keyword > 0:
		return MethodKeywordMatch
	default:
		return MethodTextSimilarity
	}
}

// leadSubCategory derives the facet from the leading signal: schema evidence
// is functional content, pattern evidence is technical identifiers, keyword
// evidence is configuration vocabulary, and bare text similarity is notes.
func leadSubCategory(s signals) catalog.SubCategory {
	switch leadMethod(s) {
	case MethodSchemaMatch:
		return catalog.SubFunctional
	case MethodPatternMatch:
		return catalog.SubTechnical
	case MethodKeywordMatch:
		return catalog.SubConfiguration
	default:
		return catalog.SubNotes
	}
}

func methodRank(m Method) int {
	switch m {
	case MethodSchemaMatch:
		return 0
	case MethodPatternMatch:
		return 1
	case MethodKeywordMatch:
		return 2
	default:
		return 3
	}
}

// candidateValues collects the strings domain patterns are matched against:
// structured string values, extractor entities, and raw content tokens.
func candidateValues(s *segments.Segment) []string {
	var out []string
	for _, v := range s.StructuredData {
		if sv, ok := v.(string); ok && sv != "" {
			out = append(out, sv)
		}
	}
	out = append(out, s.Entities...)
	out = append(out, strings.Fields(s.RawContent)...)
	return out
}

func tokenize(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if len(f) < 3 {
			continue
		}
		out[f] = struct{}{}
	}
	return out
}
