// Package segments defines the unit of content the categorization pipeline
// operates on: a segment extracted upstream, carrying structured fields,
// free text, and any pre-extracted entities and keywords. The package also
// owns segment normalization and the content hash that deduplicates
// submissions.
package segments

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Segment is a discrete unit of already-extracted content submitted for
// categorization. StructuredData holds typed fields keyed by name;
// RawContent is free text; Entities and Keywords are extractor hints, not
// authoritative signals. ConfidenceHint is the extractor's own confidence
// in the segmentation, in [0,1].
type Segment struct {
	ID             uuid.UUID      `json:"id"`
	Type           string         `json:"type"`
	StructuredData map[string]any `json:"structuredData"`
	RawContent     string         `json:"rawContent"`
	Entities       []string       `json:"entities,omitempty"`
	Keywords       []string       `json:"keywords,omitempty"`
	ConfidenceHint float64        `json:"confidenceHint,omitempty"`
}

// Empty reports whether the segment carries no classifiable content.
func (s *Segment) Empty() bool {
	return len(s.StructuredData) == 0 && strings.TrimSpace(s.RawContent) == ""
}

// Fields returns the set of structured field names present in the segment.
func (s *Segment) Fields() map[string]struct{} {
	out := make(map[string]struct{}, len(s.StructuredData))
	for k := range s.StructuredData {
		out[k] = struct{}{}
	}
	return out
}

// Normalize returns a canonical copy: type lowercased, field names trimmed,
// string values and raw content whitespace-collapsed. Identity fields (ID,
// ConfidenceHint) pass through untouched. Two submissions of the same
// content normalize identically regardless of incidental whitespace.
func (s *Segment) Normalize() Segment {
	out := Segment{
		ID:             s.ID,
		Type:           strings.ToLower(strings.TrimSpace(s.Type)),
		RawContent:     collapse(s.RawContent),
		ConfidenceHint: s.ConfidenceHint,
	}

	if len(s.StructuredData) > 0 {
		out.StructuredData = make(map[string]any, len(s.StructuredData))
		for k, v := range s.StructuredData {
			key := strings.TrimSpace(k)
			if sv, ok := v.(string); ok {
				v = collapse(sv)
			}
			out.StructuredData[key] = v
		}
	}

	for _, e := range s.Entities {
		if e = collapse(e); e != "" {
			out.Entities = append(out.Entities, e)
		}
	}
	for _, k := range s.Keywords {
		if k = strings.ToLower(collapse(k)); k != "" {
			out.Keywords = append(out.Keywords, k)
		}
	}

	return out
}

// ContentHash computes the deduplication hash over the normalized segment
// content: type, structured fields, and raw text. Identity and hint fields
// are excluded so resubmission of the same content always collides.
func (s *Segment) ContentHash() (string, error) {
	n := s.Normalize()

	// json.Marshal sorts map keys, so the structured encoding is canonical.
	data, err := json.Marshal(n.StructuredData)
	if err != nil {
		return "", fmt.Errorf("hash segment: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(n.Type))
	h.Write([]byte{0})
	h.Write(data)
	h.Write([]byte{0})
	h.Write([]byte(n.RawContent))

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FreeText returns the segment's unstructured text: raw content plus any
// string-valued structured fields, joined for similarity scoring.
func (s *Segment) FreeText() string {
	parts := make([]string, 0, len(s.StructuredData)+1)
	if s.RawContent != "" {
		parts = append(parts, s.RawContent)
	}
	for _, v := range s.StructuredData {
		if sv, ok := v.(string); ok && sv != "" {
			parts = append(parts, sv)
		}
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
