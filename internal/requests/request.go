// Package requests implements the categorization request domain: the request
// record, its status state machine, the category assignments and validation
// results produced while processing it, and data access for all three.
package requests

import (
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/classify"
	"github.com/wmsforge/stockroom/internal/segments"
)

// Status is the request lifecycle state.
type Status string

const (
	StatusPending      Status = "pending"
	StatusProcessing   Status = "processing"
	StatusCompleted    Status = "completed"
	StatusFailed       Status = "failed"
	StatusManualReview Status = "manual_review"
)

// CanTransition reports whether the state machine permits moving to the
// given status. Completed is terminal; Failed re-enters Processing only
// through explicit resubmission; ManualReview re-enters Processing only
// through a human decision. Processing returns to Pending when storage is
// temporarily unavailable, leaving the request eligible for retry.
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed ||
			to == StatusManualReview || to == StatusPending
	case StatusManualReview:
		return to == StatusProcessing || to == StatusFailed
	case StatusFailed:
		return to == StatusProcessing
	default:
		return false
	}
}

// Terminal reports whether the status ends processing without human action.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Request is one categorization request over a submitted segment. Reason
// carries the human-readable cause for ManualReview or Failed states.
// Warnings accumulate non-fatal findings, such as secondaries dropped by
// the resolver cap.
type Request struct {
	ID             uuid.UUID      `json:"id"`
	ContentHash    string         `json:"content_hash"`
	SegmentType    string         `json:"segment_type"`
	StructuredData map[string]any `json:"structured_data"`
	RawContent     string         `json:"raw_content"`
	ArchiveKey     string         `json:"archive_key"`
	Status         Status         `json:"status"`
	Attempt        int            `json:"attempt"`
	Reason         *string        `json:"reason,omitempty"`
	Warnings       []string       `json:"warnings,omitempty"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Segment reconstructs the segment the request was created from.
func (r *Request) Segment() segments.Segment {
	return segments.Segment{
		ID:             r.ID,
		Type:           r.SegmentType,
		StructuredData: r.StructuredData,
		RawContent:     r.RawContent,
	}
}

// Kind distinguishes the single best-fit assignment from additional
// relevant categories.
type Kind string

const (
	KindPrimary   Kind = "primary"
	KindSecondary Kind = "secondary"
)

// ValidationStatus is the validator's verdict on an assignment.
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "pending"
	ValidationValid   ValidationStatus = "valid"
	ValidationInvalid ValidationStatus = "invalid"
)

// Assignment is one (request, category) classification outcome.
type Assignment struct {
	ID               uuid.UUID           `json:"id"`
	RequestID        uuid.UUID           `json:"request_id"`
	CategoryID       int                 `json:"category_id"`
	SubCategory      catalog.SubCategory `json:"sub_category"`
	Kind             Kind                `json:"kind"`
	Confidence       float64             `json:"confidence"`
	Method           classify.Method     `json:"method"`
	ValidationStatus ValidationStatus    `json:"validation_status"`
	CreatedAt        time.Time           `json:"created_at"`
}

// ValidationResult is one persisted rule evaluation for a request.
type ValidationResult struct {
	RequestID uuid.UUID `json:"request_id"`
	RuleID    string    `json:"rule_id"`
	Passed    bool      `json:"passed"`
	Message   string    `json:"message,omitempty"`
}

// Detail is a request with its assignments and validation results.
type Detail struct {
	Request
	Assignments []Assignment       `json:"assignments"`
	Results     []ValidationResult `json:"validation_results"`
}

// CreateCommand carries the data needed to register a new request. Raw is
// the original submitted payload, archived verbatim for review.
type CreateCommand struct {
	Segment segments.Segment
	Raw     []byte
}
