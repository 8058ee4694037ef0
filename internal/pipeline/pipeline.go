// Package pipeline implements the categorization controller: it owns the
// request state machine and sequences classification, validation, secondary
// resolution, and dual-store writes over immutable request snapshots.
// Classification and validation failures are absorbed into ManualReview;
// only storage failures surface to the caller.
package pipeline

import (
	"context"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/internal/segments"
)

// ReviewQueue parks requests for human adjudication. Satisfied by the
// review system.
type ReviewQueue interface {
	Enqueue(ctx context.Context, requestID uuid.UUID, reason string) error
}

// Result reports the outcome of one segment's ingestion.
type Result struct {
	Request   *requests.Request        `json:"request"`
	Mappings  []records.StorageMapping `json:"mappings,omitempty"`
	Duplicate bool                     `json:"duplicate,omitempty"`
}

// BatchResult reports the outcome of a single segment within a batch.
type BatchResult struct {
	SegmentID uuid.UUID `json:"segment_id"`
	Result    *Result   `json:"result,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// System defines the public contract of the categorization pipeline.
type System interface {
	Handler() *Handler

	// Ingest registers and processes one segment. Identical normalized
	// content returns the existing request's mappings with Duplicate set.
	Ingest(ctx context.Context, seg segments.Segment, raw []byte) (*Result, error)

	// IngestBatch processes segments concurrently. Cancellation is honored
	// at segment boundaries; completed segments stay committed.
	IngestBatch(ctx context.Context, segs []segments.Segment) ([]BatchResult, error)

	// Resume re-enters a reviewed request into processing. A non-empty
	// category pins a manual primary assignment.
	Resume(ctx context.Context, requestID uuid.UUID, category string) error

	// Delete removes the request and both sides of its stored records.
	Delete(ctx context.Context, requestID uuid.UUID) error
}
