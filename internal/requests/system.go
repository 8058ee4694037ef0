package requests

import (
	"context"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/pagination"
)

// System defines the public contract for request domain operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Request], error)

	Find(ctx context.Context, id uuid.UUID) (*Detail, error)
	Create(ctx context.Context, cmd CreateCommand) (*Request, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// FindActiveByHash returns the most recent non-failed request sharing
	// the content hash, or ErrNotFound.
	FindActiveByHash(ctx context.Context, hash string) (*Request, error)

	// Transition moves the request through the status state machine,
	// recording an optional reason. Disallowed moves fail with
	// ErrInvalidTransition.
	Transition(ctx context.Context, id uuid.UUID, to Status, reason string) (*Request, error)

	// Resubmit restarts a Failed request at Processing, incrementing its
	// attempt counter.
	Resubmit(ctx context.Context, id uuid.UUID) (*Request, error)

	// Cancel marks a Pending or Processing request Failed with a
	// cancellation reason. Already-terminal requests fail with
	// ErrNotCancellable.
	Cancel(ctx context.Context, id uuid.UUID) error

	// ReplaceAssignments atomically replaces the request's assignments and
	// validation results with the outcome of one processing pass.
	ReplaceAssignments(
		ctx context.Context,
		requestID uuid.UUID,
		assignments []Assignment,
		results []ValidationResult,
	) error

	// AppendWarnings adds non-fatal findings to the request record.
	AppendWarnings(ctx context.Context, id uuid.UUID, warnings []string) error
}
