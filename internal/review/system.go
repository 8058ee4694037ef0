package review

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/pkg/pagination"
)

// Processor re-enters a resolved request into the pipeline. Category is the
// reviewer's pinned category code for reassignments, empty for plain
// accepts.
type Processor interface {
	Resume(ctx context.Context, requestID uuid.UUID, category string) error
}

// Transitioner moves a request through its status machine. Satisfied by the
// requests system.
type Transitioner interface {
	Transition(ctx context.Context, id uuid.UUID, to requests.Status, reason string) (*requests.Request, error)
}

// System defines the public contract for the manual-review queue.
type System interface {
	Handler() *Handler

	// SetProcessor binds the pipeline callback invoked on accept and
	// reassign decisions. Must be called before Resolve.
	SetProcessor(p Processor)

	// Enqueue parks a request for review. One open item per request; a
	// second enqueue updates the reason.
	Enqueue(ctx context.Context, requestID uuid.UUID, reason string) error

	ListPending(ctx context.Context, page pagination.PageRequest) (*pagination.PageResult[Item], error)

	// Claim marks the item as being worked by the reviewer. Claiming an
	// already-claimed item fails with ErrAlreadyClaimed.
	Claim(ctx context.Context, id uuid.UUID, reviewer string) (*Item, error)

	// Release clears claims older than the given age so abandoned items
	// return to the pending pool.
	Release(ctx context.Context, olderThan time.Duration) (int, error)

	// Resolve applies the reviewer's decision to a claimed item and removes
	// it from the queue.
	Resolve(ctx context.Context, id uuid.UUID, reviewer string, d Decision) error
}
