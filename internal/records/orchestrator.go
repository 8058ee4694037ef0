package records

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/pkg/semantic"
)

// DefaultTimeout bounds every individual store call.
const DefaultTimeout = 30 * time.Second

// AcceptedAssignment pairs a validated assignment with its category routing
// and the payload it stores.
type AcceptedAssignment struct {
	Assignment requests.Assignment
	Category   *catalog.Category
	Payload    map[string]any
}

// Orchestrator performs deduplicated paired writes to the structured and
// semantic stores. Writes for one content hash are serialized through a
// singleflight group, so concurrent ingestions of identical content share
// one storage pass and one mapping set.
type Orchestrator struct {
	mappings   MappingStore
	structured StructuredStore
	semantic   semantic.Store
	dedup      Deduper
	logger     *slog.Logger
	timeout    time.Duration
	flight     singleflight.Group
}

// NewOrchestrator creates an Orchestrator. A zero timeout selects
// DefaultTimeout.
func NewOrchestrator(
	mappings MappingStore,
	structured StructuredStore,
	sem semantic.Store,
	dedup Deduper,
	logger *slog.Logger,
	timeout time.Duration,
) *Orchestrator {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Orchestrator{
		mappings:   mappings,
		structured: structured,
		semantic:   sem,
		dedup:      dedup,
		logger:     logger.With("system", "orchestrator"),
		timeout:    timeout,
	}
}

// Store writes one structured/semantic pair per accepted assignment and
// returns the request's full mapping set. A request whose content hash
// already belongs to another active request returns that request's mappings
// unchanged. Assignments that already hold a mapping for this request are
// skipped, which makes retries resume instead of duplicating rows.
//
// Write order per pair is structured first, semantic second. A semantic
// failure rolls the new structured record back and fails with
// ErrDualWriteAborted; a structured failure surfaces ErrStorageUnavailable
// or ErrTimeout and leaves earlier committed pairs in place.
func (o *Orchestrator) Store(
	ctx context.Context,
	req *requests.Request,
	accepted []AcceptedAssignment,
) ([]StorageMapping, error) {
	v, err, _ := o.flight.Do(req.ContentHash, func() (any, error) {
		return o.store(ctx, req, accepted)
	})
	if err != nil {
		return nil, err
	}
	return v.([]StorageMapping), nil
}

func (o *Orchestrator) store(
	ctx context.Context,
	req *requests.Request,
	accepted []AcceptedAssignment,
) ([]StorageMapping, error) {
	existing, err := o.dedup.FindActiveByHash(ctx, req.ContentHash)
	if err != nil && !errors.Is(err, requests.ErrNotFound) {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil && existing.ID != req.ID {
		mappings, err := o.mappings.ListByRequest(ctx, existing.ID)
		if err != nil {
			return nil, err
		}
		if len(mappings) > 0 {
			o.logger.Info("duplicate content, returning existing mappings",
				"request", req.ID, "existing", existing.ID, "hash", req.ContentHash)
			return mappings, nil
		}
	}

	stored, err := o.mappings.ListByRequest(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	covered := make(map[int]struct{}, len(stored))
	for _, m := range stored {
		covered[m.CategoryID] = struct{}{}
	}

	for _, a := range accepted {
		if _, done := covered[a.Category.ID]; done {
			continue
		}
		m, err := o.storePair(ctx, req, a)
		if err != nil {
			return nil, err
		}
		stored = append(stored, *m)
		covered[a.Category.ID] = struct{}{}
	}

	return stored, nil
}

func (o *Orchestrator) storePair(
	ctx context.Context,
	req *requests.Request,
	a AcceptedAssignment,
) (*StorageMapping, error) {
	if a.Category.Table == "" || a.Category.Collection == "" {
		return nil, fmt.Errorf("%w: category %s", ErrUnroutableCategory, a.Category.Code)
	}

	linkID := uuid.New()

	rowID, err := withTimeoutValue(ctx, o.timeout, func(opCtx context.Context) (string, error) {
		return o.structured.Insert(opCtx, a.Category.Table, linkID, req.ID, a.Payload)
	})
	if err != nil {
		return nil, o.classify("structured insert", a.Category.Code, err)
	}

	doc := semantic.Document{
		LinkID:    linkID,
		RequestID: req.ID,
		Content:   RenderText(a.Payload, req.RawContent),
	}

	_, err = withTimeoutValue(ctx, o.timeout, func(opCtx context.Context) (struct{}, error) {
		return struct{}{}, o.semantic.Insert(opCtx, a.Category.Collection, doc)
	})
	if err != nil {
		// Roll back the structured record created in this pass only; a
		// pre-existing linked record is never touched.
		delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()
		if delErr := o.structured.Delete(delCtx, a.Category.Table, rowID); delErr != nil {
			o.logger.Error("compensating structured delete failed",
				"table", a.Category.Table, "key", rowID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: semantic insert for %s: %v", ErrDualWriteAborted, a.Category.Code, err)
	}

	m := StorageMapping{
		LinkID:        linkID,
		RequestID:     req.ID,
		CategoryID:    a.Category.ID,
		StructuredKey: StructuredKey(a.Category.Table, rowID),
		SemanticKey:   a.Category.Collection,
		Status:        MappingActive,
	}
	if err := o.mappings.Insert(ctx, m); err != nil {
		return nil, o.classify("mapping insert", a.Category.Code, err)
	}

	o.logger.Info("record pair stored",
		"request", req.ID, "category", a.Category.Code, "link", linkID)
	return &m, nil
}

func withTimeoutValue[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return fn(opCtx)
}

// classify folds backend errors into the retryable sentinels. Routing and
// timeout sentinels pass through; anything else is a backend availability
// problem.
func (o *Orchestrator) classify(op, category string, err error) error {
	switch {
	case errors.Is(err, ErrUnroutableCategory), errors.Is(err, ErrTimeout), errors.Is(err, ErrDualWriteAborted):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %s for %s", ErrTimeout, op, category)
	default:
		return fmt.Errorf("%w: %s for %s: %v", ErrStorageUnavailable, op, category, err)
	}
}
