package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/pkg/pagination"
)

type repo struct {
	items      ItemStore
	requests   Transitioner
	processor  Processor
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a review system over the given item store. The processor is
// bound after construction via SetProcessor.
func New(
	items ItemStore,
	reqs Transitioner,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		items:      items,
		requests:   reqs,
		logger:     logger.With("system", "review"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) SetProcessor(p Processor) {
	r.processor = p
}

func (r *repo) Enqueue(ctx context.Context, requestID uuid.UUID, reason string) error {
	if err := r.items.Upsert(ctx, uuid.New(), requestID, reason); err != nil {
		return fmt.Errorf("enqueue review: %w", err)
	}

	r.logger.Info("request queued for review", "request", requestID, "reason", reason)
	return nil
}

func (r *repo) ListPending(
	ctx context.Context,
	page pagination.PageRequest,
) (*pagination.PageResult[Item], error) {
	page.Normalize(r.pagination)

	total, err := r.items.CountPending(ctx)
	if err != nil {
		return nil, err
	}

	items, err := r.items.ListPending(ctx, page.Offset(), page.PageSize)
	if err != nil {
		return nil, err
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Claim(ctx context.Context, id uuid.UUID, reviewer string) (*Item, error) {
	item, err := r.items.ClaimPending(ctx, id, reviewer)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.claimConflict(ctx, id)
		}
		return nil, fmt.Errorf("claim review item: %w", err)
	}

	r.logger.Info("review item claimed", "item", id, "reviewer", reviewer)
	return item, nil
}

// claimConflict distinguishes a lost claim race from a missing item.
func (r *repo) claimConflict(ctx context.Context, id uuid.UUID) error {
	exists, err := r.items.Exists(ctx, id)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyClaimed
	}
	return ErrNotFound
}

func (r *repo) Release(ctx context.Context, olderThan time.Duration) (int, error) {
	n, err := r.items.ReleaseBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info("stale review claims released", "count", n)
	}
	return n, nil
}

func (r *repo) Resolve(ctx context.Context, id uuid.UUID, reviewer string, d Decision) error {
	if !d.Valid() {
		return fmt.Errorf("%w: action %q", ErrInvalidDecision, d.Action)
	}

	item, err := r.items.Find(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find review item: %w", err)
	}
	if item.ClaimedBy == nil || *item.ClaimedBy != reviewer {
		return ErrNotClaimed
	}

	switch d.Action {
	case ActionReject:
		reason := d.Note
		if reason == "" {
			reason = "rejected by reviewer"
		}
		if _, err := r.requests.Transition(ctx, item.RequestID, requests.StatusFailed, reason); err != nil {
			return err
		}
	default:
		if r.processor == nil {
			return errors.New("review processor not bound")
		}
		if err := r.processor.Resume(ctx, item.RequestID, d.Category); err != nil {
			return err
		}
	}

	if err := r.items.Remove(ctx, id); err != nil {
		return err
	}

	r.logger.Info("review item resolved",
		"item", id, "request", item.RequestID, "action", d.Action, "reviewer", reviewer)
	return nil
}
