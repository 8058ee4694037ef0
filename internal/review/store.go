package review

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/repository"
)

// ItemStore is the narrow persistence contract for queued review items.
type ItemStore interface {
	// Upsert inserts an item or, when an open item for the request already
	// exists, refreshes its reason and clears any claim.
	Upsert(ctx context.Context, id, requestID uuid.UUID, reason string) error

	CountPending(ctx context.Context) (int, error)
	ListPending(ctx context.Context, offset, limit int) ([]Item, error)

	// ClaimPending stamps the reviewer on the item only while it is
	// unclaimed. A single guarded update, so concurrent claims serialize
	// in the database and exactly one reviewer wins; reports sql.ErrNoRows
	// when no unclaimed item matched.
	ClaimPending(ctx context.Context, id uuid.UUID, reviewer string) (*Item, error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// ReleaseBefore clears claims stamped before the cutoff and reports
	// how many it released.
	ReleaseBefore(ctx context.Context, cutoff time.Time) (int, error)

	Find(ctx context.Context, id uuid.UUID) (*Item, error)
	Remove(ctx context.Context, id uuid.UUID) error
}

type sqlItems struct {
	db *sql.DB
}

// NewItemStore creates an ItemStore over the relational database.
func NewItemStore(db *sql.DB) ItemStore {
	return &sqlItems{db: db}
}

func (s *sqlItems) Upsert(ctx context.Context, id, requestID uuid.UUID, reason string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO review_items(id, request_id, reason)
		VALUES ($1, $2, $3)
		ON CONFLICT (request_id) DO UPDATE
		SET reason = EXCLUDED.reason, claimed_by = NULL, claimed_at = NULL`,
		id, requestID, reason)
	if err != nil {
		return fmt.Errorf("upsert review item: %w", err)
	}
	return nil
}

func (s *sqlItems) CountPending(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT count(*) FROM review_items WHERE claimed_by IS NULL",
	).Scan(&total); err != nil {
		return 0, fmt.Errorf("count review items: %w", err)
	}
	return total, nil
}

func (s *sqlItems) ListPending(ctx context.Context, offset, limit int) ([]Item, error) {
	items, err := repository.QueryMany(ctx, s.db, `
		SELECT id, request_id, reason, claimed_by, claimed_at, created_at
		FROM review_items
		WHERE claimed_by IS NULL
		ORDER BY created_at
		OFFSET $1 LIMIT $2`,
		[]any{offset, limit}, scanItem)
	if err != nil {
		return nil, fmt.Errorf("query review items: %w", err)
	}
	return items, nil
}

func (s *sqlItems) ClaimPending(ctx context.Context, id uuid.UUID, reviewer string) (*Item, error) {
	item, err := repository.QueryOne(ctx, s.db, `
		UPDATE review_items
		SET claimed_by = $2, claimed_at = now()
		WHERE id = $1 AND claimed_by IS NULL
		RETURNING id, request_id, reason, claimed_by, claimed_at, created_at`,
		[]any{id, reviewer}, scanItem)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *sqlItems) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM review_items WHERE id = $1)", id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("inspect review item: %w", err)
	}
	return exists, nil
}

func (s *sqlItems) ReleaseBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE review_items
		SET claimed_by = NULL, claimed_at = NULL
		WHERE claimed_at IS NOT NULL AND claimed_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("release claims: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *sqlItems) Find(ctx context.Context, id uuid.UUID) (*Item, error) {
	item, err := repository.QueryOne(ctx, s.db, `
		SELECT id, request_id, reason, claimed_by, claimed_at, created_at
		FROM review_items
		WHERE id = $1`,
		[]any{id}, scanItem)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *sqlItems) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM review_items WHERE id = $1", id); err != nil {
		return fmt.Errorf("remove review item: %w", err)
	}
	return nil
}

func scanItem(s repository.Scanner) (Item, error) {
	var i Item
	err := s.Scan(&i.ID, &i.RequestID, &i.Reason, &i.ClaimedBy, &i.ClaimedAt, &i.CreatedAt)
	return i, err
}
