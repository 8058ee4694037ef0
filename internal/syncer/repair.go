package syncer

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/repository"
)

// Side names the half of a record pair a repair task targets.
type Side string

const (
	SideStructured Side = "structured"
	SideSemantic   Side = "semantic"
)

// RepairTask is one queued orphan repair: re-run the failed delete for the
// named side of a link. Tasks are idempotent; running one twice is safe.
type RepairTask struct {
	ID        uuid.UUID `json:"id"`
	LinkID    uuid.UUID `json:"link_id"`
	Side      Side      `json:"side"`
	Key       string    `json:"key"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// RepairStore persists the orphan-repair queue.
type RepairStore interface {
	// Enqueue adds a task; re-enqueueing the same link and side is a no-op.
	Enqueue(ctx context.Context, task RepairTask) error
	Pending(ctx context.Context, limit int) ([]RepairTask, error)
	Complete(ctx context.Context, id uuid.UUID) error
	RecordAttempt(ctx context.Context, id uuid.UUID) error
	// HasForLink reports whether any repair for the link is still queued,
	// regardless of polling windows.
	HasForLink(ctx context.Context, linkID uuid.UUID) (bool, error)
}

type sqlRepairs struct {
	db *sql.DB
}

// NewRepairStore creates a RepairStore over the relational database.
func NewRepairStore(db *sql.DB) RepairStore {
	return &sqlRepairs{db: db}
}

func (s *sqlRepairs) Enqueue(ctx context.Context, task RepairTask) error {
	id := task.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO orphan_repairs(id, link_id, side, key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (link_id, side) DO NOTHING`,
		id, task.LinkID, task.Side, task.Key)
	if err != nil {
		return fmt.Errorf("enqueue repair: %w", err)
	}
	return nil
}

func (s *sqlRepairs) Pending(ctx context.Context, limit int) ([]RepairTask, error) {
	tasks, err := repository.QueryMany(ctx, s.db, `
		SELECT id, link_id, side, key, attempts, created_at
		FROM orphan_repairs
		ORDER BY created_at
		LIMIT $1`,
		[]any{limit}, scanRepairTask)
	if err != nil {
		return nil, fmt.Errorf("query repairs: %w", err)
	}
	return tasks, nil
}

func (s *sqlRepairs) Complete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM orphan_repairs WHERE id = $1", id)
	return err
}

func (s *sqlRepairs) HasForLink(ctx context.Context, linkID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM orphan_repairs WHERE link_id = $1)", linkID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("inspect repairs for link: %w", err)
	}
	return exists, nil
}

func (s *sqlRepairs) RecordAttempt(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE orphan_repairs SET attempts = attempts + 1 WHERE id = $1", id)
	return err
}

func scanRepairTask(sc repository.Scanner) (RepairTask, error) {
	var t RepairTask
	err := sc.Scan(&t.ID, &t.LinkID, &t.Side, &t.Key, &t.Attempts, &t.CreatedAt)
	return t, err
}
