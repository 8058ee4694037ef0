package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/repository"
)

// Record is one stored structured record.
type Record struct {
	ID        uuid.UUID      `json:"id"`
	LinkID    uuid.UUID      `json:"link_id"`
	RequestID uuid.UUID      `json:"request_id"`
	Payload   map[string]any `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Routed tables are catalog-declared, never caller input, but the name still
// gates what reaches the SQL text.
var tablePattern = regexp.MustCompile(`^rec_[a-z][a-z0-9_]*$`)

type sqlStructured struct {
	db *sql.DB
}

// NewStructuredStore creates a StructuredStore over the relational database.
func NewStructuredStore(db *sql.DB) StructuredStore {
	return &sqlStructured{db: db}
}

func (s *sqlStructured) Insert(
	ctx context.Context,
	table string,
	linkID, requestID uuid.UUID,
	payload map[string]any,
) (string, error) {
	if err := checkTable(table); err != nil {
		return "", err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	id := uuid.New()
	q := fmt.Sprintf(`
		INSERT INTO %s(id, link_id, request_id, payload)
		VALUES ($1, $2, $3, $4)`, table)

	if _, err := s.db.ExecContext(ctx, q, id, linkID, requestID, data); err != nil {
		return "", classifyBackendErr(ctx, err)
	}

	return id.String(), nil
}

func (s *sqlStructured) Update(
	ctx context.Context,
	table, key string,
	payload map[string]any,
) (map[string]any, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	rec, err := s.Get(ctx, table, key)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(rec.Payload)+len(payload))
	for k, v := range rec.Payload {
		merged[k] = v
	}
	for k, v := range payload {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	q := fmt.Sprintf(`
		UPDATE %s SET payload = $2, updated_at = now()
		WHERE id = $1`, table)

	if err := repository.ExecExpectOne(ctx, s.db, q, rec.ID, data); err != nil {
		return nil, repository.MapError(classifyBackendErr(ctx, err), ErrNotFound, ErrNotFound)
	}

	return merged, nil
}

func (s *sqlStructured) Delete(ctx context.Context, table, key string) error {
	if err := checkTable(table); err != nil {
		return err
	}

	id, err := uuid.Parse(key)
	if err != nil {
		return fmt.Errorf("malformed record key %q", key)
	}

	q := fmt.Sprintf("DELETE FROM %s WHERE id = $1", table)
	if err := repository.ExecExpectOne(ctx, s.db, q, id); err != nil {
		return repository.MapError(classifyBackendErr(ctx, err), ErrNotFound, ErrNotFound)
	}
	return nil
}

func (s *sqlStructured) Get(ctx context.Context, table, key string) (*Record, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(key)
	if err != nil {
		return nil, fmt.Errorf("malformed record key %q", key)
	}

	q := fmt.Sprintf(`
		SELECT id, link_id, request_id, payload, created_at, updated_at
		FROM %s WHERE id = $1`, table)

	rec, err := repository.QueryOne(ctx, s.db, q, []any{id}, scanRecord)
	if err != nil {
		return nil, repository.MapError(classifyBackendErr(ctx, err), ErrNotFound, ErrNotFound)
	}
	return &rec, nil
}

func scanRecord(s repository.Scanner) (Record, error) {
	var (
		r    Record
		data []byte
	)
	if err := s.Scan(&r.ID, &r.LinkID, &r.RequestID, &data, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return r, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &r.Payload); err != nil {
			return r, err
		}
	}
	return r, nil
}

func checkTable(table string) error {
	if !tablePattern.MatchString(table) {
		return fmt.Errorf("%w: table %q", ErrUnroutableCategory, table)
	}
	return nil
}

// classifyBackendErr folds context expiry into the timeout sentinel so
// callers can leave the owning request pending for retry.
func classifyBackendErr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
