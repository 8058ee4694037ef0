package records

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/repository"
)

type sqlMappings struct {
	db *sql.DB
}

// NewMappingStore creates a MappingStore over the relational database.
func NewMappingStore(db *sql.DB) MappingStore {
	return &sqlMappings{db: db}
}

func (s *sqlMappings) Insert(ctx context.Context, m StorageMapping) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO storage_mappings(link_id, request_id, category_id, structured_key, semantic_key, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.LinkID, m.RequestID, m.CategoryID, m.StructuredKey, m.SemanticKey, m.Status)
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	return nil
}

func (s *sqlMappings) Find(ctx context.Context, linkID uuid.UUID) (*StorageMapping, error) {
	m, err := repository.QueryOne(ctx, s.db, `
		SELECT link_id, request_id, category_id, structured_key, semantic_key, status, created_at, updated_at
		FROM storage_mappings
		WHERE link_id = $1`,
		[]any{linkID}, scanMapping)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrNotFound)
	}
	return &m, nil
}

func (s *sqlMappings) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]StorageMapping, error) {
	mappings, err := repository.QueryMany(ctx, s.db, `
		SELECT link_id, request_id, category_id, structured_key, semantic_key, status, created_at, updated_at
		FROM storage_mappings
		WHERE request_id = $1
		ORDER BY created_at`,
		[]any{requestID}, scanMapping)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	return mappings, nil
}

func (s *sqlMappings) UpdateStatus(ctx context.Context, linkID uuid.UUID, status MappingStatus) error {
	err := repository.ExecExpectOne(ctx, s.db, `
		UPDATE storage_mappings SET status = $2, updated_at = now()
		WHERE link_id = $1`,
		linkID, status)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}

func (s *sqlMappings) Delete(ctx context.Context, linkID uuid.UUID) error {
	err := repository.ExecExpectOne(ctx, s.db,
		"DELETE FROM storage_mappings WHERE link_id = $1", linkID)
	return repository.MapError(err, ErrNotFound, ErrNotFound)
}
