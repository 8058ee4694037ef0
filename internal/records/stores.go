package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/requests"
)

// StructuredStore is the narrow contract the orchestrator and sync manager
// need from the structured side: one jsonb payload row per record in the
// category's routed table.
type StructuredStore interface {
	Insert(ctx context.Context, table string, linkID, requestID uuid.UUID, payload map[string]any) (string, error)
	Update(ctx context.Context, table, key string, payload map[string]any) (map[string]any, error)
	Delete(ctx context.Context, table, key string) error
	Get(ctx context.Context, table, key string) (*Record, error)
}

// MappingStore persists and queries storage mappings.
type MappingStore interface {
	Insert(ctx context.Context, m StorageMapping) error
	Find(ctx context.Context, linkID uuid.UUID) (*StorageMapping, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]StorageMapping, error)
	UpdateStatus(ctx context.Context, linkID uuid.UUID, status MappingStatus) error
	Delete(ctx context.Context, linkID uuid.UUID) error
}

// Deduper resolves content hashes to existing active requests. Satisfied by
// the requests system.
type Deduper interface {
	FindActiveByHash(ctx context.Context, hash string) (*requests.Request, error)
}

// StructuredKey composes the table-qualified key stored on a mapping.
func StructuredKey(table, rowID string) string {
	return table + "/" + rowID
}

// SplitStructuredKey decomposes a mapping's structured key.
func SplitStructuredKey(key string) (table, rowID string, err error) {
	table, rowID, ok := strings.Cut(key, "/")
	if !ok || table == "" || rowID == "" {
		return "", "", fmt.Errorf("malformed structured key %q", key)
	}
	return table, rowID, nil
}
