// Package records implements the dual-store record layer: paired writes to
// the structured store and the semantic store, the mapping rows linking the
// two sides by a shared link id, and the read surface over stored records.
package records

import (
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/repository"
)

// MappingStatus tracks the coherence of a structured/semantic pair.
type MappingStatus string

const (
	// MappingActive means both sides are present and coherent.
	MappingActive MappingStatus = "active"
	// MappingStale means the structured side is authoritative and the
	// semantic side lags after a failed update.
	MappingStale MappingStatus = "stale"
	// MappingOrphaned means one side's delete failed and a repair task is
	// queued.
	MappingOrphaned MappingStatus = "orphaned"
)

// StorageMapping is the bidirectional link between one structured record and
// its semantic counterpart. StructuredKey is "<table>/<row id>"; SemanticKey
// is the collection name. LinkID is stored on both sides.
type StorageMapping struct {
	LinkID        uuid.UUID     `json:"link_id"`
	RequestID     uuid.UUID     `json:"request_id"`
	CategoryID    int           `json:"category_id"`
	StructuredKey string        `json:"structured_key"`
	SemanticKey   string        `json:"semantic_key"`
	Status        MappingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

func scanMapping(s repository.Scanner) (StorageMapping, error) {
	var m StorageMapping
	err := s.Scan(
		&m.LinkID,
		&m.RequestID,
		&m.CategoryID,
		&m.StructuredKey,
		&m.SemanticKey,
		&m.Status,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	return m, err
}
