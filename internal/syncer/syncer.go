// Package syncer keeps structured/semantic record pairs coherent after the
// initial write: updates regenerate the semantic side from the structured
// side, deletes remove both sides, and failures degrade to stale marks or
// queued orphan repairs instead of blocking callers.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/pkg/retry"
	"github.com/wmsforge/stockroom/pkg/semantic"
)

// DefaultTimeout bounds every individual store call.
const DefaultTimeout = 30 * time.Second

// Syncer is the consistency manager over stored record pairs.
type Syncer struct {
	mappings   records.MappingStore
	structured records.StructuredStore
	semantic   semantic.Store
	repairs    RepairStore
	logger     *slog.Logger
	retry      retry.Config
	timeout    time.Duration
}

// New creates a Syncer. A zero timeout selects DefaultTimeout; the retry
// config governs semantic update attempts.
func New(
	mappings records.MappingStore,
	structured records.StructuredStore,
	sem semantic.Store,
	repairs RepairStore,
	logger *slog.Logger,
	retryCfg retry.Config,
	timeout time.Duration,
) *Syncer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Syncer{
		mappings:   mappings,
		structured: structured,
		semantic:   sem,
		repairs:    repairs,
		logger:     logger.With("system", "syncer"),
		retry:      retryCfg,
		timeout:    timeout,
	}
}

// Update applies changed fields to every record pair of the request. The
// structured side is written first and is authoritative. The semantic side
// is regenerated from the merged record and replaced with bounded retries;
// when retries are exhausted the mapping is marked stale rather than
// failing the update. A nil field value removes the field.
func (s *Syncer) Update(
	ctx context.Context,
	requestID uuid.UUID,
	changed map[string]any,
) ([]records.StorageMapping, error) {
	mappings, err := s.mappings.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if len(mappings) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, requestID)
	}

	out := make([]records.StorageMapping, 0, len(mappings))
	for _, m := range mappings {
		updated, err := s.updatePair(ctx, m, changed)
		if err != nil {
			return nil, err
		}
		out = append(out, *updated)
	}

	return out, nil
}

func (s *Syncer) updatePair(
	ctx context.Context,
	m records.StorageMapping,
	changed map[string]any,
) (*records.StorageMapping, error) {
	table, rowID, err := records.SplitStructuredKey(m.StructuredKey)
	if err != nil {
		return nil, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	merged, err := s.structured.Update(opCtx, table, rowID, changed)
	cancel()
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return nil, fmt.Errorf("%w: link %s", ErrOrphanLink, m.LinkID)
		}
		return nil, fmt.Errorf("structured update: %w", err)
	}

	doc := semantic.Document{
		LinkID:    m.LinkID,
		RequestID: m.RequestID,
		Content:   records.RenderText(merged, ""),
	}

	err = retry.Do(ctx, s.retry, func() error {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.semantic.Replace(opCtx, m.SemanticKey, doc)
	})

	status := records.MappingActive
	if err != nil {
		// Structured side stays authoritative; readers see the flag.
		s.logger.Warn("semantic update failed, marking link stale",
			"link", m.LinkID, "error", err)
		status = records.MappingStale
	}

	if m.Status != status {
		if err := s.mappings.UpdateStatus(ctx, m.LinkID, status); err != nil {
			return nil, err
		}
		m.Status = status
	}

	return &m, nil
}

// Delete removes both sides of every record pair of the request. A failed
// side enqueues an idempotent orphan-repair task and marks the mapping
// orphaned instead of failing the call; fully removed pairs drop their
// mapping row.
func (s *Syncer) Delete(ctx context.Context, requestID uuid.UUID) error {
	mappings, err := s.mappings.ListByRequest(ctx, requestID)
	if err != nil {
		return err
	}

	for _, m := range mappings {
		s.deletePair(ctx, m)
	}

	return nil
}

func (s *Syncer) deletePair(ctx context.Context, m records.StorageMapping) {
	orphaned := false

	table, rowID, err := records.SplitStructuredKey(m.StructuredKey)
	if err == nil {
		opCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err = s.structured.Delete(opCtx, table, rowID)
		cancel()
	}
	if err != nil && !errors.Is(err, records.ErrNotFound) {
		s.logger.Warn("structured delete failed, queueing repair",
			"link", m.LinkID, "error", err)
		s.enqueueRepair(ctx, m, SideStructured)
		orphaned = true
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err = s.semantic.Delete(opCtx, m.SemanticKey, m.LinkID)
	cancel()
	if err != nil && !errors.Is(err, semantic.ErrNotFound) {
		s.logger.Warn("semantic delete failed, queueing repair",
			"link", m.LinkID, "error", err)
		s.enqueueRepair(ctx, m, SideSemantic)
		orphaned = true
	}

	if orphaned {
		if err := s.mappings.UpdateStatus(ctx, m.LinkID, records.MappingOrphaned); err != nil {
			s.logger.Error("orphan mark failed", "link", m.LinkID, "error", err)
		}
		return
	}

	if err := s.mappings.Delete(ctx, m.LinkID); err != nil && !errors.Is(err, records.ErrNotFound) {
		s.logger.Error("mapping delete failed", "link", m.LinkID, "error", err)
	}
}

func (s *Syncer) enqueueRepair(ctx context.Context, m records.StorageMapping, side Side) {
	task := RepairTask{
		LinkID: m.LinkID,
		Side:   side,
		Key:    m.StructuredKey,
	}
	if side == SideSemantic {
		task.Key = m.SemanticKey
	}
	if err := s.repairs.Enqueue(ctx, task); err != nil {
		s.logger.Error("repair enqueue failed", "link", m.LinkID, "side", side, "error", err)
	}
}
