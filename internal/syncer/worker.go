package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/pkg/semantic"
)

// Worker drains the orphan-repair queue in the background.
type Worker struct {
	syncer   *Syncer
	logger   *slog.Logger
	interval time.Duration
	batch    int
}

// NewWorker creates a repair worker polling at the given interval. Zero
// values select 30s and a batch of 50.
func NewWorker(s *Syncer, logger *slog.Logger, interval time.Duration, batch int) *Worker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batch <= 0 {
		batch = 50
	}
	return &Worker{
		syncer:   s,
		logger:   logger.With("system", "repair-worker"),
		interval: interval,
		batch:    batch,
	}
}

// Run polls the queue until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("repair worker started", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("repair worker stopped")
			return
		case <-ticker.C:
			w.Drain(ctx)
		}
	}
}

// Drain runs one pass over pending repairs. Each repair re-attempts the
// failed side's delete; a missing target counts as success, which keeps
// repeated runs idempotent. Once a link has no failed side left its mapping
// row is removed.
func (w *Worker) Drain(ctx context.Context) {
	tasks, err := w.syncer.repairs.Pending(ctx, w.batch)
	if err != nil {
		w.logger.Error("repair poll failed", "error", err)
		return
	}

	for _, task := range tasks {
		if ctx.Err() != nil {
			return
		}
		if err := w.repair(ctx, task); err != nil {
			w.logger.Warn("repair attempt failed",
				"link", task.LinkID, "side", task.Side, "attempts", task.Attempts+1, "error", err)
			if err := w.syncer.repairs.RecordAttempt(ctx, task.ID); err != nil {
				w.logger.Error("repair bookkeeping failed", "task", task.ID, "error", err)
			}
			continue
		}

		if err := w.syncer.repairs.Complete(ctx, task.ID); err != nil {
			w.logger.Error("repair completion failed", "task", task.ID, "error", err)
			continue
		}
		w.finishLink(ctx, task)
		w.logger.Info("orphan repaired", "link", task.LinkID, "side", task.Side)
	}
}

func (w *Worker) repair(ctx context.Context, task RepairTask) error {
	opCtx, cancel := context.WithTimeout(ctx, w.syncer.timeout)
	defer cancel()

	switch task.Side {
	case SideStructured:
		table, rowID, err := records.SplitStructuredKey(task.Key)
		if err != nil {
			return err
		}
		if err := w.syncer.structured.Delete(opCtx, table, rowID); err != nil &&
			!errors.Is(err, records.ErrNotFound) {
			return err
		}
	case SideSemantic:
		if err := w.syncer.semantic.Delete(opCtx, task.Key, task.LinkID); err != nil &&
			!errors.Is(err, semantic.ErrNotFound) {
			return err
		}
	}

	return nil
}

// finishLink drops the mapping row once no repair for the link remains.
// The check goes straight to the queue rather than the current batch, so a
// sibling repair beyond the polling window still holds the mapping open.
func (w *Worker) finishLink(ctx context.Context, task RepairTask) {
	queued, err := w.syncer.repairs.HasForLink(ctx, task.LinkID)
	if err != nil || queued {
		return
	}
	if err := w.syncer.mappings.Delete(ctx, task.LinkID); err != nil &&
		!errors.Is(err, records.ErrNotFound) {
		w.logger.Error("mapping cleanup failed", "link", task.LinkID, "error", err)
	}
}
