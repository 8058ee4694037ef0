package requests

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/pagination"
	"github.com/wmsforge/stockroom/pkg/query"
	"github.com/wmsforge/stockroom/pkg/repository"
	"github.com/wmsforge/stockroom/pkg/storage"
)

type repo struct {
	db         *sql.DB
	archive    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a request repository implementing the System interface.
func New(
	db *sql.DB,
	archive storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		db:         db,
		archive:    archive,
		logger:     logger.With("system", "requests"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Request], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "ContentHash", "RawContent")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count requests: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	reqs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRequest)
	if err != nil {
		return nil, fmt.Errorf("query requests: %w", err)
	}

	result := pagination.NewPageResult(reqs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Detail, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	req, err := repository.QueryOne(ctx, r.db, q, args, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	assignments, err := repository.QueryMany(ctx, r.db, `
		SELECT id, request_id, category_id, sub_category, kind, confidence, method, validation_status, created_at
		FROM assignments
		WHERE request_id = $1
		ORDER BY kind, confidence DESC`,
		[]any{id}, scanAssignment)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}

	results, err := repository.QueryMany(ctx, r.db, `
		SELECT request_id, rule_id, passed, message
		FROM validation_results
		WHERE request_id = $1
		ORDER BY rule_id`,
		[]any{id}, scanValidationResult)
	if err != nil {
		return nil, fmt.Errorf("query validation results: %w", err)
	}

	return &Detail{Request: req, Assignments: assignments, Results: results}, nil
}

func (r *repo) FindActiveByHash(ctx context.Context, hash string) (*Request, error) {
	req, err := repository.QueryOne(ctx, r.db, `
		SELECT r.id, r.content_hash, r.segment_type, r.structured_data, r.raw_content,
		       r.archive_key, r.status, r.attempt, r.reason, r.warnings, r.submitted_at, r.updated_at
		FROM requests r
		WHERE r.content_hash = $1 AND r.status <> $2
		ORDER BY r.submitted_at DESC
		LIMIT 1`,
		[]any{hash, StatusFailed}, scanRequest)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &req, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Request, error) {
	hash, err := cmd.Segment.ContentHash()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	id := uuid.New()
	key := archiveKey(id)

	raw := cmd.Raw
	if len(raw) == 0 {
		if raw, err = json.Marshal(cmd.Segment); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	}

	if err := r.archive.Upload(ctx, key, bytes.NewReader(raw), "application/json"); err != nil {
		return nil, fmt.Errorf("archive segment: %w", err)
	}

	dataJSON, err := json.Marshal(cmd.Segment.StructuredData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	q := `
		INSERT INTO requests(id, content_hash, segment_type, structured_data, raw_content, archive_key, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, content_hash, segment_type, structured_data, raw_content, archive_key, status, attempt, reason, warnings, submitted_at, updated_at`

	insertArgs := []any{
		id,
		hash,
		cmd.Segment.Type,
		dataJSON,
		cmd.Segment.RawContent,
		key,
		StatusPending,
	}

	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanRequest)
	})

	if err != nil {
		if delErr := r.archive.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating archive delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("request created", "id", req.ID, "hash", req.ContentHash)
	return &req, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	detail, err := r.Find(ctx, id)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"DELETE FROM requests WHERE id = $1",
			id,
		); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.archive.Delete(ctx, detail.ArchiveKey); delErr != nil {
		r.logger.Warn(
			"archive delete failed after DB delete",
			"key", detail.ArchiveKey,
			"error", delErr,
		)
	}

	r.logger.Info("request deleted", "id", id)
	return nil
}

func (r *repo) Transition(ctx context.Context, id uuid.UUID, to Status, reason string) (*Request, error) {
	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		return r.transitionTx(ctx, tx, id, to, reason, false)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("request transitioned", "id", id, "status", req.Status)
	return &req, nil
}

func (r *repo) Resubmit(ctx context.Context, id uuid.UUID) (*Request, error) {
	req, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		var current Status
		if err := tx.QueryRowContext(ctx,
			"SELECT status FROM requests WHERE id = $1 FOR UPDATE", id,
		).Scan(&current); err != nil {
			return Request{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		if current != StatusFailed {
			return Request{}, fmt.Errorf("%w: status %s", ErrNotResubmittable, current)
		}
		return r.transitionTx(ctx, tx, id, StatusProcessing, "", true)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("request resubmitted", "id", id, "attempt", req.Attempt)
	return &req, nil
}

func (r *repo) Cancel(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Request, error) {
		var current Status
		if err := tx.QueryRowContext(ctx,
			"SELECT status FROM requests WHERE id = $1 FOR UPDATE", id,
		).Scan(&current); err != nil {
			return Request{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
		}
		if current != StatusPending && current != StatusProcessing {
			return Request{}, fmt.Errorf("%w: status %s", ErrNotCancellable, current)
		}
		return r.transitionTx(ctx, tx, id, StatusFailed, "cancelled by operator", false)
	})
	if err != nil {
		return err
	}

	r.logger.Info("request cancelled", "id", id)
	return nil
}

// transitionTx applies a guarded status update inside an open transaction.
// bumpAttempt is set only on resubmission.
func (r *repo) transitionTx(
	ctx context.Context,
	tx *sql.Tx,
	id uuid.UUID,
	to Status,
	reason string,
	bumpAttempt bool,
) (Request, error) {
	var current Status
	if err := tx.QueryRowContext(ctx,
		"SELECT status FROM requests WHERE id = $1 FOR UPDATE", id,
	).Scan(&current); err != nil {
		return Request{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if current != to && !current.CanTransition(to) {
		return Request{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current, to)
	}

	attemptExpr := "attempt"
	if bumpAttempt {
		attemptExpr = "attempt + 1"
	}

	var reasonArg *string
	if reason != "" {
		reasonArg = &reason
	}

	q := fmt.Sprintf(`
		UPDATE requests
		SET status = $2, reason = $3, attempt = %s, updated_at = now()
		WHERE id = $1
		RETURNING id, content_hash, segment_type, structured_data, raw_content, archive_key, status, attempt, reason, warnings, submitted_at, updated_at`,
		attemptExpr)

	return repository.QueryOne(ctx, tx, q, []any{id, to, reasonArg}, scanRequest)
}

func (r *repo) ReplaceAssignments(
	ctx context.Context,
	requestID uuid.UUID,
	assignments []Assignment,
	results []ValidationResult,
) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM assignments WHERE request_id = $1", requestID,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM validation_results WHERE request_id = $1", requestID,
		); err != nil {
			return struct{}{}, fmt.Errorf("clear validation results: %w", err)
		}

		for _, a := range assignments {
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO assignments(id, request_id, category_id, sub_category, kind, confidence, method, validation_status)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				a.ID, requestID, a.CategoryID, a.SubCategory, a.Kind, a.Confidence, a.Method, a.ValidationStatus,
			); err != nil {
				return struct{}{}, fmt.Errorf("insert assignment: %w", err)
			}
		}

		for _, v := range results {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO validation_results(request_id, rule_id, passed, message)
				VALUES ($1, $2, $3, $4)`,
				requestID, v.RuleID, v.Passed, nullable(v.Message),
			); err != nil {
				return struct{}{}, fmt.Errorf("insert validation result: %w", err)
			}
		}

		return struct{}{}, nil
	})

	return err
}

func (r *repo) AppendWarnings(ctx context.Context, id uuid.UUID, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}

	warnsJSON, err := json.Marshal(warnings)
	if err != nil {
		return fmt.Errorf("encode warnings: %w", err)
	}

	err = repository.ExecExpectOne(ctx, r.db, `
		UPDATE requests
		SET warnings = coalesce(warnings, '[]'::jsonb) || $2::jsonb, updated_at = now()
		WHERE id = $1`,
		id, warnsJSON)

	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func archiveKey(id uuid.UUID) string {
	return fmt.Sprintf("segments/%s", id)
}
