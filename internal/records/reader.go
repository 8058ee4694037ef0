package records

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/pkg/pagination"
	"github.com/wmsforge/stockroom/pkg/repository"
	"github.com/wmsforge/stockroom/pkg/semantic"
)

// System defines the read surface over stored records for downstream
// consumers.
type System interface {
	Handler() *Handler

	// GetByCategory pages through the category's structured records,
	// optionally filtered by exact payload field matches.
	GetByCategory(
		ctx context.Context,
		code string,
		filters map[string]string,
		page pagination.PageRequest,
	) (*pagination.PageResult[Record], error)

	// Search runs a semantic kNN query over the category's collection.
	Search(ctx context.Context, code, query string, k int) ([]semantic.Match, error)
}

type reader struct {
	db         *sql.DB
	catalog    *catalog.Catalog
	semantic   semantic.Store
	logger     *slog.Logger
	pagination pagination.Config
}

// NewReader creates the record read system.
func NewReader(
	db *sql.DB,
	cat *catalog.Catalog,
	sem semantic.Store,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &reader{
		db:         db,
		catalog:    cat,
		semantic:   sem,
		logger:     logger.With("system", "records"),
		pagination: pagination,
	}
}

func (r *reader) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *reader) GetByCategory(
	ctx context.Context,
	code string,
	filters map[string]string,
	page pagination.PageRequest,
) (*pagination.PageResult[Record], error) {
	cat, err := r.catalog.CategoryByCode(code)
	if err != nil {
		return nil, err
	}
	if err := checkTable(cat.Table); err != nil {
		return nil, err
	}

	page.Normalize(r.pagination)

	// Filter keys are constrained to the category schema, so arbitrary
	// query parameters cannot reach the jsonb path expression.
	where := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if !cat.OwnsField(k) {
			continue
		}
		args = append(args, filters[k])
		where = append(where, fmt.Sprintf("payload->>'%s' = $%d", k, len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countSQL := fmt.Sprintf("SELECT count(*) FROM %s%s", cat.Table, clause)
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}

	pageSQL := fmt.Sprintf(`
		SELECT id, link_id, request_id, payload, created_at, updated_at
		FROM %s%s
		ORDER BY created_at DESC
		OFFSET $%d LIMIT $%d`,
		cat.Table, clause, len(args)+1, len(args)+2)
	pageArgs := append(args, page.Offset(), page.PageSize)

	recs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	result := pagination.NewPageResult(recs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *reader) Search(ctx context.Context, code, query string, k int) ([]semantic.Match, error) {
	cat, err := r.catalog.CategoryByCode(code)
	if err != nil {
		return nil, err
	}
	if cat.Collection == "" {
		return nil, fmt.Errorf("%w: category %s", ErrUnroutableCategory, code)
	}

	return r.semantic.Search(ctx, cat.Collection, query, k)
}
