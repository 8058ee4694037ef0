package records

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/pkg/handlers"
	"github.com/wmsforge/stockroom/pkg/pagination"
	"github.com/wmsforge/stockroom/pkg/routes"
)

// Handler provides the downstream read endpoints over stored records.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest is the semantic search body: a category code, free-text
// query, and result count.
type SearchRequest struct {
	Category string `json:"category"`
	Query    string `json:"query"`
	K        int    `json:"k"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "records"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for record endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/records",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{category}", Handler: h.GetByCategory},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
		},
	}
}

// GetByCategory pages a category's records. Query parameters other than the
// pagination set are treated as exact payload field filters.
func (h *Handler) GetByCategory(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	filters := make(map[string]string)
	for k, vs := range r.URL.Query() {
		switch k {
		case "page", "page_size", "search", "sort":
			continue
		}
		if len(vs) > 0 && vs[0] != "" {
			filters[k] = vs[0]
		}
	}

	result, err := h.sys.GetByCategory(r.Context(), r.PathValue("category"), filters, page)
	if err != nil {
		handlers.RespondError(w, h.logger, mapReadStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search runs a semantic similarity query over a category's collection.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	if req.Query == "" || req.Category == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest,
			errors.New("category and query are required"))
		return
	}
	if req.K <= 0 {
		req.K = 10
	}

	matches, err := h.sys.Search(r.Context(), req.Category, req.Query, req.K)
	if err != nil {
		handlers.RespondError(w, h.logger, mapReadStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, matches)
}

func mapReadStatus(err error) int {
	if errors.Is(err, catalog.ErrUnknownCategory) {
		return http.StatusNotFound
	}
	return MapHTTPStatus(err)
}
