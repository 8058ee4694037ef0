package review

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/pkg/handlers"
	"github.com/wmsforge/stockroom/pkg/pagination"
	"github.com/wmsforge/stockroom/pkg/routes"
)

// Handler provides HTTP endpoints for the manual-review queue.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ClaimRequest names the reviewer taking an item.
type ClaimRequest struct {
	Reviewer string `json:"reviewer"`
}

// ResolveRequest carries the reviewer identity and decision.
type ResolveRequest struct {
	Reviewer string `json:"reviewer"`
	Decision
}

// ReleaseRequest sets the claim age cutoff in seconds.
type ReleaseRequest struct {
	OlderThanSeconds int `json:"older_than_seconds"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "review"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for review endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/review",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.ListPending},
			{Method: "POST", Pattern: "/{id}/claim", Handler: h.Claim},
			{Method: "POST", Pattern: "/{id}/resolve", Handler: h.Resolve},
			{Method: "POST", Pattern: "/release", Handler: h.Release},
		},
	}
}

// ListPending returns unclaimed review items, oldest first.
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)

	result, err := h.sys.ListPending(r.Context(), page)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Claim atomically assigns an item to a reviewer.
func (h *Handler) Claim(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reviewer == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidDecision)
		return
	}

	item, err := h.sys.Claim(r.Context(), id, req.Reviewer)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, item)
}

// Resolve applies a reviewer decision to a claimed item.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Reviewer == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidDecision)
		return
	}

	if err := h.sys.Resolve(r.Context(), id, req.Reviewer, req.Decision); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Release returns stale claims to the pending pool.
func (h *Handler) Release(w http.ResponseWriter, r *http.Request) {
	var req ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OlderThanSeconds <= 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidDecision)
		return
	}

	n, err := h.sys.Release(r.Context(), time.Duration(req.OlderThanSeconds)*time.Second)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, map[string]int{"released": n})
}
