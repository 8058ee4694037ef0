package pipeline

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wmsforge/stockroom/internal/classify"
	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/internal/segments"
	"github.com/wmsforge/stockroom/pkg/handlers"
	"github.com/wmsforge/stockroom/pkg/routes"
)

// Handler provides the segment ingestion endpoints.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// IngestRequest is the POST /segments body.
type IngestRequest struct {
	segments.Segment
}

// BatchRequest is the POST /segments/batch body.
type BatchRequest struct {
	Segments []segments.Segment `json:"segments"`
}

// BatchResponse wraps per-segment outcomes with summary counts.
type BatchResponse struct {
	Results   []BatchResult `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "pipeline"),
	}
}

// Routes returns the route group definition for ingestion endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/segments",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Ingest},
			{Method: "POST", Pattern: "/batch", Handler: h.IngestBatch},
		},
	}
}

// Ingest submits a single segment for categorization and storage.
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, requests.ErrInvalidRequest)
		return
	}

	result, err := h.sys.Ingest(r.Context(), req.Segment, nil)
	if err != nil {
		handlers.RespondError(w, h.logger, ingestStatus(err), err)
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	handlers.RespondJSON(w, status, result)
}

// IngestBatch submits several segments in one call. Individual failures
// are reported per segment, never as a batch-level error.
func (h *Handler) IngestBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, requests.ErrInvalidRequest)
		return
	}
	if len(req.Segments) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, requests.ErrInvalidRequest)
		return
	}

	results, err := h.sys.IngestBatch(r.Context(), req.Segments)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	resp := BatchResponse{Results: results}
	for _, br := range results {
		if br.Error == "" {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func ingestStatus(err error) int {
	switch {
	case errors.Is(err, requests.ErrInvalidRequest),
		errors.Is(err, classify.ErrInputEmpty):
		return http.StatusBadRequest
	case errors.Is(err, records.ErrStorageUnavailable),
		errors.Is(err, records.ErrTimeout):
		return http.StatusServiceUnavailable
	default:
		return records.MapHTTPStatus(err)
	}
}
