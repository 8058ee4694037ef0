package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/wmsforge/stockroom/internal/pipeline"
	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/pkg/routes"
)

// requestGateway routes destructive request operations through the
// pipeline, so deletes clean up both record stores and resubmits re-run
// processing instead of only flipping status.
type requestGateway struct {
	requests.System
	pipeline pipeline.System
}

func (g *requestGateway) Delete(ctx context.Context, id uuid.UUID) error {
	return g.pipeline.Delete(ctx, id)
}

func (g *requestGateway) Resubmit(ctx context.Context, id uuid.UUID) (*requests.Request, error) {
	req, err := g.System.Resubmit(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := g.pipeline.Resume(ctx, id, ""); err != nil {
		return req, err
	}
	detail, err := g.System.Find(ctx, id)
	if err != nil {
		return req, nil
	}
	return &detail.Request, nil
}

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	gateway := &requestGateway{System: domain.Requests, pipeline: domain.Pipeline}

	routes.Register(
		mux,
		domain.Pipeline.Handler().Routes(),
		requests.NewHandler(gateway, runtime.Logger, runtime.Pagination).Routes(),
		domain.Records.Handler().Routes(),
		domain.Review.Handler().Routes(),
		newArchiveHandler(runtime.Storage, runtime.Logger).routes(),
	)
}
