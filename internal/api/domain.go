package api

import (
	"fmt"

	"github.com/wmsforge/stockroom/internal/classify"
	"github.com/wmsforge/stockroom/internal/pipeline"
	"github.com/wmsforge/stockroom/internal/records"
	"github.com/wmsforge/stockroom/internal/requests"
	"github.com/wmsforge/stockroom/internal/resolve"
	"github.com/wmsforge/stockroom/internal/review"
	"github.com/wmsforge/stockroom/internal/syncer"
	"github.com/wmsforge/stockroom/internal/validate"
	"github.com/wmsforge/stockroom/pkg/retry"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Requests requests.System
	Records  records.System
	Review   review.System
	Pipeline pipeline.System
	Syncer   *syncer.Syncer
	Worker   *syncer.Worker
}

// NewDomain creates all domain systems from the API runtime. The review
// system and the pipeline reference each other, so the pipeline is bound to
// review after both exist.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	requestSystem := requests.New(db, runtime.Storage, runtime.Logger, runtime.Pagination)

	mappings := records.NewMappingStore(db)
	structured := records.NewStructuredStore(db)
	repairs := syncer.NewRepairStore(db)

	validator, err := validate.New(
		runtime.Catalog,
		runtime.Engine.SoftPenalty,
		runtime.Engine.ConfidenceThreshold,
	)
	if err != nil {
		return nil, fmt.Errorf("validator init failed: %w", err)
	}

	classifier := classify.New(runtime.Catalog)
	resolver := resolve.New(runtime.Catalog, validator, runtime.Engine.SecondaryCap)

	orchestrator := records.NewOrchestrator(
		mappings,
		structured,
		runtime.Semantic,
		requestSystem,
		runtime.Logger,
		runtime.Engine.StoreTimeoutDuration(),
	)

	sync := syncer.New(
		mappings,
		structured,
		runtime.Semantic,
		repairs,
		runtime.Logger,
		retry.DefaultConfig(),
		runtime.Engine.StoreTimeoutDuration(),
	)
	worker := syncer.NewWorker(
		sync,
		runtime.Logger,
		runtime.Engine.RepairIntervalDuration(),
		runtime.Engine.RepairBatch,
	)

	reviewSystem := review.New(review.NewItemStore(db), requestSystem, runtime.Logger, runtime.Pagination)

	pipelineSystem := pipeline.New(
		runtime.Catalog,
		classifier,
		validator,
		resolver,
		orchestrator,
		sync,
		requestSystem,
		mappings,
		reviewSystem,
		runtime.Logger,
		runtime.Engine.Concurrency,
	)
	reviewSystem.SetProcessor(pipelineSystem)

	recordsSystem := records.NewReader(
		db,
		runtime.Catalog,
		runtime.Semantic,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Requests: requestSystem,
		Records:  recordsSystem,
		Review:   reviewSystem,
		Pipeline: pipelineSystem,
		Syncer:   sync,
		Worker:   worker,
	}, nil
}
