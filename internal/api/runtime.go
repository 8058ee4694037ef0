package api

import (
	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/config"
	"github.com/wmsforge/stockroom/internal/infrastructure"
	"github.com/wmsforge/stockroom/pkg/pagination"
)

// Runtime extends Infrastructure with API-scoped configuration and the
// loaded category catalog.
type Runtime struct {
	*infrastructure.Infrastructure
	Catalog    *catalog.Catalog
	Engine     config.EngineConfig
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure, cat *catalog.Catalog) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Semantic:  infra.Semantic,
		},
		Catalog:    cat,
		Engine:     cfg.Engine,
		Pagination: cfg.API.Pagination,
	}
}
