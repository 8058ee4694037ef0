// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/config"
	"github.com/wmsforge/stockroom/internal/infrastructure"
	"github.com/wmsforge/stockroom/pkg/middleware"
	"github.com/wmsforge/stockroom/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain exposes the assembled systems for background workers
// the caller owns.
func NewModule(
	cfg *config.Config,
	infra *infrastructure.Infrastructure,
	cat *catalog.Catalog,
) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra, cat)

	domain, err := NewDomain(runtime)
	if err != nil {
		return nil, nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
