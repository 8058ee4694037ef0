// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, archive storage, semantic
// storage) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/wmsforge/stockroom/internal/config"
	"github.com/wmsforge/stockroom/pkg/database"
	"github.com/wmsforge/stockroom/pkg/lifecycle"
	"github.com/wmsforge/stockroom/pkg/semantic"
	"github.com/wmsforge/stockroom/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, the raw segment archive, and the semantic store.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Semantic  semantic.Store
}

// New creates an Infrastructure from the application configuration. The
// collections list declares the semantic collections to create on startup,
// one per routable category. It initializes all systems but does not start
// them; call Start separately.
func New(cfg *config.Config, collections []string) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	embedder, err := semantic.NewEmbedder(&cfg.Semantic)
	if err != nil {
		return nil, fmt.Errorf("embedder init failed: %w", err)
	}
	sem, err := semantic.New(&cfg.Semantic, embedder, collections, logger)
	if err != nil {
		return nil, fmt.Errorf("semantic init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Semantic:  sem,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Semantic.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("semantic start failed: %w", err)
	}
	return nil
}
