package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wmsforge/stockroom/internal/catalog"
	"github.com/wmsforge/stockroom/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed: ", err)
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		log.Fatal("catalog load failed: ", err)
	}

	server, err := NewServer(cfg, cat)
	if err != nil {
		log.Fatal("server init failed: ", err)
	}

	if err := server.Start(); err != nil {
		log.Fatal("server start failed: ", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	if err := server.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		log.Fatal("shutdown failed: ", err)
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Engine.CatalogPath != "" {
		return catalog.Load(cfg.Engine.CatalogPath)
	}
	return catalog.Default()
}
