package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvEngineCatalogPath    = "STOCKROOM_ENGINE_CATALOG_PATH"
	EnvEngineThreshold      = "STOCKROOM_ENGINE_CONFIDENCE_THRESHOLD"
	EnvEnginePenalty        = "STOCKROOM_ENGINE_SOFT_PENALTY"
	EnvEngineSecondaryCap   = "STOCKROOM_ENGINE_SECONDARY_CAP"
	EnvEngineConcurrency    = "STOCKROOM_ENGINE_CONCURRENCY"
	EnvEngineStoreTimeout   = "STOCKROOM_ENGINE_STORE_TIMEOUT"
	EnvEngineRepairInterval = "STOCKROOM_ENGINE_REPAIR_INTERVAL"
	EnvEngineRepairBatch    = "STOCKROOM_ENGINE_REPAIR_BATCH"
)

// EngineConfig holds categorization engine parameters: the category catalog
// source, confidence tuning, the secondary assignment cap, and the store
// timeouts and repair cadence.
type EngineConfig struct {
	CatalogPath         string  `toml:"catalog_path"`
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	SoftPenalty         float64 `toml:"soft_penalty"`
	SecondaryCap        int     `toml:"secondary_cap"`
	Concurrency         int     `toml:"concurrency"`
	StoreTimeout        string  `toml:"store_timeout"`
	RepairInterval      string  `toml:"repair_interval"`
	RepairBatch         int     `toml:"repair_batch"`
}

// StoreTimeoutDuration returns StoreTimeout as a time.Duration.
func (c *EngineConfig) StoreTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StoreTimeout)
	return d
}

// RepairIntervalDuration returns RepairInterval as a time.Duration.
func (c *EngineConfig) RepairIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.RepairInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.CatalogPath != "" {
		c.CatalogPath = overlay.CatalogPath
	}
	if overlay.ConfidenceThreshold != 0 {
		c.ConfidenceThreshold = overlay.ConfidenceThreshold
	}
	if overlay.SoftPenalty != 0 {
		c.SoftPenalty = overlay.SoftPenalty
	}
	if overlay.SecondaryCap != 0 {
		c.SecondaryCap = overlay.SecondaryCap
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.StoreTimeout != "" {
		c.StoreTimeout = overlay.StoreTimeout
	}
	if overlay.RepairInterval != "" {
		c.RepairInterval = overlay.RepairInterval
	}
	if overlay.RepairBatch != 0 {
		c.RepairBatch = overlay.RepairBatch
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.ConfidenceThreshold == 0 {
		c.ConfidenceThreshold = 0.70
	}
	if c.SoftPenalty == 0 {
		c.SoftPenalty = 0.10
	}
	if c.SecondaryCap == 0 {
		c.SecondaryCap = 4
	}
	if c.Concurrency == 0 {
		c.Concurrency = 8
	}
	if c.StoreTimeout == "" {
		c.StoreTimeout = "30s"
	}
	if c.RepairInterval == "" {
		c.RepairInterval = "30s"
	}
	if c.RepairBatch == 0 {
		c.RepairBatch = 50
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineCatalogPath); v != "" {
		c.CatalogPath = v
	}
	if v := os.Getenv(EnvEngineThreshold); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ConfidenceThreshold = f
		}
	}
	if v := os.Getenv(EnvEnginePenalty); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SoftPenalty = f
		}
	}
	if v := os.Getenv(EnvEngineSecondaryCap); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SecondaryCap = n
		}
	}
	if v := os.Getenv(EnvEngineConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Concurrency = n
		}
	}
	if v := os.Getenv(EnvEngineStoreTimeout); v != "" {
		c.StoreTimeout = v
	}
	if v := os.Getenv(EnvEngineRepairInterval); v != "" {
		c.RepairInterval = v
	}
	if v := os.Getenv(EnvEngineRepairBatch); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RepairBatch = n
		}
	}
}

func (c *EngineConfig) validate() error {
	if c.ConfidenceThreshold <= 0 || c.ConfidenceThreshold > 1 {
		return fmt.Errorf("confidence_threshold must be in (0, 1]: %g", c.ConfidenceThreshold)
	}
	if c.SoftPenalty < 0 || c.SoftPenalty >= 1 {
		return fmt.Errorf("soft_penalty must be in [0, 1): %g", c.SoftPenalty)
	}
	if c.SecondaryCap < 1 {
		return fmt.Errorf("secondary_cap must be positive: %d", c.SecondaryCap)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be positive: %d", c.Concurrency)
	}
	if _, err := time.ParseDuration(c.StoreTimeout); err != nil {
		return fmt.Errorf("invalid store_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RepairInterval); err != nil {
		return fmt.Errorf("invalid repair_interval: %w", err)
	}
	if c.RepairBatch < 1 {
		return fmt.Errorf("repair_batch must be positive: %d", c.RepairBatch)
	}
	return nil
}
