package semantic_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/wmsforge/stockroom/pkg/semantic"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := semantic.NewHashEmbedder(64)

	a, err := e.Embed(context.Background(), "move pallet PLT-1042 to staging")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	b, err := e.Embed(context.Background(), "move pallet PLT-1042 to staging")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vectors differ at %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestHashEmbedderDimensions(t *testing.T) {
	e := semantic.NewHashEmbedder(128)
	if e.Dimensions() != 128 {
		t.Errorf("Dimensions() = %d, want 128", e.Dimensions())
	}

	vec, err := e.Embed(context.Background(), "cycle count aisle 14")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(vec) != 128 {
		t.Errorf("vector length = %d, want 128", len(vec))
	}
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := semantic.NewHashEmbedder(64)
	vec, err := e.Embed(context.Background(), "received 16 cases against PO-9981")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("squared norm = %f, want 1", norm)
	}
}

func TestHashEmbedderEmptyInputZeroVector(t *testing.T) {
	e := semantic.NewHashEmbedder(32)
	vec, err := e.Embed(context.Background(), "")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	for i, v := range vec {
		if v != 0 {
			t.Fatalf("vec[%d] = %f, want 0", i, v)
		}
	}
}

func TestHashEmbedderCaseInsensitive(t *testing.T) {
	e := semantic.NewHashEmbedder(64)

	a, _ := e.Embed(context.Background(), "Forklift Charging Station")
	b, _ := e.Embed(context.Background(), "forklift charging station")

	for i := range a {
		if a[i] != b[i] {
			t.Fatal("tokenization should be case-insensitive")
		}
	}
}

func TestNewEmbedderSelectsProvider(t *testing.T) {
	t.Run("hash", func(t *testing.T) {
		cfg := &semantic.Config{Provider: "hash", Dimensions: 64}
		e, err := semantic.NewEmbedder(cfg)
		if err != nil {
			t.Fatalf("NewEmbedder failed: %v", err)
		}
		if e.Dimensions() != 64 {
			t.Errorf("Dimensions() = %d, want 64", e.Dimensions())
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &semantic.Config{Provider: "quantum", Dimensions: 64}
		if _, err := semantic.NewEmbedder(cfg); err == nil {
			t.Error("expected error for unknown provider")
		}
	})
}

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := semantic.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Provider != "hash" {
		t.Errorf("Provider = %q, want hash", cfg.Provider)
	}
	if cfg.Dimensions != 256 {
		t.Errorf("Dimensions = %d, want 256", cfg.Dimensions)
	}
	if cfg.Path != "stockroom-vec.db" {
		t.Errorf("Path = %q, want stockroom-vec.db", cfg.Path)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_VEC_PATH", "/tmp/vec.db")
	t.Setenv("TEST_VEC_DIMS", "512")

	env := &semantic.Env{
		Path:       "TEST_VEC_PATH",
		Dimensions: "TEST_VEC_DIMS",
	}

	cfg := semantic.Config{}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Path != "/tmp/vec.db" {
		t.Errorf("Path = %q, want /tmp/vec.db", cfg.Path)
	}
	if cfg.Dimensions != 512 {
		t.Errorf("Dimensions = %d, want 512", cfg.Dimensions)
	}
}

func TestConfigValidateOpenAIRequiresKey(t *testing.T) {
	cfg := semantic.Config{Provider: "openai"}
	err := cfg.Finalize(nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base := semantic.Config{Provider: "hash", Dimensions: 256, Path: "base.db"}
	overlay := semantic.Config{Provider: "openai", APIKey: "sk-test"}
	base.Merge(&overlay)

	if base.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", base.Provider)
	}
	if base.APIKey != "sk-test" {
		t.Errorf("APIKey = %q, want sk-test", base.APIKey)
	}
	if base.Dimensions != 256 {
		t.Errorf("Dimensions = %d, want 256 (unchanged)", base.Dimensions)
	}
	if base.Path != "base.db" {
		t.Errorf("Path = %q, want base.db (unchanged)", base.Path)
	}
}
