package semantic

import (
	"context"
	"fmt"
)

// Embedder converts text into a fixed-dimension vector. Implementations must
// be deterministic for identical input so stored records remain reproducible.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}

// NewEmbedder creates the embedder selected by the config provider.
func NewEmbedder(cfg *Config) (Embedder, error) {
	switch cfg.Provider {
	case "hash":
		return NewHashEmbedder(cfg.Dimensions), nil
	case "openai":
		return newOpenAIEmbedder(cfg), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}
