package embedding

import (
	"context"
	"fmt"

	"github.com/polyglotdex/polyglotdex/internal/config"
)

// Embedder is the interface symbol-embedding providers satisfy, consumed by
// internal/orchestrator's phase 6 semantic-analysis step (SPEC_FULL.md §11
// "Symbol embeddings for pattern similarity").
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string, inputType string) ([][]float32, error)
	ModelID() string
}

// NewEmbedder returns a Bedrock-backed embedder, or nil if no region is
// configured (semantic analysis then skips the embedding sub-step).
func NewEmbedder(cfg *config.Config) (Embedder, error) {
	if cfg.Bedrock.Region == "" {
		return nil, nil
	}
	client, err := NewClient(cfg.Bedrock)
	if err != nil {
		return nil, fmt.Errorf("bedrock client: %w", err)
	}
	return client, nil
}
