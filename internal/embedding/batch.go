package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/polyglotdex/polyglotdex/internal/store"
)

// EmbedSymbols generates and stores embeddings for every symbol in a
// project that doesn't already have one. Returns the number of symbols
// embedded. This is the embedding sub-step of the orchestrator's phase 6
// semantic analysis (SPEC_FULL.md §11).
func EmbedSymbols(ctx context.Context, client Embedder, s *store.Store, projectID uuid.UUID, logger *slog.Logger) (int, error) {
	symbols, err := s.ListSymbolsWithoutEmbeddings(ctx, projectID)
	if err != nil {
		return 0, fmt.Errorf("list symbols without embeddings: %w", err)
	}
	if len(symbols) == 0 {
		return 0, nil
	}

	logger.Info("embedding symbols", slog.Int("count", len(symbols)))

	texts := make([]string, len(symbols))
	for i, sym := range symbols {
		texts[i] = BuildEmbeddingText(sym)
	}

	embeddings, err := client.EmbedBatch(ctx, texts, "search_document")
	if err != nil {
		return 0, fmt.Errorf("embed batch: %w", err)
	}
	if len(embeddings) != len(symbols) {
		return 0, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(embeddings), len(symbols))
	}

	ids := make([]int64, len(symbols))
	vectors := make([]pgvector.Vector, len(symbols))
	for i, sym := range symbols {
		ids[i] = sym.ID
		vectors[i] = pgvector.NewVector(embeddings[i])
	}

	if err := s.UpsertSymbolEmbeddingsBatch(ctx, projectID, ids, vectors, client.ModelID()); err != nil {
		return 0, fmt.Errorf("upsert embeddings: %w", err)
	}

	return len(symbols), nil
}
