package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

const batchSize = 500

// SyncSymbols upserts symbol nodes into the graph mirror and links each to
// its defining file, per SPEC_FULL.md §2's "read-optimized graph
// projection of the symbol/relationship tables".
func (c *Client) SyncSymbols(ctx context.Context, projectID uuid.UUID, symbols []models.Symbol) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	for i := 0; i < len(symbols); i += batchSize {
		end := min(i+batchSize, len(symbols))
		batch := symbols[i:end]

		params := make([]map[string]any, len(batch))
		for j, sym := range batch {
			params[j] = map[string]any{
				"id":            sym.ID,
				"name":          sym.Name,
				"qualifiedName": sym.QualifiedName,
				"kind":          string(sym.Kind),
				"language":      sym.LanguageID,
				"projectId":     projectID.String(),
				"filePath":      sym.FilePath,
				"startLine":     sym.Line,
				"endLine":       sym.EndLine,
				"isExported":    sym.IsExported,
			}
		}

		_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
			if _, err := tx.Run(ctx, UpsertSymbolNode, map[string]any{"symbols": params}); err != nil {
				return struct{}{}, err
			}
			_, err := tx.Run(ctx, LinkSymbolToFile, map[string]any{"symbols": params})
			return struct{}{}, err
		})
		if err != nil {
			return fmt.Errorf("sync symbols batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}

// SyncEdges upserts resolved relationships into the graph as RELATES edges,
// labeled by the universal model's closed RelationshipType set.
func (c *Client) SyncEdges(ctx context.Context, projectID uuid.UUID, edges []models.Relationship) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	for i := 0; i < len(edges); i += batchSize {
		end := min(i+batchSize, len(edges))
		batch := edges[i:end]

		params := make([]map[string]any, len(batch))
		for j, e := range batch {
			params[j] = map[string]any{
				"fromId":     e.FromSymbolID,
				"toId":       e.ToSymbolID,
				"type":       string(e.Type),
				"confidence": e.Confidence,
				"projectId":  projectID.String(),
			}
		}

		_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, UpsertEdge, map[string]any{"edges": params})
			return struct{}{}, err
		})
		if err != nil {
			return fmt.Errorf("sync edges batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}

// SyncFiles upserts file nodes into the graph mirror.
func (c *Client) SyncFiles(ctx context.Context, projectID uuid.UUID, files []models.File) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	for i := 0; i < len(files); i += batchSize {
		end := min(i+batchSize, len(files))
		batch := files[i:end]

		params := make([]map[string]any, len(batch))
		for j, f := range batch {
			params[j] = map[string]any{
				"path":      f.FilePath,
				"language":  f.LanguageID,
				"projectId": projectID.String(),
			}
		}

		_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
			_, err := tx.Run(ctx, UpsertFileNode, map[string]any{"files": params})
			return struct{}{}, err
		})
		if err != nil {
			return fmt.Errorf("sync files batch %d: %w", i/batchSize, err)
		}
	}
	return nil
}

// ClearProject removes all graph data for a project, used before a full
// re-sync.
func (c *Client) ClearProject(ctx context.Context, projectID uuid.UUID) error {
	session := c.Session(ctx)
	defer session.Close(ctx)

	_, err := neo4j.ExecuteWrite(ctx, session, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, DeleteProjectNodes, map[string]any{
			"projectId": projectID.String(),
		})
		return struct{}{}, err
	})
	return err
}

// Lineage runs an upstream/downstream/both RELATES traversal from symbolID,
// bounded to depth hops.
func (c *Client) Lineage(ctx context.Context, projectID uuid.UUID, symbolID int64, depth int, direction string) ([]*neo4j.Record, error) {
	session := c.Session(ctx)
	defer session.Close(ctx)

	var query string
	switch direction {
	case "upstream":
		query = fmt.Sprintf(LineageUpstream, depth)
	case "downstream":
		query = fmt.Sprintf(LineageDownstream, depth)
	default:
		query = fmt.Sprintf(LineageBoth, depth, depth)
	}

	records, err := neo4j.ExecuteRead(ctx, session, func(tx neo4j.ManagedTransaction) ([]*neo4j.Record, error) {
		result, err := tx.Run(ctx, query, map[string]any{"symbolId": symbolID, "projectId": projectID.String()})
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("lineage query: %w", err)
	}
	return records, nil
}
