package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/polyglotdex/polyglotdex/internal/store"
)

const (
	pageRankIterations = 20
	pageRankDamping    = 0.85
	batchSize          = 500
)

// Engine computes graph analytics (centrality, summaries, bridges, layers)
// for a project, run as the orchestrator's phase 6 semantic-analysis step
// (SPEC_FULL.md §11).
type Engine struct {
	store  *store.Store
	logger *slog.Logger
}

// NewEngine creates a new analytics engine.
func NewEngine(s *store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: s, logger: logger}
}

// ComputeAll runs all analytics for a project: degrees, PageRank, layers,
// clusters, summaries, bridges.
func (e *Engine) ComputeAll(ctx context.Context, projectID uuid.UUID) error {
	e.logger.Info("computing analytics", slog.String("project_id", projectID.String()))

	if err := e.ComputeDegrees(ctx, projectID); err != nil {
		return fmt.Errorf("compute degrees: %w", err)
	}

	if err := e.ComputePageRank(ctx, projectID); err != nil {
		return fmt.Errorf("compute pagerank: %w", err)
	}

	if err := e.ComputeLayers(ctx, projectID); err != nil {
		return fmt.Errorf("compute layers: %w", err)
	}

	if err := e.ComputeClusters(ctx, projectID); err != nil {
		return fmt.Errorf("compute clusters: %w", err)
	}

	if err := e.ComputeProjectSummaries(ctx, projectID); err != nil {
		return fmt.Errorf("compute summaries: %w", err)
	}

	if err := e.ComputeCrossLanguageBridges(ctx, projectID); err != nil {
		return fmt.Errorf("compute bridges: %w", err)
	}

	e.logger.Info("analytics complete", slog.String("project_id", projectID.String()))
	return nil
}

// ComputeDegrees calculates in-degree and out-degree for all symbols in a project.
func (e *Engine) ComputeDegrees(ctx context.Context, projectID uuid.UUID) error {
	degrees, err := e.store.GetSymbolDegrees(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get symbol degrees: %w", err)
	}

	e.logger.Info("computing degrees", slog.Int("symbols", len(degrees)))

	for i := 0; i < len(degrees); i += batchSize {
		end := min(i+batchSize, len(degrees))
		batch := degrees[i:end]

		for _, d := range batch {
			meta := map[string]any{
				"in_degree":  d.InDegree,
				"out_degree": d.OutDegree,
			}
			metaJSON, err := json.Marshal(meta)
			if err != nil {
				continue
			}
			if err := e.store.UpdateSymbolMetadata(ctx, projectID, d.ID, metaJSON); err != nil {
				e.logger.Warn("failed to update degree", slog.Int64("symbol_id", d.ID), slog.String("error", err.Error()))
			}
		}
	}

	e.logger.Info("degrees computed", slog.Int("symbols", len(degrees)))
	return nil
}

// ComputePageRank runs iterative PageRank over the symbol graph.
func (e *Engine) ComputePageRank(ctx context.Context, projectID uuid.UUID) error {
	edges, err := e.store.GetEdgeList(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get edge list: %w", err)
	}

	if len(edges) == 0 {
		e.logger.Info("no edges for pagerank")
		return nil
	}

	nodeSet := make(map[int64]struct{})
	outLinks := make(map[int64][]int64)
	for _, edge := range edges {
		nodeSet[edge.SourceID] = struct{}{}
		nodeSet[edge.TargetID] = struct{}{}
		outLinks[edge.SourceID] = append(outLinks[edge.SourceID], edge.TargetID)
	}

	n := len(nodeSet)
	if n == 0 {
		return nil
	}

	e.logger.Info("computing pagerank",
		slog.Int("nodes", n),
		slog.Int("edges", len(edges)),
		slog.Int("iterations", pageRankIterations))

	initRank := 1.0 / float64(n)
	rank := make(map[int64]float64, n)
	for node := range nodeSet {
		rank[node] = initRank
	}

	for iter := range pageRankIterations {
		newRank := make(map[int64]float64, n)
		sinkRank := 0.0

		for node := range nodeSet {
			if _, hasOut := outLinks[node]; !hasOut {
				sinkRank += rank[node]
			}
		}

		base := (1.0-pageRankDamping)/float64(n) + pageRankDamping*sinkRank/float64(n)

		for node := range nodeSet {
			newRank[node] = base
		}

		for src, targets := range outLinks {
			share := pageRankDamping * rank[src] / float64(len(targets))
			for _, tgt := range targets {
				newRank[tgt] += share
			}
		}

		if iter == pageRankIterations-1 {
			var maxDiff float64
			for node := range nodeSet {
				diff := math.Abs(rank[node] - newRank[node])
				if diff > maxDiff {
					maxDiff = diff
				}
			}
			e.logger.Debug("pagerank iteration", slog.Int("iter", iter), slog.Float64("max_diff", maxDiff))
		}

		rank = newRank
	}

	count := 0
	for node, pr := range rank {
		meta := map[string]any{"pagerank": math.Round(pr*1e6) / 1e6}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			continue
		}
		if err := e.store.UpdateSymbolMetadata(ctx, projectID, node, metaJSON); err != nil {
			e.logger.Warn("failed to update pagerank", slog.Int64("symbol_id", node))
		}
		count++
	}

	e.logger.Info("pagerank computed", slog.Int("nodes", count))
	return nil
}

// ComputeProjectSummaries generates aggregate analytics stored in
// project_analytics: a project-wide overview plus per-namespace summaries.
func (e *Engine) ComputeProjectSummaries(ctx context.Context, projectID uuid.UUID) error {
	stats, err := e.store.GetProjectSymbolStats(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get project symbol stats: %w", err)
	}

	langCounts, err := e.store.GetSymbolCountsByLanguage(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get language counts: %w", err)
	}

	kindCounts, err := e.store.GetSymbolCountsByKind(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get kind counts: %w", err)
	}

	edgeCount, err := e.store.CountEdgesByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("count edges: %w", err)
	}

	hotspots, err := e.store.TopSymbolsByInDegree(ctx, projectID, 10)
	if err != nil {
		e.logger.Warn("failed to get hotspots", slog.String("error", err.Error()))
	}

	projectAnalytics := map[string]any{
		"total_symbols":  stats.TotalSymbols,
		"total_files":    stats.FileCount,
		"total_edges":    edgeCount,
		"language_count": stats.LanguageCount,
		"kind_count":     stats.KindCount,
	}

	languages := make(map[string]int64)
	for _, lc := range langCounts {
		languages[lc.Language] = lc.Count
	}
	projectAnalytics["languages"] = languages

	kinds := make(map[string]int64)
	for _, kc := range kindCounts {
		kinds[kc.Kind] = kc.Count
	}
	projectAnalytics["kinds"] = kinds

	hotspotList := make([]map[string]any, 0, len(hotspots))
	for _, h := range hotspots {
		hotspotList = append(hotspotList, map[string]any{
			"id":        h.ID,
			"name":      h.Name,
			"kind":      h.Kind,
			"in_degree": h.InDegree,
		})
	}
	projectAnalytics["hotspots"] = hotspotList

	analyticsJSON, _ := json.Marshal(projectAnalytics)
	summary := generateProjectSummary(stats, langCounts, kindCounts, edgeCount)

	if err := e.store.UpsertProjectAnalytics(ctx, projectID, "project", "overview", analyticsJSON, summary); err != nil {
		return fmt.Errorf("upsert project analytics: %w", err)
	}

	nsStats, err := e.store.GetNamespaceStats(ctx, projectID, 50)
	if err != nil {
		e.logger.Warn("failed to get namespace stats", slog.String("error", err.Error()))
	} else {
		for _, ns := range nsStats {
			nsAnalytics := map[string]any{"symbol_count": ns.SymbolCount}
			nsJSON, _ := json.Marshal(nsAnalytics)
			nsSummary := fmt.Sprintf("Namespace %s contains %d symbols.", ns.Namespace, ns.SymbolCount)

			if err := e.store.UpsertProjectAnalytics(ctx, projectID, "namespace", ns.Namespace, nsJSON, nsSummary); err != nil {
				e.logger.Warn("failed to upsert namespace analytics", slog.String("namespace", ns.Namespace))
			}
		}
	}

	e.logger.Info("project summaries computed")
	return nil
}

// ComputeCrossLanguageBridges finds and stores cross-language boundary edges.
func (e *Engine) ComputeCrossLanguageBridges(ctx context.Context, projectID uuid.UUID) error {
	bridges, err := e.store.GetCrossLanguageBridges(ctx, projectID)
	if err != nil {
		return fmt.Errorf("get cross-language bridges: %w", err)
	}

	if len(bridges) == 0 {
		e.logger.Info("no cross-language bridges found")
		return nil
	}

	for _, bridge := range bridges {
		scopeID := fmt.Sprintf("%s-%s", bridge.SourceLanguage, bridge.TargetLanguage)
		bridgeAnalytics := map[string]any{
			"source_language": bridge.SourceLanguage,
			"target_language": bridge.TargetLanguage,
			"edge_type":       bridge.EdgeType,
			"edge_count":      bridge.EdgeCount,
		}
		bridgeJSON, _ := json.Marshal(bridgeAnalytics)
		summary := fmt.Sprintf("%s -> %s: %d %s edges",
			bridge.SourceLanguage, bridge.TargetLanguage, bridge.EdgeCount, bridge.EdgeType)

		if err := e.store.UpsertProjectAnalytics(ctx, projectID, "bridge", scopeID, bridgeJSON, summary); err != nil {
			e.logger.Warn("failed to upsert bridge analytics", slog.String("bridge", scopeID))
		}
	}

	e.logger.Info("cross-language bridges computed", slog.Int("bridge_types", len(bridges)))
	return nil
}

func generateProjectSummary(
	stats store.ProjectSymbolStats,
	langCounts []store.LanguageCount,
	kindCounts []store.KindCount,
	edgeCount int64,
) string {
	summary := fmt.Sprintf("This project contains %d symbols across %d files with %d edges. ",
		stats.TotalSymbols, stats.FileCount, edgeCount)

	if len(langCounts) > 0 {
		summary += "Languages: "
		for i, lc := range langCounts {
			if i > 0 {
				summary += ", "
			}
			if i >= 5 {
				summary += fmt.Sprintf("and %d more", len(langCounts)-5)
				break
			}
			summary += fmt.Sprintf("%s (%d)", lc.Language, lc.Count)
		}
		summary += ". "
	}

	if len(kindCounts) > 0 {
		summary += "Primary symbol kinds: "
		for i, kc := range kindCounts {
			if i > 0 {
				summary += ", "
			}
			if i >= 5 {
				summary += fmt.Sprintf("and %d more", len(kindCounts)-5)
				break
			}
			summary += fmt.Sprintf("%s (%d)", kc.Kind, kc.Count)
		}
		summary += "."
	}

	return summary
}
