package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// Layer represents an architectural layer classification.
type Layer string

const (
	LayerData           Layer = "data"
	LayerBusiness       Layer = "business"
	LayerAPI            Layer = "api"
	LayerInfrastructure Layer = "infrastructure"
	LayerCrossCutting   Layer = "cross-cutting"
	LayerUnknown        Layer = "unknown"
)

// dataNamespacePatterns match data-layer namespaces.
var dataNamespacePatterns = []string{
	"repository", "repositories", "dal", "data", "dao",
	"persistence", "storage", "database", "db", "store",
	"schema", "model", "models", "entity", "entities",
}

// businessNamespacePatterns match business-layer namespaces.
var businessNamespacePatterns = []string{
	"service", "services", "domain", "core", "business",
	"usecase", "usecases", "logic", "engine", "manager",
}

// apiNamespacePatterns match API-layer namespaces.
var apiNamespacePatterns = []string{
	"controller", "controllers", "handler", "handlers",
	"api", "endpoint", "endpoints", "rest", "graphql",
	"route", "routes", "web", "cmd",
}

// infraNamespacePatterns match infrastructure-layer namespaces.
var infraNamespacePatterns = []string{
	"config", "configuration", "startup", "infrastructure",
	"infra", "bootstrap", "setup", "middleware", "filter",
	"interceptor", "logging", "monitoring",
}

// ComputeLayers classifies symbols into architectural layers and persists as metadata.
func (e *Engine) ComputeLayers(ctx context.Context, projectID uuid.UUID) error {
	symbols, err := e.store.ListSymbolsByProject(ctx, projectID)
	if err != nil {
		return fmt.Errorf("list symbols: %w", err)
	}

	e.logger.Info("computing architectural layers", slog.Int("symbols", len(symbols)))

	counts := map[Layer]int{
		LayerData:           0,
		LayerBusiness:       0,
		LayerAPI:            0,
		LayerInfrastructure: 0,
		LayerCrossCutting:   0,
		LayerUnknown:        0,
	}

	for _, sym := range symbols {
		layer := classifyLayer(sym)
		counts[layer]++

		meta := map[string]any{"layer": string(layer)}
		metaJSON, err := json.Marshal(meta)
		if err != nil {
			continue
		}

		if err := e.store.UpdateSymbolMetadata(ctx, projectID, sym.ID, metaJSON); err != nil {
			e.logger.Warn("failed to update layer",
				slog.Int64("symbol_id", sym.ID),
				slog.String("error", err.Error()))
		}
	}

	layerAnalytics := map[string]any{"layer_distribution": counts}
	layerJSON, _ := json.Marshal(layerAnalytics)
	summary := fmt.Sprintf("Layer distribution: data=%d, business=%d, api=%d, infra=%d, cross-cutting=%d, unknown=%d",
		counts[LayerData], counts[LayerBusiness], counts[LayerAPI],
		counts[LayerInfrastructure], counts[LayerCrossCutting], counts[LayerUnknown])

	if err := e.store.UpsertProjectAnalytics(ctx, projectID, "project", "layers", layerJSON, summary); err != nil {
		e.logger.Warn("failed to upsert layer analytics", slog.String("error", err.Error()))
	}

	e.logger.Info("layers computed",
		slog.Int("data", counts[LayerData]),
		slog.Int("business", counts[LayerBusiness]),
		slog.Int("api", counts[LayerAPI]),
		slog.Int("infra", counts[LayerInfrastructure]))

	return nil
}

func classifyLayer(sym models.Symbol) Layer {
	fqn := strings.ToLower(sym.QualifiedName)

	if matchesAnyPattern(fqn, apiNamespacePatterns) {
		return LayerAPI
	}
	if matchesAnyPattern(fqn, dataNamespacePatterns) {
		return LayerData
	}
	if matchesAnyPattern(fqn, businessNamespacePatterns) {
		return LayerBusiness
	}
	if matchesAnyPattern(fqn, infraNamespacePatterns) {
		return LayerInfrastructure
	}

	switch sym.Kind {
	case models.SymbolKindInterface:
		return LayerCrossCutting
	case models.SymbolKindEnum, models.SymbolKindConstant:
		return LayerCrossCutting
	}

	return LayerUnknown
}

func matchesAnyPattern(fqn string, patterns []string) bool {
	segments := splitFQN(fqn)
	for _, segment := range segments {
		for _, pattern := range patterns {
			if segment == pattern {
				return true
			}
		}
	}
	return false
}

func splitFQN(fqn string) []string {
	var segments []string
	current := strings.Builder{}
	for _, r := range fqn {
		switch r {
		case '.', '/', '\\', ':':
			if current.Len() > 0 {
				segments = append(segments, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}
