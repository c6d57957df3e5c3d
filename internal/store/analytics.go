package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// SymbolDegree is a symbol's relationship fan-in/fan-out count, the input
// to internal/analytics' degree and PageRank passes.
type SymbolDegree struct {
	ID        int64
	InDegree  int
	OutDegree int
}

// GetSymbolDegrees computes in-degree and out-degree per symbol from the
// relationships table.
func (s *Store) GetSymbolDegrees(ctx context.Context, projectID uuid.UUID) ([]SymbolDegree, error) {
	const q = `
SELECT s.id,
       COALESCE(indeg.cnt, 0) AS in_degree,
       COALESCE(outdeg.cnt, 0) AS out_degree
FROM symbols s
LEFT JOIN (SELECT to_symbol_id, COUNT(*) AS cnt FROM relationships WHERE project_id = $1 GROUP BY to_symbol_id) indeg
  ON indeg.to_symbol_id = s.id
LEFT JOIN (SELECT from_symbol_id, COUNT(*) AS cnt FROM relationships WHERE project_id = $1 GROUP BY from_symbol_id) outdeg
  ON outdeg.from_symbol_id = s.id
WHERE s.project_id = $1`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("get symbol degrees: %w", err)
	}
	defer rows.Close()

	var out []SymbolDegree
	for rows.Next() {
		var d SymbolDegree
		if err := rows.Scan(&d.ID, &d.InDegree, &d.OutDegree); err != nil {
			return nil, fmt.Errorf("scan symbol degree: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Edge is the bare (from, to) pair internal/analytics needs to build its
// in-memory adjacency lists for PageRank and label propagation.
type Edge struct {
	SourceID int64
	TargetID int64
}

// GetEdgeList returns every relationship in the project as a (from, to)
// pair, ignoring type and confidence.
func (s *Store) GetEdgeList(ctx context.Context, projectID uuid.UUID) ([]Edge, error) {
	const q = `SELECT from_symbol_id, to_symbol_id FROM relationships WHERE project_id = $1`
	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("get edge list: %w", err)
	}
	defer rows.Close()

	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.SourceID, &e.TargetID); err != nil {
			return nil, fmt.Errorf("scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateSymbolMetadata merges analyticsJSON into a symbol's
// language_features column, used to attach degree/pagerank/cluster/layer
// values computed by internal/analytics without a dedicated column per
// metric.
func (s *Store) UpdateSymbolMetadata(ctx context.Context, projectID uuid.UUID, symbolID int64, analyticsJSON []byte) error {
	const q = `
UPDATE symbols
SET language_features = COALESCE(language_features, '{}'::jsonb) || $3::jsonb
WHERE project_id = $1 AND id = $2`
	if _, err := s.pool.Exec(ctx, q, projectID, symbolID, analyticsJSON); err != nil {
		return fmt.Errorf("update symbol metadata: %w", err)
	}
	return nil
}

// UpsertProjectAnalytics stores a scoped analytics summary (project-wide,
// per-namespace, per-cluster, per-language-bridge) computed by
// internal/analytics. scope/scopeID together form the natural key.
func (s *Store) UpsertProjectAnalytics(ctx context.Context, projectID uuid.UUID, scope, scopeID string, analyticsJSON []byte, summary string) error {
	const q = `
INSERT INTO project_analytics (project_id, scope, scope_id, analytics, summary, updated_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (project_id, scope, scope_id) DO UPDATE SET
  analytics = $4, summary = $5, updated_at = now()`
	if _, err := s.pool.Exec(ctx, q, projectID, scope, scopeID, analyticsJSON, summary); err != nil {
		return fmt.Errorf("upsert project analytics (%s/%s): %w", scope, scopeID, err)
	}
	return nil
}

// ProjectSymbolStats is the project-wide rollup generateProjectSummary
// renders into prose.
type ProjectSymbolStats struct {
	TotalSymbols  int64
	FileCount     int64
	LanguageCount int64
	KindCount     int64
}

func (s *Store) GetProjectSymbolStats(ctx context.Context, projectID uuid.UUID) (ProjectSymbolStats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM symbols WHERE project_id = $1),
  (SELECT COUNT(*) FROM files WHERE project_id = $1),
  (SELECT COUNT(DISTINCT language_id) FROM symbols WHERE project_id = $1),
  (SELECT COUNT(DISTINCT kind) FROM symbols WHERE project_id = $1)`

	var st ProjectSymbolStats
	row := s.pool.QueryRow(ctx, q, projectID)
	if err := row.Scan(&st.TotalSymbols, &st.FileCount, &st.LanguageCount, &st.KindCount); err != nil {
		return ProjectSymbolStats{}, fmt.Errorf("get project symbol stats: %w", err)
	}
	return st, nil
}

// LanguageCount is one row of the project's per-language symbol breakdown.
type LanguageCount struct {
	Language string
	Count    int64
}

func (s *Store) GetSymbolCountsByLanguage(ctx context.Context, projectID uuid.UUID) ([]LanguageCount, error) {
	const q = `
SELECT language_id, COUNT(*)
FROM symbols
WHERE project_id = $1
GROUP BY language_id
ORDER BY COUNT(*) DESC`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("get symbol counts by language: %w", err)
	}
	defer rows.Close()

	var out []LanguageCount
	for rows.Next() {
		var lc LanguageCount
		if err := rows.Scan(&lc.Language, &lc.Count); err != nil {
			return nil, fmt.Errorf("scan language count: %w", err)
		}
		out = append(out, lc)
	}
	return out, rows.Err()
}

// KindCount is one row of the project's per-kind symbol breakdown.
type KindCount struct {
	Kind  string
	Count int64
}

func (s *Store) GetSymbolCountsByKind(ctx context.Context, projectID uuid.UUID) ([]KindCount, error) {
	const q = `
SELECT kind, COUNT(*) FROM symbols WHERE project_id = $1 GROUP BY kind ORDER BY COUNT(*) DESC`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("get symbol counts by kind: %w", err)
	}
	defer rows.Close()

	var out []KindCount
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

func (s *Store) CountEdgesByProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	const q = `SELECT COUNT(*) FROM relationships WHERE project_id = $1`
	var count int64
	if err := s.pool.QueryRow(ctx, q, projectID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count edges: %w", err)
	}
	return count, nil
}

// Hotspot is a symbol ranked by in-degree, surfaced in the project
// analytics summary as a hub/bottleneck candidate.
type Hotspot struct {
	ID       int64
	Name     string
	Kind     string
	InDegree int64
}

func (s *Store) TopSymbolsByInDegree(ctx context.Context, projectID uuid.UUID, limit int) ([]Hotspot, error) {
	const q = `
SELECT s.id, s.name, s.kind, COUNT(r.id) AS in_degree
FROM symbols s JOIN relationships r ON r.to_symbol_id = s.id AND r.project_id = s.project_id
WHERE s.project_id = $1
GROUP BY s.id, s.name, s.kind
ORDER BY in_degree DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("top symbols by in-degree: %w", err)
	}
	defer rows.Close()

	var out []Hotspot
	for rows.Next() {
		var h Hotspot
		if err := rows.Scan(&h.ID, &h.Name, &h.Kind, &h.InDegree); err != nil {
			return nil, fmt.Errorf("scan hotspot: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// NamespaceStat is one row of the project's per-namespace symbol count,
// used for namespace-scoped analytics summaries.
type NamespaceStat struct {
	Namespace   string
	SymbolCount int64
}

func (s *Store) GetNamespaceStats(ctx context.Context, projectID uuid.UUID, limit int) ([]NamespaceStat, error) {
	const q = `
SELECT namespace, COUNT(*)
FROM symbols
WHERE project_id = $1 AND namespace <> ''
GROUP BY namespace
ORDER BY COUNT(*) DESC
LIMIT $2`

	rows, err := s.pool.Query(ctx, q, projectID, limit)
	if err != nil {
		return nil, fmt.Errorf("get namespace stats: %w", err)
	}
	defer rows.Close()

	var out []NamespaceStat
	for rows.Next() {
		var ns NamespaceStat
		if err := rows.Scan(&ns.Namespace, &ns.SymbolCount); err != nil {
			return nil, fmt.Errorf("scan namespace stat: %w", err)
		}
		out = append(out, ns)
	}
	return out, rows.Err()
}

// LanguageBridge is an aggregated count of edges crossing a language
// boundary, grouped by (source language, target language, relationship
// type) -- the generalization of the teacher's SQL-to-application
// cross-language bridge detection to the universal relationship model.
type LanguageBridge struct {
	SourceLanguage string
	TargetLanguage string
	EdgeType       string
	EdgeCount      int64
}

func (s *Store) GetCrossLanguageBridges(ctx context.Context, projectID uuid.UUID) ([]LanguageBridge, error) {
	const q = `
SELECT sf.language_id, st.language_id, r.type, COUNT(*)
FROM relationships r
JOIN symbols sf ON sf.id = r.from_symbol_id AND sf.project_id = r.project_id
JOIN symbols st ON st.id = r.to_symbol_id AND st.project_id = r.project_id
WHERE r.project_id = $1 AND sf.language_id <> st.language_id
GROUP BY sf.language_id, st.language_id, r.type
ORDER BY COUNT(*) DESC`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("get cross-language bridges: %w", err)
	}
	defer rows.Close()

	var out []LanguageBridge
	for rows.Next() {
		var b LanguageBridge
		if err := rows.Scan(&b.SourceLanguage, &b.TargetLanguage, &b.EdgeType, &b.EdgeCount); err != nil {
			return nil, fmt.Errorf("scan language bridge: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
