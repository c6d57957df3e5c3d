// Package store is the Postgres persistence backend from spec.md §6: a
// relational store for projects, languages, files, symbols, and
// relationships, with batch upsert and range delete for re-indexing.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// Store wraps a pgx connection pool with the project/language/file/symbol/
// relationship operations the orchestrator needs. It has no generated query
// layer: every statement here is hand-written SQL against the tables
// implied by spec.md §3, scanned directly into pkg/models types.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// WithTx runs fn inside a transaction, committing on success and rolling
// back on any error fn returns.
func (s *Store) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// UpsertProject ensures a projects row exists for name, per spec.md §4.7
// phase 1. Project is unique by name.
func (s *Store) UpsertProject(ctx context.Context, name, rootPath string) (models.Project, error) {
	const q = `
INSERT INTO projects (id, name, root_path, is_active, created_at, updated_at)
VALUES (gen_random_uuid(), $1, $2, true, now(), now())
ON CONFLICT (name) DO UPDATE SET root_path = $2, updated_at = now()
RETURNING id, name, root_path, is_active, created_at, updated_at`

	row := s.pool.QueryRow(ctx, q, name, rootPath)
	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.RootPath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return models.Project{}, fmt.Errorf("upsert project %q: %w", name, err)
	}
	return p, nil
}

// UpsertLanguage ensures a languages row exists, keyed by name.
func (s *Store) UpsertLanguage(ctx context.Context, lang models.Language) (models.Language, error) {
	const q = `
INSERT INTO languages (id, name, display_name, extensions, enabled)
VALUES (gen_random_uuid(), $1, $2, $3, $4)
ON CONFLICT (name) DO UPDATE SET display_name = $2, extensions = $3, enabled = $4
RETURNING id, name, display_name, extensions, enabled`

	row := s.pool.QueryRow(ctx, q, lang.Name, lang.DisplayName, lang.Extensions, lang.Enabled)
	var l models.Language
	if err := row.Scan(&l.ID, &l.Name, &l.DisplayName, &l.Extensions, &l.Enabled); err != nil {
		return models.Language{}, fmt.Errorf("upsert language %q: %w", lang.Name, err)
	}
	return l, nil
}

// GetProjectByName is used by cmd/indexer to resolve a previously indexed
// project before reusing its id.
func (s *Store) GetProjectByName(ctx context.Context, name string) (models.Project, bool, error) {
	const q = `SELECT id, name, root_path, is_active, created_at, updated_at FROM projects WHERE name = $1`
	row := s.pool.QueryRow(ctx, q, name)
	var p models.Project
	if err := row.Scan(&p.ID, &p.Name, &p.RootPath, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return models.Project{}, false, nil
		}
		return models.Project{}, false, fmt.Errorf("get project %q: %w", name, err)
	}
	return p, true, nil
}

// MaxSymbolID returns the project's current high-water symbol id, used to
// seed models.IDAllocator on orchestrator startup (SPEC_FULL.md §3). Zero
// for a brand-new project.
func (s *Store) MaxSymbolID(ctx context.Context, projectID uuid.UUID) (int64, error) {
	const q = `SELECT COALESCE(MAX(id), 0) FROM symbols WHERE project_id = $1`
	var maxID int64
	if err := s.pool.QueryRow(ctx, q, projectID).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("max symbol id: %w", err)
	}
	return maxID, nil
}

// UpsertFile records a discovered/parsed file's metadata, keyed by
// (project_id, file_path).
func (s *Store) UpsertFile(ctx context.Context, f models.File) (models.File, error) {
	const q = `
INSERT INTO files (id, project_id, language_id, file_path, file_size, file_hash,
                    last_parsed, parse_duration_ms, symbol_count, relationship_count,
                    pattern_count, has_errors)
VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (project_id, file_path) DO UPDATE SET
  language_id = $2, file_size = $4, file_hash = $5, last_parsed = $6,
  parse_duration_ms = $7, symbol_count = $8, relationship_count = $9,
  pattern_count = $10, has_errors = $11
RETURNING id, project_id, language_id, file_path, file_size, file_hash,
          last_parsed, parse_duration_ms, symbol_count, relationship_count,
          pattern_count, has_errors`

	var parseMS int64
	if f.ParseDuration > 0 {
		parseMS = f.ParseDuration.Milliseconds()
	}

	row := s.pool.QueryRow(ctx, q, f.ProjectID, f.LanguageID, f.FilePath, f.FileSize, f.FileHash,
		f.LastParsed, parseMS, f.SymbolCount, f.RelationshipCount, f.PatternCount, f.HasErrors)

	var out models.File
	var durationMS int64
	if err := row.Scan(&out.ID, &out.ProjectID, &out.LanguageID, &out.FilePath, &out.FileSize, &out.FileHash,
		&out.LastParsed, &durationMS, &out.SymbolCount, &out.RelationshipCount, &out.PatternCount, &out.HasErrors); err != nil {
		return models.File{}, fmt.Errorf("upsert file %q: %w", f.FilePath, err)
	}
	out.ParseDuration = time.Duration(durationMS) * time.Millisecond
	return out, nil
}

// GetFileByPath supports the incremental gate: the orchestrator looks up a
// file's last recorded hash before deciding whether to re-parse it.
func (s *Store) GetFileByPath(ctx context.Context, projectID uuid.UUID, path string) (models.File, bool, error) {
	const q = `
SELECT id, project_id, language_id, file_path, file_size, file_hash,
       last_parsed, parse_duration_ms, symbol_count, relationship_count,
       pattern_count, has_errors
FROM files WHERE project_id = $1 AND file_path = $2`

	row := s.pool.QueryRow(ctx, q, projectID, path)
	var f models.File
	var durationMS int64
	if err := row.Scan(&f.ID, &f.ProjectID, &f.LanguageID, &f.FilePath, &f.FileSize, &f.FileHash,
		&f.LastParsed, &durationMS, &f.SymbolCount, &f.RelationshipCount, &f.PatternCount, &f.HasErrors); err != nil {
		if err == pgx.ErrNoRows {
			return models.File{}, false, nil
		}
		return models.File{}, false, fmt.Errorf("get file %q: %w", path, err)
	}
	f.ParseDuration = time.Duration(durationMS) * time.Millisecond
	return f, true, nil
}

// DeleteSymbolsForFile performs the range delete by (project, file_path)
// spec.md §6 requires before re-indexing a changed file. Relationships
// referencing the deleted symbols cascade via the foreign key.
func (s *Store) DeleteSymbolsForFile(ctx context.Context, projectID uuid.UUID, filePath string) error {
	const q = `DELETE FROM symbols WHERE project_id = $1 AND file_path = $2`
	if _, err := s.pool.Exec(ctx, q, projectID, filePath); err != nil {
		return fmt.Errorf("delete symbols for %q: %w", filePath, err)
	}
	return nil
}

const symbolBatchSize = 500

// BatchInsertSymbols inserts every symbol, deduping on (project_id,
// qualified_name) per spec.md §4.7 phase 4. Conflicting rows are silently
// skipped, matching the "on conflict do nothing" contract spec.md §6
// requires of the persistence backend.
func (s *Store) BatchInsertSymbols(ctx context.Context, symbols []models.Symbol) error {
	const insertSQL = `
INSERT INTO symbols (id, store_row_id, project_id, language_id, name, qualified_name, kind,
                      file_path, line, column, end_line, end_column, signature, return_type,
                      visibility, namespace, parent_scope, is_definition, is_exported, is_async,
                      is_abstract, complexity, confidence, semantic_tags, language_features,
                      created_at, updated_at)
VALUES ($1, gen_random_uuid(), $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
        $16, $17, $18, $19, $20, $21, $22, $23, $24, now(), now())
ON CONFLICT (project_id, qualified_name) DO NOTHING`

	for start := 0; start < len(symbols); start += symbolBatchSize {
		end := min(start+symbolBatchSize, len(symbols))
		batch := &pgx.Batch{}
		for _, sym := range symbols[start:end] {
			batch.Queue(insertSQL, sym.ID, sym.ProjectID, sym.LanguageID, sym.Name, sym.QualifiedName, sym.Kind,
				sym.FilePath, sym.Line, sym.Column, sym.EndLine, sym.EndCol, nullIfEmpty(sym.Signature),
				nullIfEmpty(sym.ReturnType), sym.Visibility, sym.Namespace, sym.ParentScope, sym.IsDefinition,
				sym.IsExported, sym.IsAsync, sym.IsAbstract, sym.Complexity, sym.Confidence,
				sym.SemanticTags.Slice(), sym.LanguageFeatures)
		}
		br := s.pool.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch insert symbols: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("batch insert symbols: close: %w", err)
		}
	}
	return nil
}

// ListSymbolsByProject loads every symbol for a project, used by the
// resolver phase (which needs the full in-project symbol set to build its
// table) and by internal/graph's mirror sync.
func (s *Store) ListSymbolsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Symbol, error) {
	const q = `
SELECT id, project_id, language_id, name, qualified_name, kind, file_path, line, column,
       end_line, end_column, COALESCE(signature, ''), COALESCE(return_type, ''), visibility,
       namespace, parent_scope, is_definition, is_exported, is_async, is_abstract, complexity,
       confidence, semantic_tags
FROM symbols WHERE project_id = $1`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	defer rows.Close()

	var out []models.Symbol
	for rows.Next() {
		var sym models.Symbol
		var tags []string
		if err := rows.Scan(&sym.ID, &sym.ProjectID, &sym.LanguageID, &sym.Name, &sym.QualifiedName, &sym.Kind,
			&sym.FilePath, &sym.Line, &sym.Column, &sym.EndLine, &sym.EndCol, &sym.Signature, &sym.ReturnType,
			&sym.Visibility, &sym.Namespace, &sym.ParentScope, &sym.IsDefinition, &sym.IsExported, &sym.IsAsync,
			&sym.IsAbstract, &sym.Complexity, &sym.Confidence, &tags); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		sym.SemanticTags = models.NewStringSet(tags...)
		out = append(out, sym)
	}
	return out, rows.Err()
}

// GetSymbolByID loads a single symbol, used by cmd/queryapi's per-symbol
// lookup endpoint.
func (s *Store) GetSymbolByID(ctx context.Context, projectID uuid.UUID, id int64) (models.Symbol, bool, error) {
	const q = `
SELECT id, project_id, language_id, name, qualified_name, kind, file_path, line, column,
       end_line, end_column, COALESCE(signature, ''), COALESCE(return_type, ''), visibility,
       namespace, parent_scope, is_definition, is_exported, is_async, is_abstract, complexity,
       confidence, semantic_tags
FROM symbols WHERE project_id = $1 AND id = $2`

	row := s.pool.QueryRow(ctx, q, projectID, id)
	var sym models.Symbol
	var tags []string
	if err := row.Scan(&sym.ID, &sym.ProjectID, &sym.LanguageID, &sym.Name, &sym.QualifiedName, &sym.Kind,
		&sym.FilePath, &sym.Line, &sym.Column, &sym.EndLine, &sym.EndCol, &sym.Signature, &sym.ReturnType,
		&sym.Visibility, &sym.Namespace, &sym.ParentScope, &sym.IsDefinition, &sym.IsExported, &sym.IsAsync,
		&sym.IsAbstract, &sym.Complexity, &sym.Confidence, &tags); err != nil {
		if err == pgx.ErrNoRows {
			return models.Symbol{}, false, nil
		}
		return models.Symbol{}, false, fmt.Errorf("get symbol %d: %w", id, err)
	}
	sym.SemanticTags = models.NewStringSet(tags...)
	return sym, true, nil
}

// ListSymbolsWithoutEmbeddings supports the embedding phase: only symbols
// the project hasn't already embedded are sent to the embedder.
func (s *Store) ListSymbolsWithoutEmbeddings(ctx context.Context, projectID uuid.UUID) ([]models.Symbol, error) {
	const q = `
SELECT s.id, s.project_id, s.language_id, s.name, s.qualified_name, s.kind, s.file_path,
       COALESCE(s.signature, '')
FROM symbols s
LEFT JOIN symbol_embeddings e ON e.symbol_id = s.id AND e.project_id = s.project_id
WHERE s.project_id = $1 AND e.symbol_id IS NULL`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list symbols without embeddings: %w", err)
	}
	defer rows.Close()

	var out []models.Symbol
	for rows.Next() {
		var sym models.Symbol
		if err := rows.Scan(&sym.ID, &sym.ProjectID, &sym.LanguageID, &sym.Name, &sym.QualifiedName, &sym.Kind,
			&sym.FilePath, &sym.Signature); err != nil {
			return nil, fmt.Errorf("scan symbol: %w", err)
		}
		out = append(out, sym)
	}
	return out, rows.Err()
}

const embeddingBatchSize = 500

const upsertEmbeddingSQL = `
INSERT INTO symbol_embeddings (symbol_id, project_id, embedding, model, created_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (symbol_id) DO UPDATE SET embedding = $3, model = $4, created_at = now()`

// UpsertSymbolEmbeddingsBatch stores one embedding vector per symbol id,
// batched embeddingBatchSize rows per round trip, matching the teacher's
// pgx.Batch pipelining pattern.
func (s *Store) UpsertSymbolEmbeddingsBatch(ctx context.Context, projectID uuid.UUID, symbolIDs []int64, vectors []pgvector.Vector, model string) error {
	if len(symbolIDs) == 0 {
		return nil
	}
	if len(symbolIDs) != len(vectors) {
		return fmt.Errorf("upsert embeddings: %d ids vs %d vectors", len(symbolIDs), len(vectors))
	}

	for start := 0; start < len(symbolIDs); start += embeddingBatchSize {
		end := min(start+embeddingBatchSize, len(symbolIDs))
		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			batch.Queue(upsertEmbeddingSQL, symbolIDs[i], projectID, vectors[i], model)
		}
		br := s.pool.SendBatch(ctx, batch)
		for range batch.Len() {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("upsert embeddings batch: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("upsert embeddings batch: close: %w", err)
		}
	}
	return nil
}

// SimilarSymbols runs a cosine-distance nearest-neighbor query for semantic
// pattern detection (SPEC_FULL.md §11 "symbol embeddings for pattern
// similarity").
func (s *Store) SimilarSymbols(ctx context.Context, projectID uuid.UUID, target pgvector.Vector, limit int) ([]int64, error) {
	const q = `
SELECT symbol_id FROM symbol_embeddings
WHERE project_id = $1
ORDER BY embedding <=> $2
LIMIT $3`

	rows, err := s.pool.Query(ctx, q, projectID, target, limit)
	if err != nil {
		return nil, fmt.Errorf("similar symbols: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan similar symbol id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const relationshipBatchSize = 500

// BatchInsertRelationships inserts every resolved edge, silently skipping
// rows that would violate the (project, from, to, type) uniqueness
// constraint per spec.md §7's "expected; silently skipped" rule. Returns
// the number of rows actually inserted.
func (s *Store) BatchInsertRelationships(ctx context.Context, rels []models.Relationship) (int, error) {
	const insertSQL = `
INSERT INTO relationships (id, project_id, from_symbol_id, to_symbol_id, type, confidence,
                            context_line, context_snippet, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
ON CONFLICT (project_id, from_symbol_id, to_symbol_id, type) DO NOTHING`

	inserted := 0
	for start := 0; start < len(rels); start += relationshipBatchSize {
		end := min(start+relationshipBatchSize, len(rels))
		batch := &pgx.Batch{}
		for _, r := range rels[start:end] {
			id := r.ID
			if id == uuid.Nil {
				id = uuid.New()
			}
			batch.Queue(insertSQL, id, r.ProjectID, r.FromSymbolID, r.ToSymbolID, r.Type, r.Confidence,
				r.ContextLine, nullIfEmpty(r.ContextSnippet), r.Metadata)
		}
		br := s.pool.SendBatch(ctx, batch)
		for range batch.Len() {
			tag, err := br.Exec()
			if err != nil {
				br.Close()
				return inserted, fmt.Errorf("batch insert relationships: %w", err)
			}
			inserted += int(tag.RowsAffected())
		}
		if err := br.Close(); err != nil {
			return inserted, fmt.Errorf("batch insert relationships: close: %w", err)
		}
	}
	return inserted, nil
}

// ListRelationshipsByProject supports internal/graph's mirror sync and
// cmd/queryapi's read endpoints.
func (s *Store) ListRelationshipsByProject(ctx context.Context, projectID uuid.UUID) ([]models.Relationship, error) {
	const q = `
SELECT id, project_id, from_symbol_id, to_symbol_id, type, confidence,
       context_line, COALESCE(context_snippet, ''), created_at
FROM relationships WHERE project_id = $1`

	rows, err := s.pool.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list relationships: %w", err)
	}
	defer rows.Close()

	var out []models.Relationship
	for rows.Next() {
		var r models.Relationship
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.FromSymbolID, &r.ToSymbolID, &r.Type, &r.Confidence,
			&r.ContextLine, &r.ContextSnippet, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ProjectStats aggregates the counts spec.md §4.7 phase 7 ("statistics")
// requires: files indexed, symbols found, relationships found, and the
// average confidence across all symbols.
type ProjectStats struct {
	FilesIndexed       int
	SymbolsFound       int
	RelationshipsFound int
	AvgConfidence      float64
}

func (s *Store) ProjectStats(ctx context.Context, projectID uuid.UUID) (ProjectStats, error) {
	const q = `
SELECT
  (SELECT COUNT(*) FROM files WHERE project_id = $1),
  (SELECT COUNT(*) FROM symbols WHERE project_id = $1),
  (SELECT COUNT(*) FROM relationships WHERE project_id = $1),
  (SELECT COALESCE(AVG(confidence), 0) FROM symbols WHERE project_id = $1)`

	var stats ProjectStats
	row := s.pool.QueryRow(ctx, q, projectID)
	if err := row.Scan(&stats.FilesIndexed, &stats.SymbolsFound, &stats.RelationshipsFound, &stats.AvgConfidence); err != nil {
		return ProjectStats{}, fmt.Errorf("project stats: %w", err)
	}
	return stats, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
