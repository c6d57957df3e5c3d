// Package orchestrator drives the seven-phase indexing run spec.md §4.7
// describes: project and language setup, discovery, parse, symbol storage,
// relationship resolution, optional semantic analysis, and final
// statistics. It is grounded on the teacher's internal/ingestion.Pipeline
// idiom -- an ordered list of stages run by a single goroutine, each
// logged on entry and exit, with per-item failures accumulated rather than
// aborting the run -- generalized from a lineage-sync pipeline to a
// universal symbol/relationship indexer.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/polyglotdex/polyglotdex/internal/analytics"
	"github.com/polyglotdex/polyglotdex/internal/cfa"
	"github.com/polyglotdex/polyglotdex/internal/config"
	"github.com/polyglotdex/polyglotdex/internal/dispatch"
	"github.com/polyglotdex/polyglotdex/internal/discovery"
	"github.com/polyglotdex/polyglotdex/internal/embedding"
	"github.com/polyglotdex/polyglotdex/internal/graph"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/internal/resolver"
	"github.com/polyglotdex/polyglotdex/internal/store"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// Orchestrator owns a single run's collaborators. Per spec.md §5, only one
// Orchestrator goroutine touches the store at a time; Graph and Embedder
// are optional and nil-safe, skipping their semantic-analysis sub-steps
// when not configured.
type Orchestrator struct {
	Store     *store.Store
	Registry  *parseradapter.Registry
	Resolver  *resolver.Engine
	Analytics *analytics.Engine
	CFA       *cfa.Analyzer
	Embedder  embedding.Embedder // optional
	Graph     *graph.Client      // optional
	Logger    *slog.Logger
}

// New wires an Orchestrator from its collaborators. graphClient and
// embedder may be nil.
func New(s *store.Store, registry *parseradapter.Registry, graphClient *graph.Client, embedder embedding.Embedder, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Store:     s,
		Registry:  registry,
		Resolver:  resolver.New(logger),
		Analytics: analytics.NewEngine(s, logger),
		CFA:       cfa.New(),
		Embedder:  embedder,
		Graph:     graphClient,
		Logger:    logger,
	}
}

// Run executes the full seven-phase pipeline against cfg.ProjectPath,
// calling onProgress at each phase transition and after every file
// completes parsing. Cooperative cancellation is checked between phases
// and between file completions (spec.md §5): ctx.Err() after a phase
// returns the partial Result gathered so far rather than discarding it.
func (o *Orchestrator) Run(ctx context.Context, cfg config.IndexerConfig, onProgress ProgressFunc) (Result, error) {
	start := time.Now()
	if onProgress == nil {
		onProgress = func(Progress) {}
	}
	log := o.Logger.With(slog.String("project_path", cfg.ProjectPath))

	// Phase 1: project & language upsert.
	log.Info("phase started", slog.String("phase", string(PhaseProjectSetup)))
	onProgress(Progress{Phase: PhaseProjectSetup, StartTime: start})

	projectName := cfg.ProjectName
	if projectName == "" {
		projectName = cfg.ProjectPath
	}
	project, err := o.Store.UpsertProject(ctx, projectName, cfg.ProjectPath)
	if err != nil {
		return Result{}, fmt.Errorf("phase %s: %w", PhaseProjectSetup, err)
	}

	languages := cfg.Languages
	if len(languages) == 0 {
		languages = config.DefaultLanguages
	}
	for _, name := range languages {
		if _, err := o.Store.UpsertLanguage(ctx, models.Language{Name: name, DisplayName: name, Enabled: true}); err != nil {
			return Result{ProjectID: project.ID}, fmt.Errorf("phase %s: language %q: %w", PhaseProjectSetup, name, err)
		}
	}
	log.Info("phase completed", slog.String("phase", string(PhaseProjectSetup)))

	if err := ctx.Err(); err != nil {
		return Result{ProjectID: project.ID}, err
	}

	// Phase 2: discovery.
	log.Info("phase started", slog.String("phase", string(PhaseDiscovery)))
	onProgress(Progress{Phase: PhaseDiscovery, StartTime: start})

	discovered, err := discovery.Discover(discovery.Options{
		RootPath:        cfg.ProjectPath,
		FilePatterns:    cfg.FilePatterns,
		ExcludePatterns: cfg.ExcludePatterns,
		MaxFiles:        cfg.MaxFiles,
	})
	if err != nil {
		return Result{ProjectID: project.ID}, fmt.Errorf("phase %s: %w", PhaseDiscovery, err)
	}

	toParse := make([]discovery.DiscoveredFile, 0, len(discovered))
	for _, f := range discovered {
		if !cfg.ForceReindex {
			existing, found, err := o.Store.GetFileByPath(ctx, project.ID, f.RelPath)
			if err == nil && found && !existing.NeedsReparse(f.Hash) {
				continue
			}
		}
		toParse = append(toParse, f)
	}
	log.Info("phase completed", slog.String("phase", string(PhaseDiscovery)),
		slog.Int("discovered", len(discovered)), slog.Int("to_parse", len(toParse)))

	if err := ctx.Err(); err != nil {
		return Result{ProjectID: project.ID}, err
	}

	// Phase 3: parse, up to cfg.Parallelism goroutines (spec.md §5).
	log.Info("phase started", slog.String("phase", string(PhaseParse)))

	var runErrors []Error
	tracker := newProgressTracker(start)
	dispatcher := dispatch.New(o.Registry, dispatch.Options{
		Parallelism: cfg.Parallelism,
		FileTimeout: time.Duration(cfg.FileTimeout) * time.Second,
		OnProgress: func(done, total int, path string) {
			tracker.tick(time.Now())
			onProgress(Progress{
				Phase:                  PhaseParse,
				TotalFiles:             total,
				ProcessedFiles:         done,
				CurrentFile:            path,
				Errors:                 len(runErrors),
				StartTime:              start,
				EstimatedTimeRemaining: tracker.estimate(total - done),
			})
		},
	})
	parsed, fileErrs, err := dispatcher.Run(ctx, toParse)
	if err != nil {
		return Result{ProjectID: project.ID}, fmt.Errorf("phase %s: %w", PhaseParse, err)
	}
	for _, fe := range fileErrs {
		runErrors = append(runErrors, Error{File: fe.Path, Phase: PhaseParse, Err: fe.Err})
	}
	log.Info("phase completed", slog.String("phase", string(PhaseParse)),
		slog.Int("parsed", len(parsed)), slog.Int("errors", len(fileErrs)))

	if err := ctx.Err(); err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors}, err
	}

	// Phase 4: store symbols, deduped by (project, qualified_name) in
	// Store.BatchInsertSymbols, plus per-file bookkeeping.
	log.Info("phase started", slog.String("phase", string(PhaseStoreSymbols)))
	onProgress(Progress{Phase: PhaseStoreSymbols, TotalFiles: len(parsed), StartTime: start})

	maxID, err := o.Store.MaxSymbolID(ctx, project.ID)
	if err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors}, fmt.Errorf("phase %s: %w", PhaseStoreSymbols, err)
	}
	alloc := models.NewIDAllocator(maxID)

	var allSymbols []models.Symbol
	fileRelationships := make([]resolver.FileRelationships, 0, len(parsed))
	patternsFound := 0
	now := time.Now()

	for _, r := range parsed {
		if err := o.Store.DeleteSymbolsForFile(ctx, project.ID, r.File.RelPath); err != nil {
			runErrors = append(runErrors, Error{File: r.File.RelPath, Phase: PhaseStoreSymbols, Err: err})
			continue
		}

		fileLanguage := ""
		fileSymbols := make([]models.Symbol, 0, len(r.Output.Symbols))
		for _, si := range r.Output.Symbols {
			if fileLanguage == "" {
				fileLanguage = si.Language
			}
			sym := models.NewSymbol()
			sym.ID = alloc.Next()
			sym.ProjectID = project.ID
			sym.LanguageID = si.Language
			sym.Name = si.Name
			sym.QualifiedName = si.QualifiedName
			sym.Kind = si.Kind
			sym.FilePath = r.File.RelPath
			sym.Line = si.Line
			sym.Column = si.Column
			sym.EndLine = si.EndLine
			sym.EndCol = si.EndCol
			sym.Signature = si.Signature
			sym.ReturnType = si.ReturnType
			sym.Visibility = si.Visibility
			sym.Namespace = si.Namespace
			sym.ParentScope = si.ParentScope
			sym.IsDefinition = si.IsDefinition
			sym.IsExported = si.IsExported
			sym.IsAsync = si.IsAsync
			sym.IsAbstract = si.IsAbstract
			sym.Complexity = si.Complexity
			if si.Confidence > 0 {
				sym.Confidence = si.Confidence
			}
			sym.SemanticTags = models.NewStringSet(si.SemanticTags...)
			sym.LanguageFeatures = si.LanguageFeatures
			fileSymbols = append(fileSymbols, sym)
		}
		allSymbols = append(allSymbols, fileSymbols...)

		fileRelationships = append(fileRelationships, resolver.FileRelationships{
			FilePath:      r.File.RelPath,
			Language:      fileLanguage,
			Relationships: r.Output.Relationships,
		})
		patternsFound += len(r.Output.Patterns)

		if _, err := o.Store.UpsertFile(ctx, models.File{
			ProjectID:         project.ID,
			LanguageID:        fileLanguage,
			FilePath:          r.File.RelPath,
			FileSize:          r.File.Size,
			FileHash:          r.File.Hash,
			LastParsed:        &now,
			SymbolCount:       len(fileSymbols),
			RelationshipCount: len(r.Output.Relationships),
			PatternCount:      len(r.Output.Patterns),
			HasErrors:         false,
		}); err != nil {
			runErrors = append(runErrors, Error{File: r.File.RelPath, Phase: PhaseStoreSymbols, Err: err})
		}
	}

	if err := o.Store.BatchInsertSymbols(ctx, allSymbols); err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors}, fmt.Errorf("phase %s: %w", PhaseStoreSymbols, err)
	}
	log.Info("phase completed", slog.String("phase", string(PhaseStoreSymbols)), slog.Int("symbols", len(allSymbols)))

	if err := ctx.Err(); err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors, SymbolsFound: len(allSymbols)}, err
	}

	// Phase 5: resolve relationships against the project's full symbol
	// table (spec.md §4.6).
	log.Info("phase started", slog.String("phase", string(PhaseResolve)))
	onProgress(Progress{Phase: PhaseResolve, StartTime: start})

	projectSymbols, err := o.Store.ListSymbolsByProject(ctx, project.ID)
	if err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors, SymbolsFound: len(allSymbols)}, fmt.Errorf("phase %s: %w", PhaseResolve, err)
	}

	primaryLanguage := ""
	if len(languages) > 0 {
		primaryLanguage = languages[0]
	}
	resolved := o.Resolver.Resolve(alloc, resolver.Input{
		ProjectID:  project.ID,
		LanguageID: primaryLanguage,
		Symbols:    projectSymbols,
		Files:      fileRelationships,
	})

	symbolsFound := len(allSymbols)
	if len(resolved.VirtualSymbols) > 0 {
		if err := o.Store.BatchInsertSymbols(ctx, resolved.VirtualSymbols); err != nil {
			runErrors = append(runErrors, Error{Phase: PhaseResolve, Err: fmt.Errorf("store virtual symbols: %w", err)})
		} else {
			symbolsFound += len(resolved.VirtualSymbols)
		}
	}

	relationshipsFound, err := o.Store.BatchInsertRelationships(ctx, resolved.Relationships)
	if err != nil {
		runErrors = append(runErrors, Error{Phase: PhaseResolve, Err: err})
	}
	log.Info("phase completed", slog.String("phase", string(PhaseResolve)),
		slog.Int("relationships", relationshipsFound), slog.Int("unresolved", resolved.Unresolved))

	if err := ctx.Err(); err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors, SymbolsFound: symbolsFound, RelationshipsFound: relationshipsFound}, err
	}

	// Phase 6: semantic analysis (optional): control-flow analysis,
	// symbol embeddings, graph mirror sync, and analytics aggregation.
	if cfg.EnableSemanticAnalysis {
		log.Info("phase started", slog.String("phase", string(PhaseSemantic)))
		onProgress(Progress{Phase: PhaseSemantic, StartTime: start})

		o.runControlFlowAnalysis(parsed, allSymbols, &runErrors)

		if o.Embedder != nil {
			if _, err := embedding.EmbedSymbols(ctx, o.Embedder, o.Store, project.ID, o.Logger); err != nil {
				runErrors = append(runErrors, Error{Phase: PhaseSemantic, Err: fmt.Errorf("embed symbols: %w", err)})
			}
		}

		if o.Graph != nil {
			o.syncGraphMirror(ctx, project.ID, allSymbols, resolved.Relationships, &runErrors)
		}

		if err := o.Analytics.ComputeAll(ctx, project.ID); err != nil {
			runErrors = append(runErrors, Error{Phase: PhaseSemantic, Err: fmt.Errorf("complexity aggregation: %w", err)})
		}
		log.Info("phase completed", slog.String("phase", string(PhaseSemantic)))

		if err := ctx.Err(); err != nil {
			return Result{ProjectID: project.ID, Errors: runErrors, SymbolsFound: symbolsFound, RelationshipsFound: relationshipsFound, PatternsFound: patternsFound}, err
		}
	}

	// Phase 7: statistics.
	log.Info("phase started", slog.String("phase", string(PhaseStatistics)))
	onProgress(Progress{Phase: PhaseStatistics, StartTime: start})

	stats, err := o.Store.ProjectStats(ctx, project.ID)
	if err != nil {
		return Result{ProjectID: project.ID, Errors: runErrors}, fmt.Errorf("phase %s: %w", PhaseStatistics, err)
	}
	log.Info("phase completed", slog.String("phase", string(PhaseStatistics)))

	result := Result{
		Success:            true,
		ProjectID:          project.ID,
		FilesIndexed:       len(parsed),
		SymbolsFound:       stats.SymbolsFound,
		RelationshipsFound: stats.RelationshipsFound,
		PatternsFound:      patternsFound,
		Errors:             runErrors,
		Duration:           time.Since(start),
		Confidence:         stats.AvgConfidence,
	}
	return result, nil
}

// runControlFlowAnalysis is phase 6's control-flow sub-step: for every
// parsed file whose adapter returned a syntax tree but no native
// ControlFlowData, run internal/cfa's tree-mode analysis against each
// defined function/method symbol and fold the resulting block/edge counts
// into its language_features metadata.
func (o *Orchestrator) runControlFlowAnalysis(parsed []dispatch.Result, symbols []models.Symbol, runErrors *[]Error) {
	byFile := make(map[string][]models.Symbol, len(parsed))
	for _, sym := range symbols {
		byFile[sym.FilePath] = append(byFile[sym.FilePath], sym)
	}

	for _, r := range parsed {
		if len(r.Output.ControlFlowData) > 0 {
			continue // adapter already supplied native control-flow data
		}
		if r.Output.Semantic == nil || r.Output.Semantic.Tree == nil {
			continue
		}
		root, ok := r.Output.Semantic.Tree.(*sitter.Node)
		if !ok || root == nil {
			continue
		}
		for _, sym := range byFile[r.File.RelPath] {
			if !sym.IsDefinition || (sym.Kind != models.SymbolKindFunction && sym.Kind != models.SymbolKindMethod) {
				continue
			}
			cfg := o.CFA.AnalyzeTree(sym.ID, root, sym.Line, sym.EndLine)
			meta := fmt.Sprintf(`{"cfg_blocks":%d,"cfg_edges":%d}`, len(cfg.Blocks), len(cfg.Edges))
			if err := o.Store.UpdateSymbolMetadata(context.Background(), sym.ProjectID, sym.ID, []byte(meta)); err != nil {
				*runErrors = append(*runErrors, Error{File: r.File.RelPath, Phase: PhaseSemantic, Err: fmt.Errorf("cfa metadata: %w", err)})
			}
		}
	}
}

// syncGraphMirror pushes the run's symbols and resolved relationships into
// the read-optimized Neo4j mirror (SPEC_FULL.md §6). Sync failures are
// collected as run errors rather than aborting the run: the mirror is a
// derived, rebuildable view, not the system of record.
func (o *Orchestrator) syncGraphMirror(ctx context.Context, projectID uuid.UUID, symbols []models.Symbol, relationships []models.Relationship, runErrors *[]Error) {
	if err := o.Graph.SyncSymbols(ctx, projectID, symbols); err != nil {
		*runErrors = append(*runErrors, Error{Phase: PhaseSemantic, Err: fmt.Errorf("graph mirror: sync symbols: %w", err)})
		return
	}
	if err := o.Graph.SyncEdges(ctx, projectID, relationships); err != nil {
		*runErrors = append(*runErrors, Error{Phase: PhaseSemantic, Err: fmt.Errorf("graph mirror: sync edges: %w", err)})
	}
}
