// Command indexer runs one indexing pass over a project tree, per
// spec.md §6's Configuration surface: a project path in, a Result out.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/polyglotdex/polyglotdex/internal/config"
	"github.com/polyglotdex/polyglotdex/internal/embedding"
	"github.com/polyglotdex/polyglotdex/internal/graph"
	"github.com/polyglotdex/polyglotdex/internal/orchestrator"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter/jsts"
	"github.com/polyglotdex/polyglotdex/internal/store"
)

var cfg config.IndexerConfig

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "indexer [project_path]",
		Short: "Index a project's symbols and relationships into the universal symbol store",
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	root.Flags().StringVar(&cfg.ProjectName, "project-name", "", "project name (defaults to the directory's base name)")
	root.Flags().StringSliceVar(&cfg.Languages, "languages", config.DefaultLanguages, "languages to index")
	root.Flags().StringSliceVar(&cfg.FilePatterns, "file-patterns", nil, "include globs (defaults to per-language patterns)")
	root.Flags().StringSliceVar(&cfg.ExcludePatterns, "exclude-patterns", nil, "exclude globs (defaults to dependency/build directories)")
	root.Flags().IntVar(&cfg.Parallelism, "parallelism", 4, "concurrent parser goroutines")
	root.Flags().IntVar(&cfg.FileTimeout, "file-timeout", 0, "per-file parse timeout in seconds (0 disables)")
	root.Flags().IntVar(&cfg.MaxFiles, "max-files", 0, "maximum files to index (0 = unlimited)")
	root.Flags().BoolVar(&cfg.ForceReindex, "force-reindex", false, "ignore the incremental hash gate and re-parse every file")
	root.Flags().BoolVar(&cfg.EnableSemanticAnalysis, "semantic-analysis", true, "run control-flow analysis, embeddings, graph sync, and analytics")
	root.Flags().BoolVar(&cfg.EnablePatternDetection, "pattern-detection", true, "count adapter-detected patterns")
	root.Flags().BoolVar(&cfg.DebugMode, "debug", false, "enable debug-level logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg.ProjectPath = args[0]
	if cfg.ProjectName == "" {
		cfg.ProjectName = config.DefaultIndexerConfig(cfg.ProjectPath).ProjectName
	}

	level := slog.LevelInfo
	if cfg.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, appCfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()
	s := store.New(pool)

	registry := parseradapter.NewRegistry()
	registry.Register(jsts.NewJavaScript())
	registry.Register(jsts.NewTypeScript())

	var graphClient *graph.Client
	if appCfg.Neo4j.URI != "" {
		graphClient, err = graph.NewClient(appCfg.Neo4j)
		if err != nil {
			logger.Warn("graph mirror unavailable, continuing without it", slog.Any("error", err))
			graphClient = nil
		} else {
			defer graphClient.Close(ctx)
		}
	}

	embedder, err := embedding.NewEmbedder(appCfg)
	if err != nil {
		logger.Warn("embedding provider unavailable, continuing without it", slog.Any("error", err))
		embedder = nil
	}

	o := orchestrator.New(s, registry, graphClient, embedder, logger)

	started := time.Now()
	result, err := o.Run(ctx, cfg, func(p orchestrator.Progress) {
		fields := []any{
			slog.String("phase", string(p.Phase)),
			slog.Int("processed", p.ProcessedFiles),
			slog.Int("total", p.TotalFiles),
		}
		if p.CurrentFile != "" {
			fields = append(fields, slog.String("file", p.CurrentFile))
		}
		if p.EstimatedTimeRemaining > 0 {
			fields = append(fields, slog.Duration("eta", p.EstimatedTimeRemaining))
		}
		logger.Info("progress", fields...)
	})
	if err != nil {
		return fmt.Errorf("index run failed after %s: %w", time.Since(started), err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
