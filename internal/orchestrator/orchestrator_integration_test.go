//go:build integration

package orchestrator

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/config"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/internal/parseradapter/jsts"
	"github.com/polyglotdex/polyglotdex/internal/store"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Skipf("postgres not available: %v", err)
	}
	if err := pool.Ping(ctx); err != nil {
		t.Skipf("postgres ping failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })
	return store.New(pool)
}

const fixtureSource = `
class CustomerRepository {
  getByID(id) {
    return fetchCustomer(id);
  }
}

function fetchCustomer(id) {
  return null;
}
`

func writeFixtureProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte(fixtureSource), 0o644))
	return dir
}

func TestRun_Integration(t *testing.T) {
	s := setupStore(t)
	projectDir := writeFixtureProject(t)

	registry := parseradapter.NewRegistry()
	registry.Register(jsts.NewJavaScript())

	o := New(s, registry, nil, nil, slog.Default())

	cfg := config.DefaultIndexerConfig(projectDir)
	cfg.ProjectName = "test-orchestrator-" + t.Name()
	cfg.Languages = []string{"javascript"}
	cfg.Parallelism = 2

	ctx := context.Background()
	var events []Progress
	result, err := o.Run(ctx, cfg, func(p Progress) { events = append(events, p) })
	require.NoError(t, err)

	t.Cleanup(func() {
		pool := s.Pool()
		pool.Exec(ctx, "DELETE FROM relationships WHERE project_id = $1", result.ProjectID)
		pool.Exec(ctx, "DELETE FROM symbols WHERE project_id = $1", result.ProjectID)
		pool.Exec(ctx, "DELETE FROM files WHERE project_id = $1", result.ProjectID)
		pool.Exec(ctx, "DELETE FROM project_analytics WHERE project_id = $1", result.ProjectID)
		pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", result.ProjectID)
	})

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.FilesIndexed)
	assert.GreaterOrEqual(t, result.SymbolsFound, 3) // class, method, function
	assert.GreaterOrEqual(t, result.RelationshipsFound, 1)
	assert.NotEmpty(t, events)

	var sawParse, sawStatistics bool
	for _, e := range events {
		if e.Phase == PhaseParse {
			sawParse = true
		}
		if e.Phase == PhaseStatistics {
			sawStatistics = true
		}
	}
	assert.True(t, sawParse)
	assert.True(t, sawStatistics)
}

func TestRun_ForceReindexReparsesUnchangedFile(t *testing.T) {
	s := setupStore(t)
	projectDir := writeFixtureProject(t)

	registry := parseradapter.NewRegistry()
	registry.Register(jsts.NewJavaScript())
	o := New(s, registry, nil, nil, slog.Default())

	cfg := config.DefaultIndexerConfig(projectDir)
	cfg.ProjectName = "test-orchestrator-force-" + t.Name()
	cfg.Languages = []string{"javascript"}

	ctx := context.Background()
	first, err := o.Run(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		pool := s.Pool()
		pool.Exec(ctx, "DELETE FROM relationships WHERE project_id = $1", first.ProjectID)
		pool.Exec(ctx, "DELETE FROM symbols WHERE project_id = $1", first.ProjectID)
		pool.Exec(ctx, "DELETE FROM files WHERE project_id = $1", first.ProjectID)
		pool.Exec(ctx, "DELETE FROM project_analytics WHERE project_id = $1", first.ProjectID)
		pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", first.ProjectID)
	})

	second, err := o.Run(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, second.FilesIndexed, "unchanged file should be skipped by the incremental gate")

	cfg.ForceReindex = true
	third, err := o.Run(ctx, cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.FilesIndexed, "force_reindex should bypass the incremental gate")
}
