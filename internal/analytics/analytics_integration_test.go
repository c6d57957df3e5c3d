//go:build integration

package analytics

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/store"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func setupStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Fatal("TEST_DATABASE_URL not set")
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

// seedTestGraph creates a small graph: a go repository class/method pair
// calling into a python data-access function, two edges.
func seedTestGraph(t *testing.T, s *store.Store) (projectID uuid.UUID, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	proj, err := s.UpsertProject(ctx, "test-analytics-"+t.Name(), "/tmp/test-analytics")
	require.NoError(t, err)

	newSym := func(id int64, name string, lang string, qn string, kind models.SymbolKind, file string) models.Symbol {
		sym := models.NewSymbol()
		sym.ID = id
		sym.ProjectID = proj.ID
		sym.Name = name
		sym.LanguageID = lang
		sym.QualifiedName = qn
		sym.Kind = kind
		sym.FilePath = file
		sym.IsDefinition = true
		return sym
	}

	fetchData := newSym(1, "fetch_customer", "python", "db.fetch_customer", models.SymbolKindFunction, "db.py")
	repo := newSym(2, "CustomerRepository", "go", "app.repository.CustomerRepository", models.SymbolKindStruct, "app.go")
	getByID := newSym(3, "GetByID", "go", "app.repository.CustomerRepository.GetByID", models.SymbolKindMethod, "app.go")

	require.NoError(t, s.BatchInsertSymbols(ctx, []models.Symbol{fetchData, repo, getByID}))

	rels := []models.Relationship{
		{ProjectID: proj.ID, FromSymbolID: getByID.ID, ToSymbolID: fetchData.ID, Type: models.RelationshipCalls, Confidence: 1},
		{ProjectID: proj.ID, FromSymbolID: repo.ID, ToSymbolID: getByID.ID, Type: models.RelationshipUses, Confidence: 1},
	}
	_, err = s.BatchInsertRelationships(ctx, rels)
	require.NoError(t, err)

	cleanup = func() {
		s.Pool().Exec(ctx, "DELETE FROM relationships WHERE project_id = $1", proj.ID)
		s.Pool().Exec(ctx, "DELETE FROM symbols WHERE project_id = $1", proj.ID)
		s.Pool().Exec(ctx, "DELETE FROM project_analytics WHERE project_id = $1", proj.ID)
		s.Pool().Exec(ctx, "DELETE FROM projects WHERE id = $1", proj.ID)
	}

	return proj.ID, cleanup
}

func TestComputeDegrees_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	require.NoError(t, engine.ComputeDegrees(ctx, projID))

	degrees, err := s.GetSymbolDegrees(ctx, projID)
	require.NoError(t, err)
	assert.Len(t, degrees, 3)
}

func TestComputePageRank_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	require.NoError(t, engine.ComputePageRank(ctx, projID))
}

func TestComputeLayers_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	require.NoError(t, engine.ComputeLayers(ctx, projID))

	syms, err := s.ListSymbolsByProject(ctx, projID)
	require.NoError(t, err)
	for _, sym := range syms {
		if sym.Name == "CustomerRepository" {
			assert.Equal(t, LayerData, classifyLayer(sym))
		}
	}
}

func TestComputeProjectSummaries_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	require.NoError(t, engine.ComputeProjectSummaries(ctx, projID))

	stats, err := s.GetProjectSymbolStats(ctx, projID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.TotalSymbols)
}

func TestComputeCrossLanguageBridges_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	require.NoError(t, engine.ComputeCrossLanguageBridges(ctx, projID))

	bridges, err := s.GetCrossLanguageBridges(ctx, projID)
	require.NoError(t, err)
	assert.NotEmpty(t, bridges, "should find a go -> python bridge")
}

func TestComputeAll_Integration(t *testing.T) {
	s := setupStore(t)
	projID, cleanup := seedTestGraph(t, s)
	defer cleanup()

	engine := NewEngine(s, slog.Default())
	ctx := context.Background()

	assert.NoError(t, engine.ComputeAll(ctx, projID))
}
