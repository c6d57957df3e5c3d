package resolver

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{}, nil))
}

type testWriter struct{}

func (testWriter) Write(p []byte) (int, error) { return len(p), nil }

func newTestSymbol(alloc *models.IDAllocator, projectID uuid.UUID, name, qualified, filePath string, kind models.SymbolKind, exported bool) models.Symbol {
	sym := models.NewSymbol()
	sym.ID = alloc.Next()
	sym.ProjectID = projectID
	sym.LanguageID = "javascript"
	sym.Name = name
	sym.QualifiedName = qualified
	sym.FilePath = filePath
	sym.Kind = kind
	sym.IsDefinition = true
	sym.IsExported = exported
	return sym
}

func TestResolveImportsVirtualFileAndModuleSymbols(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	in := Input{
		ProjectID:  projectID,
		LanguageID: "javascript",
		Files: []FileRelationships{
			{
				FilePath: "src/app.js",
				Language: "javascript",
				Relationships: []parseradapter.RelationshipInfo{
					{FromName: "src/app.js", ToName: "./lib/helper.js", Type: models.RelationshipImports, Confidence: 1.0},
					{FromName: "src/app.js", ToName: "lodash", Type: models.RelationshipImports, Confidence: 1.0},
				},
			},
		},
	}

	out := engine.Resolve(alloc, in)

	require.Len(t, out.VirtualSymbols, 3) // file symbol + 2 module symbols
	require.Len(t, out.Relationships, 2)
	assert.Equal(t, 0, out.Unresolved)

	var kinds []models.SymbolKind
	for _, s := range out.VirtualSymbols {
		kinds = append(kinds, s.Kind)
	}
	assert.Contains(t, kinds, models.SymbolKindFile)
	assert.Contains(t, kinds, models.SymbolKindModule)
	assert.Contains(t, kinds, models.SymbolKindExternalMod)
}

func TestResolveExactQualifiedNameMatch(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "main", "app::main", "app.js", models.SymbolKindFunction, true)
	callee := newTestSymbol(alloc, projectID, "helper", "lib::helper", "lib.js", models.SymbolKindFunction, true)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller, callee},
		Files: []FileRelationships{{
			FilePath: "app.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::main", ToName: "lib::helper", Type: models.RelationshipCalls, Confidence: 0.9},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	require.Len(t, out.Relationships, 1)
	assert.Equal(t, callee.ID, out.Relationships[0].ToSymbolID)
	assert.Equal(t, caller.ID, out.Relationships[0].FromSymbolID)
	assert.InDelta(t, 0.9, out.Relationships[0].Confidence, 0.0001)
}

func TestResolveCallByShortNamePrefersSameClassMethod(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "run", "app::Worker::run", "worker.js", models.SymbolKindMethod, true)
	sibling := newTestSymbol(alloc, projectID, "helper", "app::Worker::helper", "worker.js", models.SymbolKindMethod, false)
	unrelated := newTestSymbol(alloc, projectID, "helper", "other::Thing::helper", "other.js", models.SymbolKindMethod, true)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller, sibling, unrelated},
		Files: []FileRelationships{{
			FilePath: "worker.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::Worker::run", ToName: "this.helper", Type: models.RelationshipCalls, Confidence: 1.0},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	require.Len(t, out.Relationships, 1)
	assert.Equal(t, sibling.ID, out.Relationships[0].ToSymbolID)
}

func TestResolveFieldMemberHeuristic(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "run", "app::Worker::run", "worker.js", models.SymbolKindMethod, true)
	field := newTestSymbol(alloc, projectID, "count", "app::Worker::count", "worker.js", models.SymbolKindField, false)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller, field},
		Files: []FileRelationships{{
			FilePath: "worker.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::Worker::run", ToName: "this.count", Type: models.RelationshipWritesField, Confidence: 1.0},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	require.Len(t, out.Relationships, 1)
	assert.Equal(t, field.ID, out.Relationships[0].ToSymbolID)
}

func TestResolveUnresolvedCallIsDroppedNotErrored(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "main", "app::main", "app.js", models.SymbolKindFunction, true)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller},
		Files: []FileRelationships{{
			FilePath: "app.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::main", ToName: "console.log", Type: models.RelationshipCalls, Confidence: 1.0},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	assert.Empty(t, out.Relationships)
	assert.Equal(t, 1, out.Unresolved)
}

func TestResolveDropsDuplicateEdges(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "main", "app::main", "app.js", models.SymbolKindFunction, true)
	callee := newTestSymbol(alloc, projectID, "helper", "lib::helper", "lib.js", models.SymbolKindFunction, true)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller, callee},
		Files: []FileRelationships{{
			FilePath: "app.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::main", ToName: "lib::helper", Type: models.RelationshipCalls, Confidence: 0.9},
				{FromName: "app::main", ToName: "lib::helper", Type: models.RelationshipCalls, Confidence: 0.9, Line: 12},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	assert.Len(t, out.Relationships, 1)
}

func TestResolveSkipsSelfReference(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	engine := New(discardLogger())

	caller := newTestSymbol(alloc, projectID, "run", "app::run", "app.js", models.SymbolKindFunction, true)

	in := Input{
		ProjectID: projectID,
		Symbols:   []models.Symbol{caller},
		Files: []FileRelationships{{
			FilePath: "app.js",
			Language: "javascript",
			Relationships: []parseradapter.RelationshipInfo{
				{FromName: "app::run", ToName: "app::run", Type: models.RelationshipCalls, Confidence: 1.0},
			},
		}},
	}

	out := engine.Resolve(alloc, in)

	assert.Empty(t, out.Relationships)
}
