package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func TestCrossLangResolveMatchesSpawnByExactPath(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	table := newSymbolTable()
	fileSym := newTestSymbol(alloc, projectID, "entrypoint.py", "entrypoint.py", "entrypoint.py", models.SymbolKindFile, false)
	table.index(fileSym)

	resolver := NewCrossLangResolver(discardLogger())
	rel := parseradapter.RelationshipInfo{
		ToName:        "entrypoint.py",
		Type:          models.RelationshipSpawns,
		CrossLanguage: true,
		BridgeType:    "process_spawn",
	}

	id, ok := resolver.Resolve(table, 0, rel, "javascript")
	require.True(t, ok)
	assert.Equal(t, fileSym.ID, id)
}

func TestCrossLangResolveMatchesSpawnByBasenameIgnoringDir(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	table := newSymbolTable()
	fileSym := newTestSymbol(alloc, projectID, "entrypoint.py", "scripts::entrypoint.py", "scripts/entrypoint.py", models.SymbolKindFile, false)
	table.index(fileSym)

	resolver := NewCrossLangResolver(discardLogger())
	rel := parseradapter.RelationshipInfo{
		ToName:        "entrypoint.py",
		Type:          models.RelationshipSpawns,
		CrossLanguage: true,
		BridgeType:    "process_spawn",
	}

	id, ok := resolver.Resolve(table, 0, rel, "javascript")
	require.True(t, ok)
	assert.Equal(t, fileSym.ID, id)
}

func TestCrossLangResolveMatchesSpawnIgnoringExtension(t *testing.T) {
	alloc := models.NewIDAllocator(0)
	projectID := uuid.New()
	table := newSymbolTable()
	fileSym := newTestSymbol(alloc, projectID, "entrypoint.py", "entrypoint.py", "entrypoint.py", models.SymbolKindFile, false)
	table.index(fileSym)

	resolver := NewCrossLangResolver(discardLogger())
	rel := parseradapter.RelationshipInfo{
		ToName:        "entrypoint",
		Type:          models.RelationshipSpawns,
		CrossLanguage: true,
		BridgeType:    "process_spawn",
	}

	id, ok := resolver.Resolve(table, 0, rel, "javascript")
	require.True(t, ok)
	assert.Equal(t, fileSym.ID, id)
}

func TestCrossLangResolveIgnoresNonCrossLanguageRelationships(t *testing.T) {
	table := newSymbolTable()
	resolver := NewCrossLangResolver(discardLogger())

	rel := parseradapter.RelationshipInfo{ToName: "helper", Type: models.RelationshipCalls}
	_, ok := resolver.Resolve(table, 0, rel, "javascript")
	assert.False(t, ok)
}

func TestCrossLangResolveNoMatchReturnsFalse(t *testing.T) {
	table := newSymbolTable()
	resolver := NewCrossLangResolver(discardLogger())

	rel := parseradapter.RelationshipInfo{
		ToName:        "missing.rb",
		Type:          models.RelationshipSpawns,
		CrossLanguage: true,
		BridgeType:    "process_spawn",
	}

	_, ok := resolver.Resolve(table, 0, rel, "javascript")
	assert.False(t, ok)
}
