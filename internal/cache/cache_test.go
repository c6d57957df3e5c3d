package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func sym(id int64, name, qn, file string) models.Symbol {
	s := models.NewSymbol()
	s.ID = id
	s.Name = name
	s.QualifiedName = qn
	s.FilePath = file
	return s
}

func TestAddPreservesAccessCountOnReplace(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "foo", "pkg::foo", "a.go"))
	_, ok := c.GetByID(1)
	require.True(t, ok)
	_, ok = c.GetByID(1)
	require.True(t, ok)

	before := c.bySymbolID[1]
	assert.Equal(t, int64(2), before.AccessCount)

	c.Add(sym(1, "foo", "pkg::foo", "a.go")) // replace
	after := c.bySymbolID[1]
	assert.Equal(t, int64(2), after.AccessCount, "access_count must survive replacement")
}

func TestLRUEvictionPicksColdestEntries(t *testing.T) {
	c := New(10)
	for i := int64(1); i <= 10; i++ {
		c.Add(sym(i, "s", "pkg::s"+string(rune('0'+i)), "f.go"))
	}

	for i := int64(1); i <= 5; i++ {
		_, ok := c.GetByID(i)
		require.True(t, ok)
	}

	c.Add(sym(11, "s", "pkg::s11", "f.go"))

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Evictions, "max(1, 10%% of 10) == 1 eviction")
	assert.Equal(t, 10, c.Len())

	for i := int64(1); i <= 5; i++ {
		_, ok := c.GetByID(i)
		assert.True(t, ok, "symbol %d accessed before eviction must survive", i)
	}
}

func TestBloomFilterNegativeLookupShortCircuits(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "alpha", "pkg::alpha", "a.go"))
	c.Add(sym(2, "beta", "pkg::beta", "a.go"))
	c.Add(sym(3, "gamma", "pkg::gamma", "a.go"))

	ResetProbeCount()
	before := ProbeCount()

	_, ok := c.Resolve("zzz", ResolutionContext{})
	assert.False(t, ok)
	assert.Equal(t, int64(1), c.Stats().Misses)
	assert.Equal(t, before, ProbeCount(), "a bloom-filter negative must not probe any index")
}

func TestResolveOrderNamespaceThenImportThenAlias(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "helper", "NsA::helper", "a.go"))
	c.Add(sym(2, "helper", "NsB::helper", "b.go"))
	c.Add(sym(3, "helper", "Aliased::helper", "c.go"))

	sym1, ok := c.Resolve("helper", ResolutionContext{CurrentNamespace: "NsA"})
	require.True(t, ok)
	assert.EqualValues(t, 1, sym1.ID)

	sym2, ok := c.Resolve("helper", ResolutionContext{ImportedNamespaces: []string{"NsB"}})
	require.True(t, ok)
	assert.EqualValues(t, 2, sym2.ID)

	sym3, ok := c.Resolve("helper", ResolutionContext{TypeAliases: map[string]string{"helper": "Aliased::helper"}})
	require.True(t, ok)
	assert.EqualValues(t, 3, sym3.ID)
}

func TestResolveFallsBackToCurrentFileThenFirst(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "util", "A::util", "a.go"))
	c.Add(sym(2, "util", "B::util", "b.go"))

	found, ok := c.Resolve("util", ResolutionContext{CurrentFile: "b.go"})
	require.True(t, ok)
	assert.EqualValues(t, 2, found.ID)

	found, ok = c.Resolve("util", ResolutionContext{CurrentFile: "nowhere.go"})
	require.True(t, ok)
	assert.EqualValues(t, 1, found.ID, "falls back to the first indexed candidate")
}

func TestClearFileThenAddBatchRestoresLookupEquivalence(t *testing.T) {
	c := New(100)
	original := []models.Symbol{
		sym(1, "a", "pkg::a", "f.go"),
		sym(2, "b", "pkg::b", "f.go"),
	}
	c.AddBatch(original)

	c.ClearFile("f.go")
	_, ok := c.GetByID(1)
	assert.False(t, ok)

	c.AddBatch(original)
	for _, want := range original {
		got, ok := c.GetByQualifiedName(want.QualifiedName)
		require.True(t, ok)
		assert.Equal(t, want.Name, got.Name)
	}
}

func TestAddRelationshipMaintainsBothAdjacencyLists(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "caller", "pkg::caller", "f.go"))
	c.Add(sym(2, "callee", "pkg::callee", "f.go"))

	c.AddRelationship(1, 2, RelCalls)

	assert.Equal(t, []int64{2}, c.Callees(1))
	assert.Equal(t, []int64{1}, c.Callers(2))

	// idempotent
	c.AddRelationship(1, 2, RelCalls)
	assert.Equal(t, []int64{2}, c.Callees(1))
}

func TestStatsHitsPlusMissesEqualsLookupCalls(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "a", "pkg::a", "f.go"))

	calls := 0
	_, _ = c.GetByID(1)
	calls++
	_, _ = c.GetByID(999)
	calls++
	_, _ = c.GetByQualifiedName("pkg::a")
	calls++
	_, _ = c.GetByQualifiedName("missing")
	calls++
	_, _ = c.Resolve("a", ResolutionContext{})
	calls++
	_, _ = c.Resolve("zzz", ResolutionContext{})
	calls++

	stats := c.Stats()
	assert.EqualValues(t, calls, stats.Hits+stats.Misses)
}

func TestClearResetsEverything(t *testing.T) {
	c := New(100)
	c.Add(sym(1, "a", "pkg::a", "f.go"))
	c.Clear()

	assert.Equal(t, 0, c.Len())
	_, ok := c.Resolve("a", ResolutionContext{})
	assert.False(t, ok, "post-clear bloom filter must be rebuilt empty")
}
