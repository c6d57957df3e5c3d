package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSymbolDefaults(t *testing.T) {
	s := NewSymbol()
	assert.Equal(t, 1.0, s.Confidence)
	assert.Equal(t, VisibilityPublic, s.Visibility)
	assert.NotNil(t, s.SemanticTags)
}

func TestStringSetCollapsesDuplicates(t *testing.T) {
	s := NewStringSet("singleton", "singleton", "god-object")
	assert.Len(t, s, 2)
	assert.ElementsMatch(t, []string{"god-object", "singleton"}, s.Slice())
}

func TestNormalizeQualifiedName(t *testing.T) {
	cases := map[string]string{
		"pkg.Module.Class.method": "pkg::Module::Class::method",
		"a/b/c":                   "a::b::c",
		"Foo$Bar":                 "Foo::Bar",
		"already::canonical":      "already::canonical",
		"a..b":                    "a::b",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeQualifiedName(in), "input=%q", in)
	}
}

func TestShortNameAndScopeOf(t *testing.T) {
	qn := "pkg::Module::Class::method"
	assert.Equal(t, "method", ShortName(qn))
	assert.Equal(t, "pkg::Module::Class", ScopeOf(qn))
	assert.Equal(t, "", ScopeOf("bareName"))
}

func TestJoinQualifiedSkipsEmpty(t *testing.T) {
	assert.Equal(t, "pkg::Class", JoinQualified("pkg", "", "Class"))
}

func TestIDAllocatorMonotonicAndSeeded(t *testing.T) {
	a := NewIDAllocator(41)
	require.Equal(t, int64(42), a.Next())
	require.Equal(t, int64(43), a.Next())
	assert.Equal(t, int64(43), a.Peek())
}

func TestFileNeedsReparse(t *testing.T) {
	f := File{FileHash: "abc"}
	assert.True(t, f.NeedsReparse("abc")) // never parsed

	now := time.Now()
	f.LastParsed = &now
	assert.False(t, f.NeedsReparse("abc"))
	assert.True(t, f.NeedsReparse("def"))
}

func TestSymbolIsVirtual(t *testing.T) {
	assert.True(t, Symbol{Kind: SymbolKindFile}.IsVirtual())
	assert.True(t, Symbol{Kind: SymbolKindModule}.IsVirtual())
	assert.True(t, Symbol{Kind: SymbolKindExternalMod}.IsVirtual())
	assert.False(t, Symbol{Kind: SymbolKindFunction}.IsVirtual())
}
