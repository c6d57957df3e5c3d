package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/polyglotdex/polyglotdex/internal/store"
)

func TestGenerateProjectSummary_Basic(t *testing.T) {
	stats := store.ProjectSymbolStats{
		TotalSymbols:  1000,
		FileCount:     50,
		LanguageCount: 3,
		KindCount:     8,
	}
	langCounts := []store.LanguageCount{
		{Language: "go", Count: 500},
		{Language: "python", Count: 300},
		{Language: "typescript", Count: 200},
	}
	kindCounts := []store.KindCount{
		{Kind: "function", Count: 400},
		{Kind: "class", Count: 200},
		{Kind: "struct", Count: 100},
	}

	summary := generateProjectSummary(stats, langCounts, kindCounts, 2500)

	assert.NotEmpty(t, summary)
	assert.Contains(t, summary, "1000")
	assert.Contains(t, summary, "50")
	assert.Contains(t, summary, "2500")
	assert.Contains(t, summary, "go")
	assert.Contains(t, summary, "function")
}

func TestGenerateProjectSummary_TruncatesAt5Languages(t *testing.T) {
	stats := store.ProjectSymbolStats{TotalSymbols: 100, FileCount: 10}
	langs := make([]store.LanguageCount, 8)
	for i := range langs {
		langs[i] = store.LanguageCount{Language: "lang" + string(rune('A'+i)), Count: 10}
	}

	summary := generateProjectSummary(stats, langs, nil, 100)
	assert.Contains(t, summary, "and 3 more")
}

func TestGenerateProjectSummary_EmptyLanguages(t *testing.T) {
	stats := store.ProjectSymbolStats{TotalSymbols: 0, FileCount: 0}
	summary := generateProjectSummary(stats, nil, nil, 0)
	assert.NotEmpty(t, summary)
}

func TestGenerateProjectSummary_TruncatesAt5Kinds(t *testing.T) {
	stats := store.ProjectSymbolStats{TotalSymbols: 100, FileCount: 10}
	kinds := make([]store.KindCount, 7)
	for i := range kinds {
		kinds[i] = store.KindCount{Kind: "kind" + string(rune('A'+i)), Count: 5}
	}

	summary := generateProjectSummary(stats, nil, kinds, 50)
	assert.Contains(t, summary, "and 2 more")
}
