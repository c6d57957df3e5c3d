package resolver

import (
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
)

// BridgeRule describes one way of matching a cross-language relationship's
// to_name against the symbol table, per spec.md §4.6(e). Rules are tried in
// order; the first match wins.
type BridgeRule struct {
	BridgeType    string // e.g. "process_spawn"
	MatchStrategy string // exact_path, basename, strip_extension
}

// CrossLangResolver resolves relationships an adapter already flagged as
// crossing a language boundary (RelationshipInfo.CrossLanguage), such as a
// JS/TS spawn() call naming another language's entrypoint file.
type CrossLangResolver struct {
	rules  []BridgeRule
	logger *slog.Logger
}

func NewCrossLangResolver(logger *slog.Logger) *CrossLangResolver {
	c := &CrossLangResolver{logger: logger}
	c.RegisterDefaultRules()
	return c
}

// RegisterDefaultRules sets up the default bridge rules: process spawns are
// matched against the indexed file symbols by path, then by bare file name,
// then by name ignoring extension (a spawn of "entrypoint" should still
// find "entrypoint.py").
func (c *CrossLangResolver) RegisterDefaultRules() {
	c.rules = []BridgeRule{
		{BridgeType: "process_spawn", MatchStrategy: "exact_path"},
		{BridgeType: "process_spawn", MatchStrategy: "basename"},
		{BridgeType: "process_spawn", MatchStrategy: "strip_extension"},
	}
}

// Resolve only handles relationships the adapter marked CrossLanguage; it
// never second-guesses same-language calls. fromID is unused by the default
// rules but kept in the signature so a future rule can scope the search to
// the caller's own directory.
func (c *CrossLangResolver) Resolve(table *SymbolTable, fromID int64, rel parseradapter.RelationshipInfo, sourceLang string) (int64, bool) {
	if !rel.CrossLanguage || rel.ToName == "" {
		return 0, false
	}

	for _, rule := range c.rules {
		if rule.BridgeType != rel.BridgeType {
			continue
		}

		switch rule.MatchStrategy {
		case "exact_path":
			if id, ok := table.fileSymbol[rel.ToName]; ok {
				return id, true
			}

		case "basename":
			target := filepath.Base(rel.ToName)
			for path, id := range table.fileSymbol {
				if filepath.Base(path) == target {
					return id, true
				}
			}

		case "strip_extension":
			target := strings.TrimSuffix(filepath.Base(rel.ToName), filepath.Ext(rel.ToName))
			for path, id := range table.fileSymbol {
				base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				if strings.EqualFold(base, target) {
					return id, true
				}
			}
		}
	}

	if id, ok := table.fileRepresentative(baseNameNoExt(rel.ToName)); ok {
		return id, true
	}

	return 0, false
}
