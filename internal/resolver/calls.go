package resolver

import (
	"strings"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// callCandidate pairs a resolved symbol id with the score its match earned,
// per spec.md §4.6(d)'s scoring rubric:
//   - base match                          100
//   - symbol is exported                  +30
//   - unqualified call, target is a free function  +20
//   - qualified call, target is a method            +20
//   - method in the caller's own class              +50
//   - target defined in the caller's file           +15
type callCandidate struct {
	id    int64
	score int
}

// resolveCall implements the scored call-resolution strategies: same-class
// method, same-namespace function, standard-library sentinel, global scored
// search, and fuzzy constructor/implicit-this patterns. fromID anchors the
// search in the caller's own scope so "the nearest match wins" over a
// same-named symbol in an unrelated file.
func resolveCall(table *SymbolTable, fromID int64, toName string) (int64, bool) {
	if toName == "" {
		return 0, false
	}

	if isStdlibSentinel(toName) {
		return 0, false
	}

	caller, hasCaller := table.byID[fromID]
	qualified := strings.Contains(toName, ".") || strings.Contains(toName, models.QualifiedNameSeparator)
	member := models.ShortName(strings.ReplaceAll(toName, ".", models.QualifiedNameSeparator))

	var best callCandidate
	found := false

	consider := func(id int64) {
		sym, ok := table.byID[id]
		if !ok || sym.Kind == models.SymbolKindFile || sym.Kind == models.SymbolKindModule || sym.Kind == models.SymbolKindExternalMod {
			return
		}
		if sym.Kind != models.SymbolKindFunction && sym.Kind != models.SymbolKindMethod {
			return
		}

		score := 100
		if sym.IsExported {
			score += 30
		}
		if !qualified && sym.Kind == models.SymbolKindFunction {
			score += 20
		}
		if qualified && sym.Kind == models.SymbolKindMethod {
			score += 20
		}
		if hasCaller && sym.Kind == models.SymbolKindMethod && models.ScopeOf(sym.QualifiedName) == models.ScopeOf(caller.QualifiedName) {
			score += 50 // same-class method: the strongest signal
		}
		if hasCaller && sym.FilePath == caller.FilePath {
			score += 15 // same-namespace/file function
		}

		if !found || score > best.score {
			best = callCandidate{id: id, score: score}
			found = true
		}
	}

	for _, id := range table.byName[member] {
		consider(id)
	}

	if fuzzyID, ok := resolveFuzzyCall(table, fromID, member, hasCaller, caller); ok && !found {
		return fuzzyID, true
	}

	return best.id, found
}

// resolveFuzzyCall covers two patterns that the scored search above misses
// because the callee name doesn't line up with a plain function/method
// lookup: a bare "ClassName()" call meaning "construct ClassName", and an
// implicit-this call to a sibling method inside the same class body.
func resolveFuzzyCall(table *SymbolTable, fromID int64, member string, hasCaller bool, caller models.Symbol) (int64, bool) {
	for _, id := range table.byName[member] {
		sym, ok := table.byID[id]
		if ok && (sym.Kind == models.SymbolKindClass || sym.Kind == models.SymbolKindStruct) {
			ctorName := models.JoinQualified(sym.QualifiedName, sym.Name)
			if id, ok := table.byQualifiedName[ctorName]; ok {
				return id, true
			}
			return id, true // the class symbol itself stands in for its constructor
		}
	}

	if hasCaller {
		scope := models.ScopeOf(caller.QualifiedName)
		if scope != "" {
			candidate := models.JoinQualified(scope, member)
			if id, ok := table.byQualifiedName[candidate]; ok {
				return id, true
			}
		}
	}

	return 0, false
}

// isStdlibSentinel reports whether a call target looks like a standard
// library or runtime builtin that the project will never define a symbol
// for: any name starting with console., Math., JSON., Object. or Array.
// (console.log, Math.max, ...). These are expected
// to go unresolved, not retried against every heuristic below.
func isStdlibSentinel(toName string) bool {
	switch {
	case strings.HasPrefix(toName, "console."):
		return true
	case strings.HasPrefix(toName, "Math."):
		return true
	case strings.HasPrefix(toName, "JSON."):
		return true
	case strings.HasPrefix(toName, "Object."):
		return true
	case strings.HasPrefix(toName, "Array."):
		return true
	default:
		return false
	}
}
