package resolver

import (
	"path/filepath"
	"strings"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// SymbolTable indexes every symbol in a project (real and virtual) for the
// resolution pipeline, per spec.md §4.6(b).
type SymbolTable struct {
	byID            map[int64]models.Symbol
	byQualifiedName map[string]int64
	byName          map[string][]int64
	byFile          map[string][]int64 // file path -> symbol ids defined there
	byFileBaseName  map[string][]int64 // bare file-name bucket, tie-broken on lookup

	fileSymbol   map[string]int64 // file path -> synthetic "file" symbol id
	moduleSymbol map[string]int64 // import target name -> module/external_module symbol id
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{
		byID:            make(map[int64]models.Symbol),
		byQualifiedName: make(map[string]int64),
		byName:          make(map[string][]int64),
		byFile:          make(map[string][]int64),
		byFileBaseName:  make(map[string][]int64),
		fileSymbol:      make(map[string]int64),
		moduleSymbol:    make(map[string]int64),
	}
}

// index adds one symbol to every lookup map that applies to it, per §4.6(b).
func (t *SymbolTable) index(sym models.Symbol) {
	t.byID[sym.ID] = sym
	if sym.QualifiedName != "" {
		t.byQualifiedName[sym.QualifiedName] = sym.ID
	}
	if sym.Name != "" {
		t.byName[sym.Name] = appendUniqueID(t.byName[sym.Name], sym.ID)
	}
	if sym.FilePath != "" {
		t.byFile[sym.FilePath] = appendUniqueID(t.byFile[sym.FilePath], sym.ID)
	}

	if isFileRepresentative(sym) {
		base := baseNameNoExt(sym.FilePath)
		if base != "" {
			t.byFileBaseName[base] = appendUniqueID(t.byFileBaseName[base], sym.ID)
		}
	}

	switch sym.Kind {
	case models.SymbolKindFile:
		t.fileSymbol[sym.FilePath] = sym.ID
	case models.SymbolKindModule, models.SymbolKindExternalMod:
		t.moduleSymbol[sym.Name] = sym.ID
	}
}

func appendUniqueID(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

// isFileRepresentative flags symbols eligible for the bare-file-name
// lookup bucket: classes and exported top-level definitions are the
// typical "this file's main export" candidates.
func isFileRepresentative(sym models.Symbol) bool {
	switch sym.Kind {
	case models.SymbolKindClass, models.SymbolKindStruct, models.SymbolKindInterface, models.SymbolKindFunction:
		return sym.IsDefinition
	default:
		return false
	}
}

func baseNameNoExt(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// fileRepresentative picks the best candidate from the bare-file-name
// bucket per §4.6(b)'s tie-break rules: classes outrank functions,
// exported outranks non-exported, naming-convention matches are
// preferred. Ties are broken by the first rule that discriminates.
func (t *SymbolTable) fileRepresentative(baseName string) (models.Symbol, bool) {
	ids := t.byFileBaseName[baseName]
	if len(ids) == 0 {
		return models.Symbol{}, false
	}

	best := t.byID[ids[0]]
	for _, id := range ids[1:] {
		cand := t.byID[id]
		if representativeScore(cand, baseName) > representativeScore(best, baseName) {
			best = cand
		}
	}
	return best, true
}

func representativeScore(sym models.Symbol, baseName string) int {
	score := 0
	if sym.Kind == models.SymbolKindClass || sym.Kind == models.SymbolKindStruct || sym.Kind == models.SymbolKindInterface {
		score += 100
	}
	if sym.IsExported {
		score += 30
	}
	if matchesNamingConvention(sym.Name, baseName) {
		score += 10
	}
	return score
}

// matchesNamingConvention checks the snake_case-file/PascalCase-class
// convention §4.6(b) names explicitly (e.g. user_service.py ↔ UserService).
func matchesNamingConvention(symbolName, baseName string) bool {
	return strings.EqualFold(toPascalCase(baseName), symbolName)
}

func toPascalCase(snake string) string {
	parts := strings.FieldsFunc(snake, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// isExternalImport reports whether an import target name refers to an
// external package rather than a same-project relative file, per §4.6(a).
func isExternalImport(target string) bool {
	return !strings.HasPrefix(target, "./") && !strings.HasPrefix(target, "../") && !strings.HasPrefix(target, "/")
}
