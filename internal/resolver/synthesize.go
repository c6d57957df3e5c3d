package resolver

import (
	"github.com/google/uuid"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// FileRelationships is one file's unresolved relationships as emitted by a
// parser adapter, plus enough context to place them in the project.
type FileRelationships struct {
	FilePath      string
	Language      string
	Relationships []parseradapter.RelationshipInfo
}

// synthesizeVirtualSymbols implements spec.md §4.6(a): one file-kind
// symbol per indexed file, one module/external_module symbol per distinct
// import target name. It returns only the newly created symbols; callers
// persist them alongside the real ones.
func synthesizeVirtualSymbols(alloc *models.IDAllocator, projectID uuid.UUID, languageID string, files []FileRelationships, existing *SymbolTable) []models.Symbol {
	var created []models.Symbol

	for _, f := range files {
		if _, ok := existing.fileSymbol[f.FilePath]; ok {
			continue
		}
		sym := newVirtualSymbol(alloc, projectID, languageID, f.FilePath, f.FilePath, models.SymbolKindFile)
		existing.index(sym)
		created = append(created, sym)
	}

	seen := map[string]bool{}
	for _, f := range files {
		for _, rel := range f.Relationships {
			if rel.Type != models.RelationshipImports || rel.ToName == "" {
				continue
			}
			target := rel.ToName
			if seen[target] {
				continue
			}
			seen[target] = true
			if _, ok := existing.moduleSymbol[target]; ok {
				continue
			}

			kind := models.SymbolKindModule
			if isExternalImport(target) {
				kind = models.SymbolKindExternalMod
			}
			sym := newVirtualSymbol(alloc, projectID, languageID, target, "", kind)
			existing.index(sym)
			created = append(created, sym)
		}
	}

	return created
}

func newVirtualSymbol(alloc *models.IDAllocator, projectID uuid.UUID, languageID string, name, filePath string, kind models.SymbolKind) models.Symbol {
	sym := models.NewSymbol()
	sym.ID = alloc.Next()
	sym.ProjectID = projectID
	sym.LanguageID = languageID
	sym.Name = name
	sym.QualifiedName = models.NormalizeQualifiedName(name)
	sym.Kind = kind
	sym.FilePath = filePath
	sym.IsDefinition = true
	sym.Confidence = 1.0
	return sym
}
