// Package resolver binds the unresolved {from_name, to_name, type} edges
// parser adapters emit to symbol ids, per spec.md §4.6. It is the largest
// and hardest component in the pipeline: name resolution across files,
// namespaces, and languages with no global symbol table until this phase
// builds one.
package resolver

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// Engine resolves a project's relationships against its symbol table.
type Engine struct {
	crossLang *CrossLangResolver
	logger    *slog.Logger
}

func New(logger *slog.Logger) *Engine {
	return &Engine{crossLang: NewCrossLangResolver(logger), logger: logger}
}

// Input is everything the resolver needs: the project's already-persisted
// symbols (real ones, with ids assigned during the store phase) and each
// file's raw, unresolved relationships.
type Input struct {
	ProjectID  uuid.UUID
	LanguageID string
	Symbols    []models.Symbol
	Files      []FileRelationships
}

// Output is the resolver's contribution back to the orchestrator: new
// virtual symbols to persist, resolved edges to persist, and a count of
// relationships that could not be bound to any symbol (silently dropped
// per spec.md §7, not an error).
type Output struct {
	VirtualSymbols []models.Symbol
	Relationships  []models.Relationship
	Unresolved     int
}

// Resolve runs the full pipeline: virtual-symbol synthesis, index build,
// import resolution, symbol-to-symbol resolution, and (implicitly)
// cross-language linking, since the table never special-cases language.
func (e *Engine) Resolve(alloc *models.IDAllocator, in Input) Output {
	table := newSymbolTable()
	for _, sym := range in.Symbols {
		table.index(sym)
	}

	virtual := synthesizeVirtualSymbols(alloc, in.ProjectID, in.LanguageID, in.Files, table)

	seen := make(map[models.RelationshipKey]bool)
	var out []models.Relationship
	unresolved := 0

	for _, f := range in.Files {
		fromFileSym, hasFileSym := table.fileSymbol[f.FilePath]

		for _, rel := range f.Relationships {
			if rel.Type == models.RelationshipImports {
				if !hasFileSym {
					unresolved++
					continue
				}
				target, ok := table.moduleSymbol[rel.ToName]
				if !ok {
					unresolved++
					continue
				}
				e.emit(&out, seen, in.ProjectID, fromFileSym, target, rel)
				continue
			}

			fromID, ok := table.byQualifiedName[rel.FromName]
			if !ok {
				ids := table.byName[rel.FromName]
				if len(ids) > 0 {
					fromID = ids[0]
					ok = true
				}
			}
			if !ok {
				unresolved++
				continue
			}

			toID, resolved := e.resolveTarget(table, fromID, rel, f.Language)
			if !resolved {
				unresolved++
				continue
			}
			if toID == fromID {
				continue // self-references are not useful edges
			}
			e.emit(&out, seen, in.ProjectID, fromID, toID, rel)
		}
	}

	e.logger.Debug("relationship resolution complete",
		slog.Int("edges_created", len(out)),
		slog.Int("unresolved", unresolved),
		slog.Int("virtual_symbols", len(virtual)))

	return Output{VirtualSymbols: virtual, Relationships: out, Unresolved: unresolved}
}

func (e *Engine) emit(out *[]models.Relationship, seen map[models.RelationshipKey]bool, projectID uuid.UUID, from, to int64, rel parseradapter.RelationshipInfo) {
	key := models.RelationshipKey{From: from, To: to, Type: rel.Type}
	if seen[key] {
		return // duplicate: silently dropped per spec.md §3/§4.6
	}
	seen[key] = true

	confidence := rel.Confidence
	if confidence <= 0 {
		confidence = 1.0
	}

	*out = append(*out, models.Relationship{
		ID:             uuid.New(),
		ProjectID:      projectID,
		FromSymbolID:   from,
		ToSymbolID:     to,
		Type:           rel.Type,
		Confidence:     confidence,
		ContextLine:    rel.Line,
		ContextSnippet: rel.ContextSnippet,
	})
}

// resolveTarget implements §4.6(d): exact qualified-name match first, then
// the field/member heuristic for field-shaped edges, then the scored
// call-resolution strategies, then cross-language bridging as a last
// resort.
func (e *Engine) resolveTarget(table *SymbolTable, fromID int64, rel parseradapter.RelationshipInfo, sourceLang string) (int64, bool) {
	if id, ok := table.byQualifiedName[rel.ToName]; ok {
		return id, true
	}

	if isFieldRelationship(rel.Type) {
		if id, ok := resolveFieldMember(table, rel.ToName); ok {
			return id, true
		}
	}

	if rel.Type == models.RelationshipCalls {
		if id, ok := resolveCall(table, fromID, rel.ToName); ok {
			return id, true
		}
	}

	if id, ok := e.crossLang.Resolve(table, fromID, rel, sourceLang); ok {
		return id, true
	}

	return 0, false
}

func isFieldRelationship(t models.RelationshipType) bool {
	switch t {
	case models.RelationshipReadsField, models.RelationshipWritesField, models.RelationshipInitializesField:
		return true
	default:
		return false
	}
}

// resolveFieldMember strips to_name to its last "." segment and searches
// for a field symbol whose qualified name ends with "::{member}".
func resolveFieldMember(table *SymbolTable, toName string) (int64, bool) {
	member := toName
	if idx := lastIndexByte(member, '.'); idx >= 0 {
		member = member[idx+1:]
	}
	for _, id := range table.byName[member] {
		sym := table.byID[id]
		if sym.Kind == models.SymbolKindField {
			return id, true
		}
	}
	return 0, false
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}
