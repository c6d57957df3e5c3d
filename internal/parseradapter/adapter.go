// Package parseradapter defines the contract between the indexer and
// per-language parsers, per spec.md §6 "Parser Adapter". Concrete language
// support lives in sibling packages (e.g. parseradapter/jsts); this package
// only specifies the shape adapters must satisfy.
package parseradapter

import "github.com/polyglotdex/polyglotdex/pkg/models"

// Adapter is implemented once per supported language.
type Adapter interface {
	// Initialize prepares the adapter (e.g. compiling a tree-sitter
	// grammar). Called once before any Parse call.
	Initialize() error

	// Languages returns the language identifiers this adapter handles
	// (matching models.Language.Name values).
	Languages() []string

	// Extensions returns the file extensions (including the leading dot,
	// lowercase) this adapter claims.
	Extensions() []string

	// Parse extracts symbols and unresolved relationships from a single
	// file's content. It must not fail on malformed input: partial or
	// empty results with a non-nil error are both acceptable, but the
	// dispatcher treats a returned error as a per-file parse error
	// (spec.md §7) rather than aborting the run.
	Parse(input FileInput) (ParseOutput, error)
}

// FileInput is the unit of work handed to an adapter.
type FileInput struct {
	Path     string
	Content  []byte
	Language string
}

// SymbolInfo mirrors §3's Universal Symbol, minus `id` (assigned later by
// the orchestrator's IDAllocator once the symbol is accepted into the
// project's symbol table).
type SymbolInfo struct {
	Name          string
	QualifiedName string
	Kind          models.SymbolKind
	Language      string

	Line     int
	Column   int
	EndLine  int
	EndCol   int

	Signature  string
	ReturnType string
	Visibility models.Visibility

	Namespace    string
	ParentScope  string
	IsDefinition bool
	IsExported   bool
	IsAsync      bool
	IsAbstract   bool
	Complexity   int
	Confidence   float64

	SemanticTags     []string
	LanguageFeatures map[string]any
}

// RelationshipInfo is an unresolved edge an adapter observed: names, not
// symbol ids, because the adapter only sees one file at a time. Names are
// adapter-normalized per spec.md §4.1 before the resolver ever sees them.
type RelationshipInfo struct {
	FromName      string
	ToName        string
	Type          models.RelationshipType
	Confidence    float64
	Line          int
	Column        int
	ContextSnippet string
	SourceText     string
	CrossLanguage  bool
	BridgeType     string
}

// PatternInfo is an adapter-detected pattern candidate, fed into the
// orchestrator's semantic-analysis phase alongside resolver-derived
// patterns.
type PatternInfo struct {
	Name       string
	Scope      string
	SymbolRefs []string // qualified names, resolved to ids downstream
	Confidence float64
}

// ControlFlowData carries an adapter's own control-flow extraction, when it
// has one; adapters without native CFG support leave this nil and the
// orchestrator falls back to internal/cfa against the adapter's syntax
// tree, if any was returned via SemanticIntelligence.
type ControlFlowData struct {
	SymbolQualifiedName string
	Blocks              []models.CFGBlock
	Calls               []models.SymbolCall
}

// SemanticIntelligence optionally carries the parsed syntax tree and raw
// source so downstream tree-mode analysis (internal/cfa) can run without
// re-parsing.
type SemanticIntelligence struct {
	Tree       any // concrete type is *sitter.Node for tree-sitter-backed adapters
	SourceCode []byte
}

// ParseOutput is one file's complete extraction result.
type ParseOutput struct {
	Symbols          []SymbolInfo
	Relationships    []RelationshipInfo
	Patterns         []PatternInfo
	ControlFlowData  []ControlFlowData
	Semantic         *SemanticIntelligence
}
