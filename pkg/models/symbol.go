// Package models defines the universal symbol and relationship data model
// shared by every language parser adapter, the resolution cache, and the
// persistence backend. Nothing in this package is language-specific: parser
// adapters translate their native AST node kinds and qualifiers into these
// types at the adapter boundary.
package models

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SymbolKind is the closed set of symbol kinds the universal model supports.
type SymbolKind string

const (
	SymbolKindFunction      SymbolKind = "function"
	SymbolKindMethod        SymbolKind = "method"
	SymbolKindClass         SymbolKind = "class"
	SymbolKindStruct        SymbolKind = "struct"
	SymbolKindInterface     SymbolKind = "interface"
	SymbolKindNamespace     SymbolKind = "namespace"
	SymbolKindField         SymbolKind = "field"
	SymbolKindVariable      SymbolKind = "variable"
	SymbolKindModule        SymbolKind = "module"
	SymbolKindExternalMod   SymbolKind = "external_module"
	SymbolKindFile          SymbolKind = "file"
	SymbolKindEnum          SymbolKind = "enum"
	SymbolKindTypeAlias     SymbolKind = "type_alias"
	SymbolKindConstant      SymbolKind = "constant"
)

// Visibility mirrors the source-language access modifier, normalized to a
// three-value scale regardless of origin language.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityProtected Visibility = "protected"
	VisibilityPrivate   Visibility = "private"
)

// QualifiedNameSeparator is the canonical segment separator for QualifiedName,
// used regardless of the symbol's source language. Adapters are responsible
// for translating language-native separators ('.', '/', '$') into this form
// before emitting a SymbolInfo (see NormalizeQualifiedName).
const QualifiedNameSeparator = "::"

// StringSet is a deduplicated, lowercase-hyphenated tag set. It marshals as a
// sorted JSON array so API/store output is stable across runs.
type StringSet map[string]struct{}

// NewStringSet builds a StringSet from a slice, collapsing duplicates.
func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Add(v string) { s[v] = struct{}{} }

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Slice returns the tags in sorted order.
func (s StringSet) Slice() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}

// Symbol is the in-memory universal symbol record produced once a parser's
// SymbolInfo has been assigned a project-scoped integer ID by the resolver
// pipeline's index build step. It is the unit stored, cached, and resolved
// against throughout the rest of the system.
//
// ID is monotonic per project (see IDAllocator); StoreRowID is the
// persistence backend's own UUID primary key for the row and is only set
// once the symbol has been durably written.
type Symbol struct {
	ID         int64     `json:"id"`
	StoreRowID uuid.UUID `json:"store_row_id,omitempty"`

	// identity
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	Kind          SymbolKind `json:"kind"`
	LanguageID    string     `json:"language_id"`
	ProjectID     uuid.UUID  `json:"project_id"`

	// location
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	EndLine  int    `json:"end_line"`
	EndCol   int    `json:"end_column"`

	// signature
	Signature  string     `json:"signature,omitempty"`
	ReturnType string     `json:"return_type,omitempty"`
	Visibility Visibility `json:"visibility,omitempty"`

	// semantics
	Namespace         string         `json:"namespace,omitempty"`
	ParentScope       string         `json:"parent_scope,omitempty"`
	IsDefinition      bool           `json:"is_definition"`
	IsExported        bool           `json:"is_exported"`
	IsAsync           bool           `json:"is_async"`
	IsAbstract        bool           `json:"is_abstract"`
	Complexity        int            `json:"complexity"`
	Confidence        float64        `json:"confidence"`
	SemanticTags      StringSet      `json:"semantic_tags,omitempty"`
	LanguageFeatures  map[string]any `json:"language_features,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSymbol applies the model's defaults (confidence defaults to 1.0 per
// spec) to a zero-value Symbol.
func NewSymbol() Symbol {
	return Symbol{
		Confidence:   1.0,
		SemanticTags: NewStringSet(),
		Visibility:   VisibilityPublic,
	}
}

// IsVirtual reports whether this symbol is one of the three synthetic kinds
// the resolver creates rather than a parser-emitted definition.
func (s Symbol) IsVirtual() bool {
	return s.Kind == SymbolKindFile || s.Kind == SymbolKindModule || s.Kind == SymbolKindExternalMod
}

// Project is unique by Name.
type Project struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	RootPath  string    `json:"root_path"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Language is unique by Name.
type Language struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"display_name"`
	Extensions  []string  `json:"extensions"`
	Enabled     bool      `json:"enabled"`
}

// File is a discovered/parsed source file. (ProjectID, FilePath) is unique.
type File struct {
	ID                uuid.UUID  `json:"id"`
	ProjectID         uuid.UUID  `json:"project_id"`
	LanguageID        string     `json:"language_id"`
	FilePath          string     `json:"file_path"`
	FileSize          int64      `json:"file_size"`
	FileHash          string     `json:"file_hash"`
	LastParsed        *time.Time `json:"last_parsed,omitempty"`
	ParseDuration     time.Duration `json:"parse_duration"`
	SymbolCount       int        `json:"symbol_count"`
	RelationshipCount int        `json:"relationship_count"`
	PatternCount      int        `json:"pattern_count"`
	HasErrors         bool       `json:"has_errors"`
}

// NeedsReparse implements spec.md §3's file invariant: a file is re-parsed
// iff its recorded hash differs from the current content hash, or it has
// never been parsed.
func (f File) NeedsReparse(currentHash string) bool {
	return f.LastParsed == nil || f.FileHash != currentHash
}
