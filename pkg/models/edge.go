package models

import (
	"time"

	"github.com/google/uuid"
)

// RelationshipType is the closed set of directed edge labels spec.md §3
// defines between two universal symbols.
type RelationshipType string

const (
	RelationshipCalls             RelationshipType = "calls"
	RelationshipInherits          RelationshipType = "inherits"
	RelationshipUses              RelationshipType = "uses"
	RelationshipImports           RelationshipType = "imports"
	RelationshipReadsField        RelationshipType = "reads_field"
	RelationshipWritesField       RelationshipType = "writes_field"
	RelationshipInitializesField  RelationshipType = "initializes_field"
	RelationshipSpawns            RelationshipType = "spawns"
	RelationshipDataFlow          RelationshipType = "data_flow"
	RelationshipOverrides         RelationshipType = "overrides"
)

// Relationship is a directed edge between two universal symbols within the
// same project. (ProjectID, FromSymbolID, ToSymbolID, Type) is unique;
// resolver inserts that would violate this are silently dropped.
type Relationship struct {
	ID             uuid.UUID        `json:"id"`
	ProjectID      uuid.UUID        `json:"project_id"`
	FromSymbolID   int64            `json:"from_symbol_id"`
	ToSymbolID     int64            `json:"to_symbol_id"`
	Type           RelationshipType `json:"type"`
	Confidence     float64          `json:"confidence"`
	ContextLine    int              `json:"context_line,omitempty"`
	ContextSnippet string           `json:"context_snippet,omitempty"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}

// Key returns the tuple that defines relationship uniqueness within a project.
func (r Relationship) Key() RelationshipKey {
	return RelationshipKey{From: r.FromSymbolID, To: r.ToSymbolID, Type: r.Type}
}

// RelationshipKey is the (from, to, type) uniqueness tuple, used by the
// resolver and cache to deduplicate edges without round-tripping to the
// store.
type RelationshipKey struct {
	From int64
	To   int64
	Type RelationshipType
}

// SymbolCall is a resolved call site: a caller symbol invoking a named
// target, with the callee bound when resolution succeeded.
type SymbolCall struct {
	CallerID      int64  `json:"caller_id"`
	CalleeID      *int64 `json:"callee_id,omitempty"`
	TargetFunction string `json:"target_function"`
	Line          int    `json:"line"`
	Column        int    `json:"column"`
	CallType      string `json:"call_type"`
	IsConditional bool   `json:"is_conditional"`
	IsRecursive   bool   `json:"is_recursive"`
}

// DetectedPattern groups a set of related symbols discovered by semantic
// analysis (e.g. a singleton, a repository pattern, a God-object smell).
type DetectedPattern struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Name       string    `json:"name"`
	Scope      string    `json:"scope"`
	SymbolIDs  []int64   `json:"symbol_ids"`
	Confidence float64   `json:"confidence"`
}
