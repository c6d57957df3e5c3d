package cfa

// NodeKind is the canonical, language-agnostic set of syntax-tree node
// kinds the analyzer reasons about, per spec.md §4.3.
type NodeKind string

const (
	KindIf         NodeKind = "if_statement"
	KindFor        NodeKind = "for_statement"
	KindWhile      NodeKind = "while_statement"
	KindDo         NodeKind = "do_statement"
	KindSwitch     NodeKind = "switch_statement"
	KindReturn     NodeKind = "return_statement"
	KindThrow      NodeKind = "throw_statement"
	KindCompound   NodeKind = "compound_statement"
	KindTry        NodeKind = "try_statement"
	kindUnknown    NodeKind = ""
)

// nodeTypeTable maps the tree-sitter grammar node type strings this
// analyzer has seen (JavaScript/TypeScript, the reference adapter's
// grammars, per SPEC_FULL.md §4.4) onto the canonical set. Any type not
// present here is "unknown" and the walker recurses into its children
// without affecting complexity, per spec.md §4.3.
var nodeTypeTable = map[string]NodeKind{
	// JS/TS (tree-sitter-javascript / tree-sitter-typescript)
	"if_statement":          KindIf,
	"for_statement":         KindFor,
	"for_in_statement":      KindFor,
	"while_statement":       KindWhile,
	"do_statement":          KindDo,
	"switch_statement":      KindSwitch,
	"return_statement":      KindReturn,
	"throw_statement":       KindThrow,
	"statement_block":       KindCompound,
	"try_statement":         KindTry,

	// generic aliases other grammars in the corpus use for the same shapes
	"if":              KindIf,
	"for":             KindFor,
	"while":           KindWhile,
	"do_while":        KindDo,
	"switch":          KindSwitch,
	"return":          KindReturn,
	"throw":           KindThrow,
	"block":           KindCompound,
	"compound_stmt":   KindCompound,
	"try":             KindTry,
}

// Normalize maps a raw tree-sitter node type to the canonical NodeKind. The
// second return value is false for any type not in the table, signaling the
// walker should recurse into children without treating the node as a
// decision point.
func Normalize(rawType string) (NodeKind, bool) {
	kind, ok := nodeTypeTable[rawType]
	return kind, ok
}
