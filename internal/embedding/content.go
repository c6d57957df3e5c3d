package embedding

import (
	"fmt"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// BuildEmbeddingText renders a symbol's embedding input text. Different
// symbol kinds get different phrasings to maximize semantic quality,
// mirroring the teacher's per-kind dispatch but over the universal
// SymbolKind set rather than SQL object kinds.
func BuildEmbeddingText(sym models.Symbol) string {
	switch sym.Kind {
	case models.SymbolKindClass, models.SymbolKindStruct, models.SymbolKindInterface:
		text := fmt.Sprintf("%s %s", sym.Kind, sym.QualifiedName)
		return text

	case models.SymbolKindFunction, models.SymbolKindMethod:
		text := fmt.Sprintf("%s %s", sym.Kind, sym.QualifiedName)
		if sym.Signature != "" {
			text += fmt.Sprintf(" %s", sym.Signature)
		}
		if sym.ReturnType != "" {
			text += fmt.Sprintf(" -> %s", sym.ReturnType)
		}
		return text

	case models.SymbolKindField, models.SymbolKindVariable, models.SymbolKindConstant:
		text := fmt.Sprintf("%s %s", sym.Kind, sym.QualifiedName)
		if sym.ReturnType != "" {
			text += fmt.Sprintf(" type %s", sym.ReturnType)
		}
		return text

	case models.SymbolKindModule, models.SymbolKindExternalMod, models.SymbolKindFile:
		return fmt.Sprintf("%s %s", sym.Kind, sym.Name)

	default:
		text := fmt.Sprintf("%s %s", sym.Kind, sym.QualifiedName)
		if sym.Signature != "" {
			text += fmt.Sprintf(": %s", sym.Signature)
		}
		return text
	}
}
