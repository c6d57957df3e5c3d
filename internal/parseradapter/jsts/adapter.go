// Package jsts is the reference Language Parser Adapter implementation,
// covering JavaScript and TypeScript via tree-sitter. spec.md §1 marks
// parser adapters as out of scope beyond their interface, but the
// orchestrator and control-flow analyzer need a real one to run against.
package jsts

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/polyglotdex/polyglotdex/internal/parseradapter"
	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// Adapter implements parseradapter.Adapter for JavaScript and TypeScript.
type Adapter struct {
	tsParser *sitter.Parser
	lang     string // "javascript" or "typescript"
}

// NewJavaScript returns an adapter bound to the JavaScript grammar.
func NewJavaScript() *Adapter {
	p := sitter.NewParser()
	p.SetLanguage(javascript.GetLanguage())
	return &Adapter{tsParser: p, lang: "javascript"}
}

// NewTypeScript returns an adapter bound to the TypeScript grammar.
func NewTypeScript() *Adapter {
	p := sitter.NewParser()
	p.SetLanguage(typescript.GetLanguage())
	return &Adapter{tsParser: p, lang: "typescript"}
}

func (a *Adapter) Initialize() error { return nil }

func (a *Adapter) Languages() []string { return []string{a.lang} }

func (a *Adapter) Extensions() []string {
	if a.lang == "typescript" {
		return []string{".ts", ".tsx"}
	}
	return []string{".js", ".jsx", ".mjs", ".cjs"}
}

func (a *Adapter) Parse(input parseradapter.FileInput) (parseradapter.ParseOutput, error) {
	tree, err := a.tsParser.ParseCtx(context.Background(), nil, input.Content)
	if err != nil {
		return parseradapter.ParseOutput{}, fmt.Errorf("jsts: parse %s: %w", input.Path, err)
	}

	root := tree.RootNode()
	var symbols []parseradapter.SymbolInfo
	var rels []parseradapter.RelationshipInfo

	for i := 0; i < int(root.ChildCount()); i++ {
		syms, rfs := a.extractTopLevel(root.Child(i), input.Content, "")
		symbols = append(symbols, syms...)
		rels = append(rels, rfs...)
	}

	rels = append(rels, a.extractSpawnCalls(root, input.Content, symbols)...)

	return parseradapter.ParseOutput{
		Symbols:       symbols,
		Relationships: rels,
		Semantic: &parseradapter.SemanticIntelligence{
			Tree:       root,
			SourceCode: input.Content,
		},
	}, nil
}

func (a *Adapter) extractTopLevel(node *sitter.Node, src []byte, scope string) ([]parseradapter.SymbolInfo, []parseradapter.RelationshipInfo) {
	if node == nil {
		return nil, nil
	}
	switch node.Type() {
	case "function_declaration":
		return []parseradapter.SymbolInfo{a.extractFunctionDecl(node, src, scope)}, nil

	case "class_declaration":
		return a.extractClassDecl(node, src, scope)

	case "import_statement":
		return nil, a.extractImportStatement(node, src)

	case "expression_statement":
		return nil, a.extractRequireCalls(node, src)
	}
	return nil, nil
}

func (a *Adapter) extractFunctionDecl(node *sitter.Node, src []byte, scope string) parseradapter.SymbolInfo {
	name := ""
	sig := ""
	isAsync := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier":
			if name == "" {
				name = child.Content(src)
			}
		case "formal_parameters":
			sig = child.Content(src)
		case "async":
			isAsync = true
		}
	}

	return parseradapter.SymbolInfo{
		Name:          name,
		QualifiedName: models.JoinQualified(scope, name),
		Kind:          models.SymbolKindFunction,
		Language:      a.lang,
		Line:          line(node),
		EndLine:       endLine(node),
		Signature:     sig,
		IsDefinition:  true,
		IsExported:    isIdentifierExported(name),
		IsAsync:       isAsync,
		Confidence:    1.0,
	}
}

func (a *Adapter) extractClassDecl(node *sitter.Node, src []byte, scope string) ([]parseradapter.SymbolInfo, []parseradapter.RelationshipInfo) {
	name := ""
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == "identifier" || child.Type() == "type_identifier" {
			name = child.Content(src)
			break
		}
	}
	if name == "" {
		return nil, nil
	}

	qname := models.JoinQualified(scope, name)
	symbols := []parseradapter.SymbolInfo{{
		Name:          name,
		QualifiedName: qname,
		Kind:          models.SymbolKindClass,
		Language:      a.lang,
		Line:          line(node),
		EndLine:       endLine(node),
		IsDefinition:  true,
		IsExported:    isIdentifierExported(name),
		Confidence:    1.0,
	}}

	var rels []parseradapter.RelationshipInfo
	if heritage := findChild(node, "class_heritage"); heritage != nil {
		rels = append(rels, a.extractHeritage(heritage, src, qname)...)
	}
	if body := findChild(node, "class_body"); body != nil {
		memberSyms, memberRels := a.extractClassMembers(body, src, qname)
		symbols = append(symbols, memberSyms...)
		rels = append(rels, memberRels...)
	}

	return symbols, rels
}

func (a *Adapter) extractHeritage(node *sitter.Node, src []byte, fromQName string) []parseradapter.RelationshipInfo {
	var rels []parseradapter.RelationshipInfo
	ln := line(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "identifier", "member_expression":
			rels = append(rels, parseradapter.RelationshipInfo{
				FromName:   fromQName,
				ToName:     child.Content(src),
				Type:       models.RelationshipInherits,
				Confidence: 0.9,
				Line:       ln,
			})
		case "extends_clause", "implements_clause":
			for j := 0; j < int(child.ChildCount()); j++ {
				gc := child.Child(j)
				if gc.Type() == "identifier" || gc.Type() == "type_identifier" {
					rels = append(rels, parseradapter.RelationshipInfo{
						FromName:   fromQName,
						ToName:     gc.Content(src),
						Type:       models.RelationshipInherits,
						Confidence: 0.9,
						Line:       ln,
					})
				}
			}
		}
	}
	return rels
}

func (a *Adapter) extractClassMembers(body *sitter.Node, src []byte, classQName string) ([]parseradapter.SymbolInfo, []parseradapter.RelationshipInfo) {
	var symbols []parseradapter.SymbolInfo
	var rels []parseradapter.RelationshipInfo

	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child.Type() != "method_definition" {
			continue
		}
		name := ""
		sig := ""
		isAsync := false
		for j := 0; j < int(child.ChildCount()); j++ {
			gc := child.Child(j)
			switch gc.Type() {
			case "property_identifier":
				if name == "" {
					name = gc.Content(src)
				}
			case "formal_parameters":
				sig = gc.Content(src)
			case "async":
				isAsync = true
			}
		}
		if name == "" {
			continue
		}
		qname := models.JoinQualified(classQName, name)
		symbols = append(symbols, parseradapter.SymbolInfo{
			Name:          name,
			QualifiedName: qname,
			Kind:          models.SymbolKindMethod,
			Language:      a.lang,
			Line:          line(child),
			EndLine:       endLine(child),
			Signature:     sig,
			ParentScope:   classQName,
			IsDefinition:  true,
			IsAsync:       isAsync,
			Confidence:    1.0,
		})
		rels = append(rels, a.extractCalls(child, src, qname)...)
	}
	return symbols, rels
}

// extractCalls walks a method/function body and emits an unresolved
// "calls" relationship for each direct or member call expression it finds.
func (a *Adapter) extractCalls(node *sitter.Node, src []byte, fromQName string) []parseradapter.RelationshipInfo {
	var rels []parseradapter.RelationshipInfo
	walk(node, func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		target := callTargetName(n, src)
		if target == "" {
			return
		}
		rels = append(rels, parseradapter.RelationshipInfo{
			FromName:   fromQName,
			ToName:     target,
			Type:       models.RelationshipCalls,
			Confidence: 0.8,
			Line:       line(n),
			SourceText: n.Content(src),
		})
	})
	return rels
}

// extractSpawnCalls finds child_process.spawn/exec-style calls anywhere in
// the tree and emits a cross-language "spawns" relationship candidate,
// grounded on the teacher's cross-language bridge detection.
func (a *Adapter) extractSpawnCalls(root *sitter.Node, src []byte, symbols []parseradapter.SymbolInfo) []parseradapter.RelationshipInfo {
	var rels []parseradapter.RelationshipInfo
	walk(root, func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		target := callTargetName(n, src)
		if target != "spawn" && target != "exec" && target != "execFile" {
			return
		}
		args := findChild(n, "arguments")
		if args == nil {
			return
		}
		script := extractFirstString(args, src)
		if script == "" {
			return
		}
		rels = append(rels, parseradapter.RelationshipInfo{
			FromName:      enclosingScope(root, line(n), symbols),
			ToName:        script,
			Type:          models.RelationshipSpawns,
			Confidence:    0.6,
			Line:          line(n),
			CrossLanguage: true,
			BridgeType:    "process_spawn",
		})
	})
	return rels
}

func (a *Adapter) extractImportStatement(node *sitter.Node, src []byte) []parseradapter.RelationshipInfo {
	str := findChild(node, "string")
	if str == nil {
		return nil
	}
	source := stringContent(str, src)
	if source == "" {
		return nil
	}
	return []parseradapter.RelationshipInfo{{
		ToName:     source,
		Type:       models.RelationshipImports,
		Confidence: 1.0,
		Line:       line(node),
	}}
}

func (a *Adapter) extractRequireCalls(node *sitter.Node, src []byte) []parseradapter.RelationshipInfo {
	var rels []parseradapter.RelationshipInfo
	walk(node, func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		fn := findChild(n, "identifier")
		if fn == nil || fn.Content(src) != "require" {
			return
		}
		args := findChild(n, "arguments")
		if args == nil {
			return
		}
		s := extractFirstString(args, src)
		if s == "" {
			return
		}
		rels = append(rels, parseradapter.RelationshipInfo{
			ToName:     s,
			Type:       models.RelationshipImports,
			Confidence: 1.0,
			Line:       line(n),
		})
	})
	return rels
}

// --- small tree helpers ---

func line(n *sitter.Node) int    { return int(n.StartPoint().Row) + 1 }
func endLine(n *sitter.Node) int { return int(n.EndPoint().Row) + 1 }

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c.Type() == nodeType {
			return c
		}
	}
	return nil
}

func walk(node *sitter.Node, fn func(*sitter.Node)) {
	if node == nil {
		return
	}
	fn(node)
	for i := 0; i < int(node.ChildCount()); i++ {
		walk(node.Child(i), fn)
	}
}

func stringContent(n *sitter.Node, src []byte) string {
	content := n.Content(src)
	if len(content) >= 2 {
		return content[1 : len(content)-1]
	}
	return content
}

func extractFirstString(args *sitter.Node, src []byte) string {
	for i := 0; i < int(args.ChildCount()); i++ {
		c := args.Child(i)
		if c.Type() == "string" {
			return stringContent(c, src)
		}
	}
	return ""
}

func callTargetName(node *sitter.Node, src []byte) string {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		switch c.Type() {
		case "identifier":
			return c.Content(src)
		case "member_expression":
			if prop := findChild(c, "property_identifier"); prop != nil {
				return prop.Content(src)
			}
			return c.Content(src)
		}
	}
	return ""
}

func enclosingScope(root *sitter.Node, atLine int, symbols []parseradapter.SymbolInfo) string {
	best := ""
	bestLine := -1
	for _, s := range symbols {
		if s.Line <= atLine && s.EndLine >= atLine && s.Line > bestLine {
			best = s.QualifiedName
			bestLine = s.Line
		}
	}
	return best
}

func isIdentifierExported(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
