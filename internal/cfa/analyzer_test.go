package cfa

import (
	"context"
	"testing"
	"time"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

func parseJS(t *testing.T, src string) *sitter.Node {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(javascript.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	return tree.RootNode()
}

func findFunctionBody(t *testing.T, root *sitter.Node) *sitter.Node {
	t.Helper()
	var body *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil || body != nil {
			return
		}
		if n.Type() == "statement_block" && n.Parent() != nil && n.Parent().Type() == "function_declaration" {
			body = n
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	require.NotNil(t, body, "expected to find a function body")
	return body
}

func TestAnalyzeTreeComplexityIfElseAndWhile(t *testing.T) {
	src := `
function example(x) {
  if (x > 0) {
    doThing();
  } else {
    doOther();
  }
  while (x > 0) {
    x--;
  }
}
`
	root := parseJS(t, src)
	body := findFunctionBody(t, root)

	a := New()
	cfg := a.AnalyzeTree(1, body, 2, 10)

	assert.Equal(t, 4, cfg.Complexity, "1 base + if + else + while == 4")
	assert.False(t, cfg.Degraded)
	assert.Len(t, cfg.Conditionals, 1)
	assert.Len(t, cfg.Loops, 1)
	assert.NotEmpty(t, cfg.ExitBlocks)
}

func TestAnalyzeTreeNilBodyProducesDirectEntryToExit(t *testing.T) {
	a := New()
	cfg := a.AnalyzeTree(1, nil, 1, 1)
	assert.Equal(t, 1, cfg.Complexity)
	assert.Len(t, cfg.Blocks, 3) // entry, basic, exit
	assert.Len(t, cfg.Edges, 2)
}

func TestAnalyzeTreeTimeoutFallsBackToMinimalCFG(t *testing.T) {
	src := `
function example(x) {
  if (x > 0) {
    doThing();
  }
}
`
	root := parseJS(t, src)
	body := findFunctionBody(t, root)

	a := &Analyzer{Budget: -1 * time.Second}
	cfg := a.AnalyzeTree(7, body, 2, 6)

	want := models.MinimalCFG(7, 2, 6)
	assert.Equal(t, want, cfg)
}

func TestAnalyzeSourcePatternModeDegraded(t *testing.T) {
	src := "function f(x) {\n" +
		"  if (x > 0) {\n" +
		"    doThing();\n" +
		"  }\n" +
		"  for (let i = 0; i < x; i++) {\n" +
		"    doOther();\n" +
		"  }\n" +
		"}\n"

	a := New()
	cfg := a.AnalyzeSource(2, src, 1, 8)

	assert.True(t, cfg.Degraded)
	assert.Equal(t, 3, cfg.Complexity, "base 1 + if + for")
	assert.NotEmpty(t, cfg.ExitBlocks)
}

func TestAnalyzeTreeUnknownNodeRecursesWithoutComplexity(t *testing.T) {
	src := `
function example(x) {
  const y = x + 1;
  return y;
}
`
	root := parseJS(t, src)
	body := findFunctionBody(t, root)

	a := New()
	cfg := a.AnalyzeTree(3, body, 2, 5)

	assert.Equal(t, 1, cfg.Complexity, "no decision points: complexity stays at the seed value")
}
