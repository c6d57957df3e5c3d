package cfa

import (
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// pendingEdge records a return/throw block that must be wired to the exit
// block once it exists (the exit block is only synthesized after the whole
// body has been walked).
type pendingEdge struct {
	block    int
	edgeType models.CFGEdgeType
}

// builder accumulates blocks/edges while walking one function body. nil
// receiver methods are never called; it always starts from newBuilder.
type builder struct {
	symbolID int64
	blocks   []models.CFGBlock
	edges    []models.CFGEdge
	loops    []models.LoopRecord
	conditionals []models.ConditionalRecord
	complexity int

	entryBlock      int
	exitBlocks      []int
	pendingTerminal []pendingEdge

	nextID   int
	timedOut bool
}

func newBuilder(symbolID int64) *builder {
	return &builder{symbolID: symbolID, complexity: 1}
}

type blockOpt func(*models.CFGBlock)

func withLoopType(t string) blockOpt { return func(b *models.CFGBlock) { b.LoopType = t } }
func withCondition(c string) blockOpt { return func(b *models.CFGBlock) { b.Condition = c } }

func (b *builder) newBlock(t models.BlockType, start, end int, opts ...blockOpt) int {
	id := b.nextID
	b.nextID++
	blk := models.CFGBlock{ID: id, SymbolID: b.symbolID, Type: t, StartLine: start, EndLine: end}
	for _, opt := range opts {
		opt(&blk)
	}
	b.blocks = append(b.blocks, blk)
	return id
}

func (b *builder) addEdge(from, to int, t models.CFGEdgeType) {
	b.edges = append(b.edges, models.CFGEdge{From: from, To: to, Type: t})
}

func (b *builder) result() models.CFG {
	return models.CFG{
		SymbolID:     b.symbolID,
		Blocks:       b.blocks,
		Edges:        b.edges,
		EntryBlock:   b.entryBlock,
		ExitBlocks:   b.exitBlocks,
		Loops:        b.loops,
		Conditionals: b.conditionals,
		Complexity:   b.complexity,
	}
}

func (b *builder) checkDeadline(deadline time.Time) bool {
	if b.timedOut {
		return true
	}
	if time.Now().After(deadline) {
		b.timedOut = true
	}
	return b.timedOut
}

func line(n *sitter.Node) int { return int(n.StartPoint().Row) + 1 }
func endLine(n *sitter.Node) int { return int(n.EndPoint().Row) + 1 }

// walkChildren treats node as a statement list (a compound/block node, or
// the root of a function body) and threads `current` through each child in
// source order. Returns terminated if a child definitely returns/throws.
func (b *builder) walkChildren(node *sitter.Node, current int, deadline time.Time) int {
	cur := current
	for i := 0; i < int(node.ChildCount()); i++ {
		if b.checkDeadline(deadline) {
			return cur
		}
		child := node.Child(i)
		if child == nil || !child.IsNamed() {
			continue
		}
		cur = b.walkStatement(child, cur, deadline)
		if cur == terminated {
			return terminated
		}
	}
	return cur
}

// walkStatement dispatches on the node's normalized kind, synthesizing the
// block(s)/edge(s) spec.md §4.3's canonical shapes imply. Unknown node
// kinds recurse into children without affecting complexity, per spec.
func (b *builder) walkStatement(node *sitter.Node, current int, deadline time.Time) int {
	if b.checkDeadline(deadline) {
		return current
	}

	kind, known := Normalize(node.Type())
	if !known {
		return b.walkChildren(node, current, deadline)
	}

	switch kind {
	case KindIf:
		return b.walkIf(node, current, deadline)
	case KindFor, KindWhile, KindDo:
		return b.walkLoop(node, kind, current, deadline)
	case KindSwitch:
		return b.walkSwitch(node, current, deadline)
	case KindReturn:
		blk := b.newBlock(models.BlockBasic, line(node), endLine(node))
		b.addEdge(current, blk, models.CFGEdgeSequential)
		b.pendingTerminal = append(b.pendingTerminal, pendingEdge{block: blk, edgeType: models.CFGEdgeReturn})
		return terminated
	case KindThrow:
		blk := b.newBlock(models.BlockBasic, line(node), endLine(node))
		b.addEdge(current, blk, models.CFGEdgeSequential)
		b.pendingTerminal = append(b.pendingTerminal, pendingEdge{block: blk, edgeType: models.CFGEdgeThrow})
		return terminated
	case KindTry:
		return b.walkTry(node, current, deadline)
	case KindCompound:
		return b.walkChildren(node, current, deadline)
	default:
		return b.walkChildren(node, current, deadline)
	}
}

// findChildByType returns the first direct child whose raw type matches one
// of candidates.
func findChildByType(node *sitter.Node, candidates ...string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		for _, cand := range candidates {
			if c.Type() == cand {
				return c
			}
		}
	}
	return nil
}

func childrenByType(node *sitter.Node, candidates ...string) []*sitter.Node {
	var out []*sitter.Node
	for i := 0; i < int(node.ChildCount()); i++ {
		c := node.Child(i)
		if c == nil {
			continue
		}
		for _, cand := range candidates {
			if c.Type() == cand {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func (b *builder) walkIf(node *sitter.Node, current int, deadline time.Time) int {
	b.complexity++ // the if itself

	elseClause := findChildByType(node, "else_clause", "else")
	hasElse := elseClause != nil
	if hasElse {
		b.complexity++ // the else branch
	}

	cond := ""
	if condNode := findChildByType(node, "parenthesized_expression", "condition"); condNode != nil {
		cond = condNode.Type()
	}

	ifBlock := b.newBlock(models.BlockConditional, line(node), line(node), withCondition(cond))
	b.addEdge(current, ifBlock, models.CFGEdgeSequential)
	b.conditionals = append(b.conditionals, models.ConditionalRecord{Block: ifBlock, HasElse: hasElse, BranchCount: branchCount(hasElse)})

	thenNode := findChildByType(node, "statement_block", "block", "compound_stmt")
	thenBlock := b.newBlock(models.BlockBasic, line(node), endLine(node))
	b.addEdge(ifBlock, thenBlock, models.CFGEdgeBranchTrue)
	thenExit := thenBlock
	if thenNode != nil {
		thenExit = b.walkChildren(thenNode, thenBlock, deadline)
	}

	var elseExit int
	elseHasPath := false
	if hasElse {
		elseBody := findChildByType(elseClause, "statement_block", "block", "if_statement", "compound_stmt")
		elseBlock := b.newBlock(models.BlockBasic, line(elseClause), endLine(elseClause))
		b.addEdge(ifBlock, elseBlock, models.CFGEdgeBranchFalse)
		elseExit = elseBlock
		if elseBody != nil {
			elseExit = b.walkStatement(elseBody, elseBlock, deadline)
		}
		elseHasPath = elseExit != terminated
	}

	if thenExit == terminated && (!hasElse || !elseHasPath) {
		if !hasElse {
			// falls through on the false branch even though "then" terminated
			merge := b.newBlock(models.BlockBasic, endLine(node), endLine(node))
			b.addEdge(ifBlock, merge, models.CFGEdgeBranchFalse)
			return merge
		}
		return terminated
	}

	merge := b.newBlock(models.BlockBasic, endLine(node), endLine(node))
	if thenExit != terminated {
		b.addEdge(thenExit, merge, models.CFGEdgeSequential)
	}
	if !hasElse {
		b.addEdge(ifBlock, merge, models.CFGEdgeBranchFalse)
	} else if elseHasPath {
		b.addEdge(elseExit, merge, models.CFGEdgeSequential)
	}
	return merge
}

func branchCount(hasElse bool) int {
	if hasElse {
		return 2
	}
	return 1
}

func (b *builder) walkLoop(node *sitter.Node, kind NodeKind, current int, deadline time.Time) int {
	b.complexity++

	header := b.newBlock(models.BlockLoop, line(node), line(node), withLoopType(string(kind)))
	b.addEdge(current, header, models.CFGEdgeSequential)
	b.loops = append(b.loops, models.LoopRecord{HeaderBlock: header, Kind: string(kind), StartLine: line(node), EndLine: endLine(node)})

	body := findChildByType(node, "statement_block", "block", "compound_stmt")
	bodyBlock := b.newBlock(models.BlockBasic, line(node), endLine(node))
	b.addEdge(header, bodyBlock, models.CFGEdgeBranchTrue)
	bodyExit := bodyBlock
	if body != nil {
		bodyExit = b.walkChildren(body, bodyBlock, deadline)
	}
	if bodyExit != terminated {
		b.addEdge(bodyExit, header, models.CFGEdgeLoopBack)
	}

	after := b.newBlock(models.BlockBasic, endLine(node), endLine(node))
	b.addEdge(header, after, models.CFGEdgeBranchFalse)
	return after
}

func (b *builder) walkSwitch(node *sitter.Node, current int, deadline time.Time) int {
	cases := childrenByType(node, "switch_case", "switch_default", "case", "default")
	for range cases {
		b.complexity++
	}

	switchBlock := b.newBlock(models.BlockSwitch, line(node), line(node))
	b.addEdge(current, switchBlock, models.CFGEdgeSequential)

	after := b.newBlock(models.BlockBasic, endLine(node), endLine(node))
	anyFallsThrough := false
	for _, c := range cases {
		caseBlock := b.newBlock(models.BlockBasic, line(c), endLine(c))
		b.addEdge(switchBlock, caseBlock, models.CFGEdgeBranchTrue)
		caseExit := b.walkChildren(c, caseBlock, deadline)
		if caseExit != terminated {
			b.addEdge(caseExit, after, models.CFGEdgeSequential)
			anyFallsThrough = true
		}
	}
	// default/no-match path, or no cases terminated every path
	if anyFallsThrough || len(cases) == 0 {
		b.addEdge(switchBlock, after, models.CFGEdgeBranchFalse)
	}
	return after
}

func (b *builder) walkTry(node *sitter.Node, current int, deadline time.Time) int {
	tryBody := findChildByType(node, "statement_block", "block", "compound_stmt")
	tryBlock := b.newBlock(models.BlockBasic, line(node), endLine(node))
	b.addEdge(current, tryBlock, models.CFGEdgeSequential)
	tryExit := tryBlock
	if tryBody != nil {
		tryExit = b.walkChildren(tryBody, tryBlock, deadline)
	}

	catches := childrenByType(node, "catch_clause", "catch")
	for range catches {
		b.complexity++
	}

	merge := b.newBlock(models.BlockBasic, endLine(node), endLine(node))
	anyPath := false
	if tryExit != terminated {
		b.addEdge(tryExit, merge, models.CFGEdgeSequential)
		anyPath = true
	}
	for _, c := range catches {
		catchBody := findChildByType(c, "statement_block", "block", "compound_stmt")
		catchBlock := b.newBlock(models.BlockCatch, line(c), endLine(c))
		b.addEdge(tryBlock, catchBlock, models.CFGEdgeThrow)
		catchExit := catchBlock
		if catchBody != nil {
			catchExit = b.walkChildren(catchBody, catchBlock, deadline)
		}
		if catchExit != terminated {
			b.addEdge(catchExit, merge, models.CFGEdgeSequential)
			anyPath = true
		}
	}
	if !anyPath {
		return terminated
	}
	return merge
}
