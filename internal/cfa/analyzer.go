// Package cfa extracts basic blocks, branches, loops, and cyclomatic
// complexity from a parsed syntax tree (tree mode) or, failing that, raw
// source text (pattern mode), per spec.md §4.3.
package cfa

import (
	"regexp"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/polyglotdex/polyglotdex/pkg/models"
)

// DefaultBudget is the per-symbol analysis time budget spec.md §4.3
// prescribes.
const DefaultBudget = 5 * time.Second

// Analyzer builds control-flow graphs for function-like symbols.
type Analyzer struct {
	Budget time.Duration
}

// New returns an Analyzer with the default 5-second per-symbol budget.
func New() *Analyzer {
	return &Analyzer{Budget: DefaultBudget}
}

// AnalyzeTree walks a tree-sitter syntax tree rooted at a function-like
// node's body. It never fails: on exceeding the budget it returns
// models.MinimalCFG instead.
func (a *Analyzer) AnalyzeTree(symbolID int64, root *sitter.Node, startLine, endLine int) models.CFG {
	budget := a.Budget
	if budget == 0 {
		budget = DefaultBudget
	}
	deadline := time.Now().Add(budget)

	b := newBuilder(symbolID)
	entry := b.newBlock(models.BlockEntry, startLine, startLine)
	b.entryBlock = entry

	start := b.newBlock(models.BlockBasic, startLine, startLine)
	b.addEdge(entry, start, models.CFGEdgeSequential)

	if root == nil {
		exit := b.newBlock(models.BlockExit, endLine, endLine)
		b.addEdge(start, exit, models.CFGEdgeSequential)
		b.exitBlocks = append(b.exitBlocks, exit)
		return b.result()
	}

	last := b.walkChildren(root, start, deadline)

	if b.timedOut {
		return models.MinimalCFG(symbolID, startLine, endLine)
	}

	exit := b.newBlock(models.BlockExit, endLine, endLine)
	if last != terminated {
		b.addEdge(last, exit, models.CFGEdgeSequential)
	}
	for _, pending := range b.pendingTerminal {
		b.addEdge(pending.block, exit, pending.edgeType)
	}
	b.exitBlocks = append(b.exitBlocks, exit)

	return b.result()
}

// terminated is the sentinel walkStatement/walkChildren return to signal
// that control flow already reached a return/throw and will never fall
// through to the caller's next statement.
const terminated = -1

// pattern-mode fallback: regex headers for if/for/while, per spec.md §4.3.
var (
	reIf    = regexp.MustCompile(`(?m)^\s*\}?\s*else\s+if\s*\(|(?m)^\s*if\s*\(`)
	reFor   = regexp.MustCompile(`(?m)^\s*for\s*\(`)
	reWhile = regexp.MustCompile(`(?m)^\s*while\s*\(`)
)

// AnalyzeSource is the pattern-mode fallback used when no syntax tree is
// available: a line-oriented regex scan that still produces a non-empty,
// if degraded, CFG per spec.md §4.3.
func (a *Analyzer) AnalyzeSource(symbolID int64, source string, startLine, endLine int) models.CFG {
	b := newBuilder(symbolID)
	entry := b.newBlock(models.BlockEntry, startLine, startLine)
	b.entryBlock = entry
	current := b.newBlock(models.BlockBasic, startLine, startLine)
	b.addEdge(entry, current, models.CFGEdgeSequential)

	lineNo := startLine
	for _, line := range splitLines(source) {
		switch {
		case reIf.MatchString(line):
			b.complexity++
			blk := b.newBlock(models.BlockConditional, lineNo, lineNo)
			b.addEdge(current, blk, models.CFGEdgeSequential)
			current = blk
		case reFor.MatchString(line):
			b.complexity++
			blk := b.newBlock(models.BlockLoop, lineNo, lineNo, withLoopType("for"))
			b.addEdge(current, blk, models.CFGEdgeSequential)
			current = blk
		case reWhile.MatchString(line):
			b.complexity++
			blk := b.newBlock(models.BlockLoop, lineNo, lineNo, withLoopType("while"))
			b.addEdge(current, blk, models.CFGEdgeSequential)
			current = blk
		}
		lineNo++
	}

	exit := b.newBlock(models.BlockExit, endLine, endLine)
	b.addEdge(current, exit, models.CFGEdgeSequential)
	b.exitBlocks = append(b.exitBlocks, exit)

	cfg := b.result()
	cfg.Degraded = true
	return cfg
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}
