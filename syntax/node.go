// Package syntax implements the parser: a token stream to a parse
// tree, under a panic-mode error-recovery contract, plus the single
// tagged node type the tree is built from.
package syntax

import (
	"github.com/shopspring/decimal"

	"github.com/sqlcore/frontend/diagnostic"
	"github.com/sqlcore/frontend/token"
)

// Type is the inferred-type slot the semantic stage writes once onto
// expression nodes. Declared here (not in package semantic) so Node
// can hold it without an import cycle.
type Type uint8

const (
	UNKNOWN Type = iota
	INTEGER
	FLOAT
	TEXT
	BOOLEAN
	DATE
	NULLTYPE
)

func (t Type) String() string {
	switch t {
	case INTEGER:
		return "INTEGER"
	case FLOAT:
		return "FLOAT"
	case TEXT:
		return "TEXT"
	case BOOLEAN:
		return "BOOLEAN"
	case DATE:
		return "DATE"
	case NULLTYPE:
		return "NULL"
	default:
		return "UNKNOWN"
	}
}

// Compatible reports whether a and b may appear as the two operands of
// a comparison: numeric<->numeric, TEXT<->TEXT, BOOLEAN<->BOOLEAN, or
// either side NULL/UNKNOWN.
func (t Type) Compatible(o Type) bool {
	if t == NULLTYPE || o == NULLTYPE || t == UNKNOWN || o == UNKNOWN {
		return true
	}
	if t.IsNumeric() && o.IsNumeric() {
		return true
	}
	return t == o
}

func (t Type) IsNumeric() bool { return t == INTEGER || t == FLOAT }

// Node is the single tagged parse-tree node type (spec data model,
// design note §9): a Rule name, ordered Children, an optional
// originating Token for leaves, an optional inferred Type slot, and a
// Position inherited from the node's first terminal.
type Node struct {
	Rule     string
	Children []*Node
	Tok      *token.Token
	Type     Type
	Pos      token.Position

	// Decimal holds the exact magnitude of an INTEGER/FLOAT Literal,
	// parsed at construction time so the semantic stage can compare
	// exact values (e.g. "division by literal zero") without float
	// drift.
	Decimal *decimal.Decimal

	// Diag is set on ERROR nodes: the diagnostic that caused the
	// recovery, plus whatever was partially parsed lives in Children.
	Diag *diagnostic.Diagnostic
}

const ruleError = "ERROR"
const ruleTerminal = "Terminal"

// newNode builds an internal node with the given rule and children.
func newNode(rule string, children ...*Node) *Node {
	n := &Node{Rule: rule, Children: children}
	for _, c := range children {
		if c != nil {
			n.Pos = c.Pos
			break
		}
	}
	return n
}

// terminal wraps a single token as a leaf node.
func terminal(t token.Token) *Node {
	tt := t
	return &Node{Rule: ruleTerminal, Tok: &tt, Pos: t.Pos}
}

// errorNode builds a recovered ERROR subtree.
func errorNode(diag diagnostic.Diagnostic, partial ...*Node) *Node {
	n := &Node{Rule: ruleError, Children: partial, Pos: diag.Pos, Diag: &diag}
	return n
}

// IsError reports whether n is a recovered ERROR subtree.
func (n *Node) IsError() bool { return n != nil && n.Rule == ruleError }

// Leaves returns the in-order terminal tokens under n, skipping ERROR
// subtrees — used by the property tests in spec.md §8 ("parse-tree
// fidelity").
func (n *Node) Leaves() []token.Token {
	var out []token.Token
	n.collectLeaves(&out)
	return out
}

func (n *Node) collectLeaves(out *[]token.Token) {
	if n == nil || n.IsError() {
		return
	}
	if n.Rule == ruleTerminal {
		*out = append(*out, *n.Tok)
		return
	}
	for _, c := range n.Children {
		c.collectLeaves(out)
	}
}

// Walk calls fn for n and every descendant, pre-order.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}
