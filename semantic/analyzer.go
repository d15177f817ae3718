// Package semantic walks a parse tree in source order, mutates the
// persistent symbol table, validates references and types, and
// annotates expression nodes with their inferred type (spec.md §4.3).
package semantic

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sqlcore/frontend/diagnostic"
	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
)

// Analyzer holds the traversal's mutable state: the symbol table it
// threads explicitly through the statement walk (design note §9 —
// "explicitly threaded context", never a process-global registry) and
// the accumulated diagnostics.
type Analyzer struct {
	sym   *symtab.SymbolTable
	diags []diagnostic.Diagnostic
	log   *logrus.Entry
}

// New builds an Analyzer over an existing (possibly non-empty) symbol
// table, so a REPL-style caller can analyze one statement at a time
// against accumulated schema state.
func New(sym *symtab.SymbolTable, log *logrus.Entry) *Analyzer {
	if sym == nil {
		sym = symtab.New()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Analyzer{sym: sym, log: log}
}

// Analyze runs the full semantic pass over tree (a Program node),
// mutating sym in place and returning the accumulated diagnostics. The
// traversal order is statement order; within a statement, DDL effects
// apply only after that statement's own validation passes, so that
// `CREATE TABLE X; INSERT INTO X ...` resolves within one run.
func Analyze(tree *syntax.Node, sym *symtab.SymbolTable, log *logrus.Entry) (*symtab.SymbolTable, []diagnostic.Diagnostic) {
	a := New(sym, log)
	a.analyzeProgram(tree)
	diagnostic.SortByPosition(a.diags)
	return a.sym, a.diags
}

func (a *Analyzer) analyzeProgram(tree *syntax.Node) {
	if tree == nil {
		return
	}
	for _, stmt := range tree.Children {
		a.analyzeStatement(stmt)
	}
}

func (a *Analyzer) analyzeStatement(stmt *syntax.Node) {
	if stmt == nil || stmt.IsError() {
		// Downstream stages treat ERROR subtrees as opaque (spec.md
		// §7) — a syntax fault already reported is not re-diagnosed.
		return
	}
	before := len(a.diags)
	switch stmt.Rule {
	case "SelectStmt":
		a.analyzeSelectStmt(stmt, nil)
	case "InsertStmt":
		a.analyzeInsertStmt(stmt)
	case "UpdateStmt":
		a.analyzeUpdateStmt(stmt)
	case "DeleteStmt":
		a.analyzeDeleteStmt(stmt)
	case "CreateTableStmt":
		a.analyzeCreateTableStmt(stmt)
	case "CreateViewStmt":
		a.analyzeCreateViewStmt(stmt)
	case "CreateIndexStmt":
		a.analyzeCreateIndexStmt(stmt)
	case "AlterTableStmt":
		a.analyzeAlterTableStmt(stmt)
	case "DropStmt":
		a.analyzeDropStmt(stmt)
	}
	a.log.WithFields(logrus.Fields{
		"stage":            "sem",
		"rule":             stmt.Rule,
		"diagnostic_count": len(a.diags) - before,
	}).Debug("statement analyzed")
}

func (a *Analyzer) report(n *syntax.Node, format string, args ...any) {
	d := diagnostic.Newf(diagnostic.SEM, n.Pos, format, args...)
	a.diags = append(a.diags, d)
}

func (a *Analyzer) warn(n *syntax.Node, format string, args ...any) {
	d := diagnostic.Warningf(diagnostic.SEM, n.Pos, format, args...)
	a.diags = append(a.diags, d)
}

// NewRunID mints a fresh correlation id for one compile() invocation
// (SPEC_FULL.md §3's Diagnostics identity — shared by all three
// stages' diagnostics from that run).
func NewRunID() uuid.UUID { return uuid.New() }
