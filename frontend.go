// Package frontend composes the scanner, parser, and semantic
// analyzer into the single compile() convenience from spec.md §6.
package frontend

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sqlcore/frontend/diagnostic"
	"github.com/sqlcore/frontend/frontendcfg"
	"github.com/sqlcore/frontend/lexer"
	"github.com/sqlcore/frontend/semantic"
	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
	"github.com/sqlcore/frontend/token"
)

// Result bundles every artifact one compile() invocation produces:
// the token stream, the (possibly partially-erroneous) parse tree, the
// resulting symbol table, and every diagnostic from all three stages,
// flattened and ordered stage-then-position.
type Result struct {
	Tokens      []token.Token
	Tree        *syntax.Node
	SymbolTable *symtab.SymbolTable
	Diagnostics []diagnostic.Diagnostic
	RunID       uuid.UUID
}

// Ok reports whether the run produced zero diagnostics across all
// three stages (spec.md §7: "a run completes successfully when all
// three lists are empty").
func (r Result) Ok() bool { return len(r.Diagnostics) == 0 }

// Compile runs scan → parse → analyze over text and returns the
// combined Result. cfg == nil uses frontendcfg.Default(). Each call
// constructs its own symbol table (spec.md §5: re-entrancy is safe
// because each invocation owns its state) — use CompileWithSymbols to
// thread schema state across a sequence of calls.
func Compile(text string, cfg *frontendcfg.Config) Result {
	return CompileWithSymbols(text, cfg, symtab.New())
}

// CompileWithSymbols runs one compile() invocation against a
// caller-supplied, possibly non-empty symbol table — the REPL-session
// shape SPEC_FULL.md §3 describes, where a long-lived caller issues
// statements one at a time and DDL from an earlier call is visible to
// a later one.
func CompileWithSymbols(text string, cfg *frontendcfg.Config, sym *symtab.SymbolTable) Result {
	if cfg == nil {
		cfg = frontendcfg.Default()
	}
	runID := uuid.New()
	log := newLogger(cfg).WithField("run_id", runID.String())

	toks, lexDiags := lexer.ScanWithReserved(text, cfg.ReservedWords)
	lexDiags = diagnostic.Cap(lexDiags, diagnostic.LEX, cfg.MaxDiagnosticsPerStage)
	log.WithFields(logrus.Fields{
		"stage":            "lex",
		"token_count":      len(toks),
		"diagnostic_count": len(lexDiags),
	}).Info("scan complete")

	p := syntax.New(toks)
	p.SetSuggestDistance(cfg.SuggestionEditDistance)
	tree, synDiags := p.ParseProgram()
	synDiags = diagnostic.Cap(synDiags, diagnostic.SYN, cfg.MaxDiagnosticsPerStage)
	log.WithFields(logrus.Fields{
		"stage":            "syn",
		"diagnostic_count": len(synDiags),
	}).Info("parse complete")

	if sym == nil {
		sym = symtab.New()
	}
	sym, semDiags := semantic.Analyze(tree, sym, log)
	semDiags = diagnostic.Cap(semDiags, diagnostic.SEM, cfg.MaxDiagnosticsPerStage)
	log.WithFields(logrus.Fields{
		"stage":            "sem",
		"diagnostic_count": len(semDiags),
	}).Info("analysis complete")

	all := make([]diagnostic.Diagnostic, 0, len(lexDiags)+len(synDiags)+len(semDiags))
	all = append(all, lexDiags...)
	all = append(all, synDiags...)
	all = append(all, semDiags...)
	diagnostic.Tag(all, runID)

	return Result{
		Tokens:      toks,
		Tree:        tree,
		SymbolTable: sym,
		Diagnostics: all,
		RunID:       runID,
	}
}

func newLogger(cfg *frontendcfg.Config) *logrus.Entry {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.WarnLevel
	}
	logger.SetLevel(level)
	return logrus.NewEntry(logger)
}
