// Package diagnostic defines the positioned, human-readable fault
// reports produced by every stage of the pipeline.
package diagnostic

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/sqlcore/frontend/token"
)

// Stage identifies which pipeline stage produced a Diagnostic.
type Stage uint8

const (
	LEX Stage = iota
	SYN
	SEM
)

func (s Stage) String() string {
	switch s {
	case LEX:
		return "Lexical"
	case SYN:
		return "Syntax"
	case SEM:
		return "Semantic"
	default:
		return "Unknown"
	}
}

// Severity of a diagnostic. ERROR is the default; WARNING marks a
// non-fatal finding (division by a literal zero, see semantic).
type Severity uint8

const (
	ERROR Severity = iota
	WARNING
)

func (s Severity) String() string {
	if s == WARNING {
		return "Warning"
	}
	return "Error"
}

// Diagnostic is a single positioned fault report.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Message  string
	Pos      token.Position
	// Expected/Found are populated for "expected X but found Y" syntax
	// errors; both empty otherwise.
	Expected string
	Found    string
	// Suggestion holds an optional "did you mean X?" hint.
	Suggestion string
	// RunID correlates every diagnostic from one compile() invocation
	// (see frontend.Compile), so a caller aggregating many runs can
	// group diagnostics back to their source run.
	RunID uuid.UUID
}

// String renders the fixed diagnostic shape from spec.md §6:
// "<Stage> <Severity> at line L, column C: <message>", e.g. "Syntax
// Error at line 3, column 7: ...", with any Suggestion appended as
// " (did you mean X?)".
func (d Diagnostic) String() string {
	msg := d.Message
	if d.Suggestion != "" {
		msg += " (did you mean " + d.Suggestion + "?)"
	}
	return fmt.Sprintf("%s %s at line %d, column %d: %s", d.Stage, d.Severity, d.Pos.Line, d.Pos.Col, msg)
}

// New constructs a Diagnostic at ERROR severity.
func New(stage Stage, pos token.Position, message string) Diagnostic {
	return Diagnostic{Stage: stage, Severity: ERROR, Message: message, Pos: pos}
}

// Newf is New with fmt.Sprintf formatting.
func Newf(stage Stage, pos token.Position, format string, args ...any) Diagnostic {
	return New(stage, pos, fmt.Sprintf(format, args...))
}

// Warningf constructs a WARNING-severity diagnostic.
func Warningf(stage Stage, pos token.Position, format string, args ...any) Diagnostic {
	d := Newf(stage, pos, format, args...)
	d.Severity = WARNING
	return d
}

// SortByPosition orders diagnostics by (line, column), stable so that
// diagnostics emitted at the same position keep their emission order.
func SortByPosition(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i].Pos, diags[j].Pos
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Col < b.Col
	})
}

// Tag stamps RunID on every diagnostic in diags.
func Tag(diags []Diagnostic, run uuid.UUID) {
	for i := range diags {
		diags[i].RunID = run
	}
}

// Cap enforces MaxDiagnosticsPerStage (frontendcfg.Config): when diags
// exceeds max (max > 0), it is truncated and a synthetic summary
// diagnostic is appended noting how many were suppressed.
func Cap(diags []Diagnostic, stage Stage, max int) []Diagnostic {
	if max <= 0 || len(diags) <= max {
		return diags
	}
	suppressed := len(diags) - max
	kept := append([]Diagnostic(nil), diags[:max]...)
	var pos token.Position
	if max > 0 {
		pos = diags[max-1].Pos
	}
	kept = append(kept, Newf(stage, pos, "...%d further diagnostics suppressed", suppressed))
	return kept
}
