package semantic

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"

	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
	"github.com/sqlcore/frontend/token"
)

// exprText renders a best-effort source-order textual form of an
// expression subtree, for storing a DEFAULT/CHECK constraint's raw
// text in the symbol table without re-deriving the grammar.
func exprText(n *syntax.Node) string {
	leaves := n.Leaves()
	parts := make([]string, 0, len(leaves))
	for _, t := range leaves {
		parts = append(parts, t.Lexeme)
	}
	return strings.Join(parts, " ")
}

// inferExpr annotates n.Type (and every descendant's Type) in a
// single bottom-up pass, reporting SEM_TYPE_MISMATCH for incompatible
// operands. Rule 6's "aggregates cannot appear in WHERE" check is not
// done here — it is the separate containsAggregate scan in dml.go,
// run over a WHERE clause's condition tree before inferCondition.
func (a *Analyzer) inferExpr(n *syntax.Node, scope *symtab.Scope) syntax.Type {
	if n == nil {
		return syntax.UNKNOWN
	}
	switch n.Rule {
	case "Literal":
		n.Type = literalType(n)
	case "ColumnRef":
		n.Type = a.resolveColumnRef(n, scope)
	case "FunctionCall":
		n.Type = a.inferFunctionCall(n, scope)
	case "AddExpr", "MulExpr":
		n.Type = a.inferArith(n, scope)
	case "UnaryMinus":
		operand := nonTerminalChildren(n)
		if len(operand) > 0 {
			ot := a.inferExpr(operand[0], scope)
			if !ot.IsNumeric() && ot != syntax.NULLTYPE && ot != syntax.UNKNOWN {
				a.report(n, "unary '-' requires a numeric operand, found %s", literalKindName(ot))
				n.Type = syntax.UNKNOWN
			} else {
				n.Type = ot
			}
		}
	case "Paren":
		inner := nonTerminalChildren(n)
		if len(inner) > 0 {
			n.Type = a.inferExpr(inner[0], scope)
		}
	default:
		n.Type = syntax.UNKNOWN
	}
	return n.Type
}

func literalType(n *syntax.Node) syntax.Type {
	if len(n.Children) == 0 || n.Children[0].Tok == nil {
		return syntax.UNKNOWN
	}
	t := n.Children[0].Tok
	switch t.Kind {
	case token.INTEGER:
		return syntax.INTEGER
	case token.FLOAT:
		return syntax.FLOAT
	case token.STRING:
		return syntax.TEXT
	case token.KEYWORD:
		switch t.Value {
		case "TRUE", "FALSE":
			return syntax.BOOLEAN
		case "NULL":
			return syntax.NULLTYPE
		}
	}
	return syntax.UNKNOWN
}

func (a *Analyzer) resolveColumnRef(n *syntax.Node, scope *symtab.Scope) syntax.Type {
	if scope == nil {
		return syntax.UNKNOWN
	}
	idents := identifierChildren(n)
	switch len(idents) {
	case 1:
		colName := idents[0].Tok.Value
		var found *symtab.Column
		ambiguous := false
		for _, t := range scope.Tables() {
			if c, ok := t.ColumnByName(colName); ok {
				if found != nil {
					ambiguous = true
				}
				cc := c
				found = &cc
			}
		}
		if ambiguous {
			a.report(n, "ambiguous column reference '%s'", colName)
			return syntax.UNKNOWN
		}
		if found == nil {
			a.report(n, "unknown column '%s'", colName)
			return syntax.UNKNOWN
		}
		return found.DeclaredType
	case 2:
		qualifier, colName := idents[0].Tok.Value, idents[1].Tok.Value
		table, ok := scope.Resolve(qualifier)
		if !ok {
			a.report(n, "unknown table or alias '%s'", qualifier)
			return syntax.UNKNOWN
		}
		col, ok := table.ColumnByName(colName)
		if !ok {
			a.report(n, "unknown column '%s' in table '%s'", colName, table.Name)
			return syntax.UNKNOWN
		}
		return col.DeclaredType
	default:
		return syntax.UNKNOWN
	}
}

var aggregateFunctions = map[string]bool{"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true}

// IsAggregateCall reports whether n is a FunctionCall node naming one
// of the five aggregate functions rule 6 validates.
func IsAggregateCall(n *syntax.Node) bool {
	if n == nil || n.Rule != "FunctionCall" || len(n.Children) == 0 || n.Children[0].Tok == nil {
		return false
	}
	return aggregateFunctions[n.Children[0].Tok.Value]
}

func (a *Analyzer) inferFunctionCall(n *syntax.Node, scope *symtab.Scope) syntax.Type {
	name := ""
	if len(n.Children) > 0 && n.Children[0].Tok != nil {
		name = n.Children[0].Tok.Value
	}
	args := nonTerminalChildren(n)
	var argTypes []syntax.Type
	for _, arg := range args {
		argTypes = append(argTypes, a.inferExpr(arg, scope))
	}
	switch name {
	case "COUNT":
		return syntax.INTEGER
	case "SUM", "AVG":
		return syntax.FLOAT
	case "MIN", "MAX", "COALESCE":
		if len(argTypes) > 0 {
			return argTypes[0]
		}
		return syntax.UNKNOWN
	case "UPPER", "LOWER":
		return syntax.TEXT
	case "CAST":
		return syntax.UNKNOWN
	default:
		return syntax.UNKNOWN
	}
}

func (a *Analyzer) inferArith(n *syntax.Node, scope *symtab.Scope) syntax.Type {
	if len(n.Children) < 3 {
		return syntax.UNKNOWN
	}
	left, op, right := n.Children[0], n.Children[1], n.Children[2]
	lt := a.inferExpr(left, scope)
	rt := a.inferExpr(right, scope)
	if op.Tok != nil && op.Tok.Value == "||" {
		return a.inferConcat(n, lt, rt)
	}
	if !numericOrUnknown(lt) || !numericOrUnknown(rt) {
		a.report(n, "arithmetic operator '%s' requires numeric operands, found %s and %s", op.Tok.Value, literalKindName(lt), literalKindName(rt))
		return syntax.UNKNOWN
	}
	if op.Tok != nil && (op.Tok.Value == "/" || op.Tok.Value == "%") && isLiteralZero(right) {
		a.warn(n, "division by literal zero")
	}
	if lt == syntax.FLOAT || rt == syntax.FLOAT {
		return syntax.FLOAT
	}
	if lt == syntax.UNKNOWN || rt == syntax.UNKNOWN || lt == syntax.NULLTYPE || rt == syntax.NULLTYPE {
		return syntax.UNKNOWN
	}
	return syntax.INTEGER
}

// inferConcat implements '||' (spec.md §9's open question: classified
// as string concatenation, not bitwise OR or logical OR shorthand).
// Both operands must be TEXT-compatible; result is always TEXT.
func (a *Analyzer) inferConcat(n *syntax.Node, lt, rt syntax.Type) syntax.Type {
	textCompatible := func(t syntax.Type) bool {
		return t == syntax.TEXT || t == syntax.UNKNOWN || t == syntax.NULLTYPE
	}
	if !textCompatible(lt) || !textCompatible(rt) {
		a.report(n, "'||' requires TEXT operands, found %s and %s", literalKindName(lt), literalKindName(rt))
		return syntax.UNKNOWN
	}
	return syntax.TEXT
}

func numericOrUnknown(t syntax.Type) bool {
	return t.IsNumeric() || t == syntax.UNKNOWN || t == syntax.NULLTYPE
}

func isLiteralZero(n *syntax.Node) bool {
	if n == nil || n.Rule != "Literal" || n.Decimal == nil {
		return false
	}
	return n.Decimal.Equal(decimal.Zero)
}

// literalKindName renders a type for a "found" diagnostic clause,
// using the spec's literal vocabulary (STRING, not TEXT).
func literalKindName(t syntax.Type) string {
	if t == syntax.TEXT {
		return "STRING"
	}
	return t.String()
}

// inferCondition annotates a Condition subtree (rule 3's
// BOOLEAN-producing operators) and enforces rule 5's "must evaluate to
// a BOOLEAN-compatible expression" for its operands.
func (a *Analyzer) inferCondition(n *syntax.Node, scope *symtab.Scope) syntax.Type {
	if n == nil {
		return syntax.UNKNOWN
	}
	switch n.Rule {
	case "Condition", "AndCondition":
		if len(n.Children) == 3 {
			a.inferCondition(n.Children[0], scope)
			a.inferCondition(n.Children[2], scope)
		}
	case "NotCondition":
		nt := nonTerminalChildren(n)
		if len(nt) > 0 {
			a.inferCondition(nt[0], scope)
		}
	case "GroupCondition":
		nt := nonTerminalChildren(n)
		if len(nt) > 0 {
			a.inferCondition(nt[0], scope)
		}
	case "ExprCondition":
		operands := nonTerminalChildren(n)
		if len(operands) > 0 {
			t := a.inferExpr(operands[0], scope)
			if t != syntax.BOOLEAN && t != syntax.UNKNOWN && t != syntax.NULLTYPE && !t.IsNumeric() {
				a.report(n, "condition requires a BOOLEAN-compatible expression, found %s", literalKindName(t))
			}
		}
	case "Comparison":
		if len(n.Children) == 3 {
			lt := a.inferExpr(n.Children[0], scope)
			rt := a.inferExpr(n.Children[2], scope)
			if !lt.Compatible(rt) {
				a.report(n, "incompatible operand types %s and %s in comparison", literalKindName(lt), literalKindName(rt))
			}
		}
	case "Between", "NotBetween":
		operands := nonTerminalChildren(n)
		for _, o := range operands {
			a.inferExpr(o, scope)
		}
	case "In", "NotIn":
		operands := nonTerminalChildren(n)
		for _, o := range operands {
			a.inferExpr(o, scope)
		}
	case "Like", "NotLike":
		operands := nonTerminalChildren(n)
		for _, o := range operands {
			t := a.inferExpr(o, scope)
			if t != syntax.TEXT && t != syntax.UNKNOWN && t != syntax.NULLTYPE {
				a.report(o, "LIKE requires TEXT operands, found %s", literalKindName(t))
			}
		}
	case "IsNull", "IsNotNull":
		operands := nonTerminalChildren(n)
		for _, o := range operands {
			a.inferExpr(o, scope)
		}
	}
	n.Type = syntax.BOOLEAN
	return syntax.BOOLEAN
}

// assignmentCompatible implements rule 4's "numeric widening allowed,
// string↔numeric is a failure" using spf13/cast for the widening
// conversion itself.
func assignmentCompatible(target syntax.Type, valType syntax.Type, valNode *syntax.Node) (bool, string) {
	if valType == syntax.NULLTYPE || valType == syntax.UNKNOWN {
		return true, ""
	}
	if target == valType {
		return true, ""
	}
	if target.IsNumeric() && valType.IsNumeric() {
		if valNode != nil && valNode.Decimal != nil {
			if _, err := cast.ToFloat64E(valNode.Decimal.String()); err != nil {
				return false, "value does not fit target numeric type"
			}
		}
		return true, ""
	}
	return false, literalKindName(valType) + " literal provided"
}
