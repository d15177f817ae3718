package semantic

import (
	"github.com/samber/lo"

	"github.com/sqlcore/frontend/syntax"
	"github.com/sqlcore/frontend/token"
)

// The parser builds a uniform tree (syntax.Node) rather than typed
// productions, so the analyzer locates a statement's meaningful parts
// by filtering direct children on Rule rather than by field access.

// childrenByRule returns every direct child of n whose Rule equals
// rule, in tree order.
func childrenByRule(n *syntax.Node, rule string) []*syntax.Node {
	if n == nil {
		return nil
	}
	return lo.Filter(n.Children, func(c *syntax.Node, _ int) bool {
		return c != nil && c.Rule == rule
	})
}

// firstChildRule returns the first direct child of n with the given
// Rule, if any.
func firstChildRule(n *syntax.Node, rule string) (*syntax.Node, bool) {
	for _, c := range childrenByRule(n, rule) {
		return c, true
	}
	return nil, false
}

// identifierChildren returns every direct Terminal child of n whose
// token is an IDENTIFIER, in tree order — table/column/alias names
// live as direct terminal children alongside keyword/punctuation
// terminals the analyzer otherwise ignores.
func identifierChildren(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	return lo.Filter(n.Children, func(c *syntax.Node, _ int) bool {
		return c != nil && c.Rule == "Terminal" && c.Tok != nil && c.Tok.Kind == token.IDENTIFIER
	})
}

func firstIdentifier(n *syntax.Node) (*syntax.Node, bool) {
	idents := identifierChildren(n)
	if len(idents) == 0 {
		return nil, false
	}
	return idents[0], true
}

// hasKeywordChild reports whether n has a direct Terminal child whose
// normalized token value equals kw.
func hasKeywordChild(n *syntax.Node, kw string) bool {
	if n == nil {
		return false
	}
	for _, c := range n.Children {
		if c != nil && c.Rule == "Terminal" && c.Tok != nil && c.Tok.Value == kw {
			return true
		}
	}
	return false
}

// nonTerminalChildren returns every direct child of n that is not a
// bare Terminal leaf — the operand/value nodes of a production, with
// its keyword and punctuation scaffolding filtered out. Used for
// condition/expression operand extraction (Between's lo/hi,
// FunctionCall/In's argument list, Like's pattern, ...).
func nonTerminalChildren(n *syntax.Node) []*syntax.Node {
	if n == nil {
		return nil
	}
	return lo.Filter(n.Children, func(c *syntax.Node, _ int) bool {
		return c != nil && c.Rule != "Terminal"
	})
}

// conditionRules is the set of production names a Condition tree can
// bottom out at (see syntax/expr.go's parseCondition family).
var conditionRules = map[string]bool{
	"Condition": true, "AndCondition": true, "NotCondition": true,
	"ExprCondition": true, "Comparison": true,
	"Between": true, "NotBetween": true, "In": true, "NotIn": true,
	"Like": true, "NotLike": true, "IsNull": true, "IsNotNull": true,
	"GroupCondition": true,
}

func isConditionNode(n *syntax.Node) bool {
	return n != nil && conditionRules[n.Rule]
}
