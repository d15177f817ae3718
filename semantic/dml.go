package semantic

import (
	"strings"

	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
)

// analyzeSelectStmt implements rules 2, 3, 5, 6 for a SELECT: it binds
// the FROM-list into a fresh Scope, validates every ColumnRef and
// Condition against it, and returns that scope. CREATE VIEW does not use
// the returned scope; it reads the projection types this pass annotates.
func (a *Analyzer) analyzeSelectStmt(stmt *syntax.Node, outer *symtab.Scope) *symtab.Scope {
	scope := symtab.NewScope(a.sym)

	if fromClause, ok := firstChildRule(stmt, "FromClause"); ok {
		a.bindTableRef(scope, firstTableRef(fromClause))
		for _, join := range childrenByRule(fromClause, "Join") {
			a.bindTableRef(scope, firstTableRef(join))
		}
		for _, join := range childrenByRule(fromClause, "Join") {
			if cond, ok := firstConditionChild(join); ok {
				a.inferCondition(cond, scope)
			}
		}
	}

	groupBy, hasGroupBy := firstChildRule(stmt, "GroupByClause")
	var groupByNames map[string]bool
	if hasGroupBy {
		groupByNames = make(map[string]bool)
		for _, colRef := range childrenByRule(groupBy, "ColumnRef") {
			a.inferExpr(colRef, scope)
			groupByNames[strings.ToUpper(exprText(colRef))] = true
		}
	}

	if list, ok := firstChildRule(stmt, "SelectList"); ok {
		for _, item := range childrenByRule(list, "SelectItem") {
			exprs := nonTerminalChildren(item)
			if len(exprs) == 0 {
				continue
			}
			expr := exprs[0]
			a.inferExpr(expr, scope)
			if hasGroupBy {
				a.checkGroupedColumns(expr, groupByNames)
			}
		}
	}

	if whereClause, ok := firstChildRule(stmt, "WhereClause"); ok {
		if cond, ok := firstConditionChild(whereClause); ok {
			if containsAggregate(cond) {
				a.report(cond, "aggregate functions are not allowed in WHERE")
			}
			a.inferCondition(cond, scope)
		}
	}
	if havingClause, ok := firstChildRule(stmt, "HavingClause"); ok {
		if cond, ok := firstConditionChild(havingClause); ok {
			a.inferCondition(cond, scope)
		}
	}
	if orderBy, ok := firstChildRule(stmt, "OrderByClause"); ok {
		for _, item := range childrenByRule(orderBy, "SortItem") {
			if exprs := nonTerminalChildren(item); len(exprs) > 0 {
				a.inferExpr(exprs[0], scope)
			}
		}
	}
	return scope
}

func firstTableRef(n *syntax.Node) *syntax.Node {
	t, _ := firstChildRule(n, "TableRef")
	return t
}

func firstConditionChild(n *syntax.Node) (*syntax.Node, bool) {
	for _, c := range n.Children {
		if isConditionNode(c) {
			return c, true
		}
	}
	return nil, false
}

func containsAggregate(n *syntax.Node) bool {
	found := false
	n.Walk(func(c *syntax.Node) {
		if IsAggregateCall(c) {
			found = true
		}
	})
	return found
}

// checkGroupedColumns enforces rule 6's "every non-aggregated
// projection column must appear in the GROUP BY list", recursing into
// a select-item expression's operands (AddExpr/MulExpr/UnaryMinus/
// Paren/non-aggregate FunctionCall args) rather than only matching a
// bare ColumnRef at the top. It does not recurse into an aggregate
// call's arguments, since those columns are exempt by definition.
func (a *Analyzer) checkGroupedColumns(n *syntax.Node, groupByNames map[string]bool) {
	if n == nil || n.IsError() || IsAggregateCall(n) {
		return
	}
	if n.Rule == "ColumnRef" {
		if !groupByNames[strings.ToUpper(exprText(n))] {
			a.report(n, "column '%s' must appear in GROUP BY or be used in an aggregate function", exprText(n))
		}
		return
	}
	for _, c := range nonTerminalChildren(n) {
		a.checkGroupedColumns(c, groupByNames)
	}
}

func (a *Analyzer) bindTableRef(scope *symtab.Scope, ref *syntax.Node) {
	if ref == nil {
		return
	}
	idents := identifierChildren(ref)
	if len(idents) == 0 {
		return
	}
	name := idents[0].Tok.Value
	alias := name
	if len(idents) > 1 {
		alias = idents[1].Tok.Value
	}
	if _, ok := a.sym.Lookup(name); !ok {
		a.report(idents[0], "table '%s' does not exist", name)
		return
	}
	scope.Bind(name, name)
	scope.Bind(alias, name)
}

// analyzeInsertStmt implements rule 4: column-value arity, unknown
// columns, assignment compatibility, and NOT NULL rejection.
func (a *Analyzer) analyzeInsertStmt(stmt *syntax.Node) {
	idents := identifierChildren(stmt)
	if len(idents) == 0 {
		return
	}
	tableNode := idents[0]
	table, ok := a.sym.Lookup(tableNode.Tok.Value)
	if !ok {
		a.report(tableNode, "table '%s' does not exist", tableNode.Tok.Value)
		return
	}

	var targetCols []symtab.Column
	if colList, ok := firstChildRule(stmt, "ColumnList"); ok {
		for _, colRef := range childrenByRule(colList, "ColumnRef") {
			colIdents := identifierChildren(colRef)
			if len(colIdents) == 0 {
				continue
			}
			colName := colIdents[len(colIdents)-1].Tok.Value
			col, ok := table.ColumnByName(colName)
			if !ok {
				a.report(colRef, "unknown column '%s' in table '%s'", colName, table.Name)
				return
			}
			targetCols = append(targetCols, col)
		}
	} else {
		targetCols = table.Columns
	}

	for _, row := range childrenByRule(stmt, "ValueRow") {
		exprs := nonTerminalChildren(row)
		if len(exprs) != len(targetCols) {
			a.report(row, "INSERT has %d values but %d columns", len(exprs), len(targetCols))
			continue
		}
		for i, expr := range exprs {
			valType := a.inferExpr(expr, nil)
			col := targetCols[i]
			if valType == syntax.NULLTYPE && col.HasConstraint(symtab.NotNull) {
				a.report(expr, "column '%s' is NOT NULL", col.Name)
				continue
			}
			if ok, reason := assignmentCompatible(col.DeclaredType, valType, expr); !ok {
				a.report(expr, "column '%s' declared %s, %s", col.Name, col.TypeName, reason)
			}
		}
	}
}

// analyzeUpdateStmt implements rule 4's assignment-compatibility
// check per SET clause, plus rule 5 for WHERE.
func (a *Analyzer) analyzeUpdateStmt(stmt *syntax.Node) {
	idents := identifierChildren(stmt)
	if len(idents) == 0 {
		return
	}
	tableNode := idents[0]
	table, ok := a.sym.Lookup(tableNode.Tok.Value)
	if !ok {
		a.report(tableNode, "table '%s' does not exist", tableNode.Tok.Value)
		return
	}
	scope := symtab.NewScope(a.sym)
	scope.Bind(table.Name, table.Name)

	for _, assign := range childrenByRule(stmt, "Assignment") {
		assignIdents := identifierChildren(assign)
		if len(assignIdents) == 0 {
			continue
		}
		colName := assignIdents[0].Tok.Value
		col, ok := table.ColumnByName(colName)
		if !ok {
			a.report(assignIdents[0], "unknown column '%s' in table '%s'", colName, table.Name)
			continue
		}
		values := nonTerminalChildren(assign)
		if len(values) == 0 {
			continue
		}
		valExpr := values[0]
		valType := a.inferExpr(valExpr, scope)
		if valType == syntax.NULLTYPE && col.HasConstraint(symtab.NotNull) {
			a.report(valExpr, "column '%s' is NOT NULL", col.Name)
			continue
		}
		if ok, reason := assignmentCompatible(col.DeclaredType, valType, valExpr); !ok {
			a.report(valExpr, "column '%s' declared %s, %s", col.Name, col.TypeName, reason)
		}
	}

	if whereClause, ok := firstChildRule(stmt, "WhereClause"); ok {
		if cond, ok := firstConditionChild(whereClause); ok {
			a.inferCondition(cond, scope)
		}
	}
}

// analyzeDeleteStmt implements rule 5 for DELETE's WHERE clause.
func (a *Analyzer) analyzeDeleteStmt(stmt *syntax.Node) {
	idents := identifierChildren(stmt)
	if len(idents) == 0 {
		return
	}
	tableNode := idents[0]
	table, ok := a.sym.Lookup(tableNode.Tok.Value)
	if !ok {
		a.report(tableNode, "table '%s' does not exist", tableNode.Tok.Value)
		return
	}
	scope := symtab.NewScope(a.sym)
	scope.Bind(table.Name, table.Name)

	if whereClause, ok := firstChildRule(stmt, "WhereClause"); ok {
		if cond, ok := firstConditionChild(whereClause); ok {
			a.inferCondition(cond, scope)
		}
	}
}
