package symtab_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlcore/frontend/symtab"
	"github.com/sqlcore/frontend/syntax"
)

func usersTable() *symtab.Table {
	return &symtab.Table{
		Name: "Users",
		Columns: []symtab.Column{
			{Name: "id", DeclaredType: syntax.INTEGER, TypeName: "INTEGER", Ordinal: 0,
				Constraints: []symtab.Constraint{{Kind: symtab.PrimaryKey}}},
			{Name: "name", DeclaredType: syntax.TEXT, TypeName: "TEXT", Ordinal: 1,
				Constraints: []symtab.Constraint{{Kind: symtab.NotNull}}},
		},
	}
}

func TestDefineAndLookupCaseInsensitive(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())

	tbl, ok := sym.Lookup("USERS")
	require.True(t, ok)
	assert.Equal(t, "Users", tbl.Name)

	_, ok = sym.Lookup("orders")
	assert.False(t, ok)
}

func TestDefineOverwritesExisting(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())
	sym.Define(&symtab.Table{Name: "users", Columns: []symtab.Column{{Name: "id", DeclaredType: syntax.INTEGER}}})

	tbl, ok := sym.Lookup("Users")
	require.True(t, ok)
	assert.Len(t, tbl.Columns, 1)
	// overwriting an existing key must not append a second declaration-order entry.
	assert.Len(t, sym.Tables(), 1)
}

func TestDropReportsExistence(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())

	assert.True(t, sym.Drop("users"))
	assert.False(t, sym.Drop("users"))
	_, ok := sym.Lookup("Users")
	assert.False(t, ok)
}

func TestTablesPreservesDeclarationOrder(t *testing.T) {
	sym := symtab.New()
	sym.Define(&symtab.Table{Name: "Zeta"})
	sym.Define(&symtab.Table{Name: "Alpha"})
	sym.Define(&symtab.Table{Name: "Mid"})

	names := make([]string, 0, 3)
	for _, tbl := range sym.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"Zeta", "Alpha", "Mid"}, names)
}

func TestDropRemovesFromDeclarationOrder(t *testing.T) {
	sym := symtab.New()
	sym.Define(&symtab.Table{Name: "A"})
	sym.Define(&symtab.Table{Name: "B"})
	sym.Define(&symtab.Table{Name: "C"})
	sym.Drop("B")

	var names []string
	for _, tbl := range sym.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"A", "C"}, names)
}

func TestColumnByNameCaseInsensitive(t *testing.T) {
	tbl := usersTable()
	col, ok := tbl.ColumnByName("NAME")
	require.True(t, ok)
	assert.Equal(t, syntax.TEXT, col.DeclaredType)

	_, ok = tbl.ColumnByName("missing")
	assert.False(t, ok)
}

func TestColumnHasConstraint(t *testing.T) {
	tbl := usersTable()
	idCol, _ := tbl.ColumnByName("id")
	assert.True(t, idCol.HasConstraint(symtab.PrimaryKey))
	assert.False(t, idCol.HasConstraint(symtab.Unique))
}

func TestConstraintKindString(t *testing.T) {
	cases := map[symtab.ConstraintKind]string{
		symtab.PrimaryKey: "PRIMARY_KEY",
		symtab.NotNull:    "NOT_NULL",
		symtab.Unique:     "UNIQUE",
		symtab.Default:    "DEFAULT",
		symtab.Check:      "CHECK",
		symtab.ForeignKey: "FOREIGN_KEY",
	}
	for kind, want := range cases {
		assert.Equal(t, want, kind.String())
	}
}

func TestTypeFromName(t *testing.T) {
	cases := map[string]syntax.Type{
		"INTEGER": syntax.INTEGER,
		"INT":     syntax.INTEGER,
		"FLOAT":   syntax.FLOAT,
		"DECIMAL": syntax.FLOAT,
		"NUMERIC": syntax.FLOAT,
		"TEXT":    syntax.TEXT,
		"VARCHAR": syntax.TEXT,
		"BOOLEAN": syntax.BOOLEAN,
		"DATE":    syntax.DATE,
		"bogus":   syntax.UNKNOWN,
	}
	for name, want := range cases {
		assert.Equalf(t, want, symtab.TypeFromName(name), "TypeFromName(%q)", name)
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())
	sym.Define(&symtab.Table{
		Name: "Orders",
		Columns: []symtab.Column{
			{Name: "order_id", DeclaredType: syntax.INTEGER, TypeName: "INTEGER", Ordinal: 0},
			{Name: "user_id", DeclaredType: syntax.INTEGER, TypeName: "INTEGER", Ordinal: 1,
				Constraints: []symtab.Constraint{{Kind: symtab.ForeignKey, RefTable: "Users", RefColumn: "id"}}},
		},
	})

	data, err := sym.Marshal()
	require.NoError(t, err)

	restored := symtab.New()
	require.NoError(t, restored.Unmarshal(data))

	names := make([]string, 0, 2)
	for _, tbl := range restored.Tables() {
		names = append(names, tbl.Name)
	}
	assert.Equal(t, []string{"Users", "Orders"}, names)

	orders, ok := restored.Lookup("orders")
	require.True(t, ok)
	userIDCol, ok := orders.ColumnByName("user_id")
	require.True(t, ok)
	assert.Equal(t, syntax.INTEGER, userIDCol.DeclaredType)
	require.True(t, userIDCol.HasConstraint(symtab.ForeignKey))
}

func TestScopeBindAndResolve(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())

	scope := symtab.NewScope(sym)
	scope.Bind("u", "Users")
	scope.Bind("Users", "Users")

	tbl, ok := scope.Resolve("U")
	require.True(t, ok)
	assert.Equal(t, "Users", tbl.Name)

	_, ok = scope.Resolve("nope")
	assert.False(t, ok)
}

func TestScopeTablesDedupsAliasesOfSameTable(t *testing.T) {
	sym := symtab.New()
	sym.Define(usersTable())

	scope := symtab.NewScope(sym)
	scope.Bind("u", "Users")
	scope.Bind("Users", "Users")

	assert.Len(t, scope.Tables(), 1)
}
