// Package symtab implements the persistent, process-lived symbol
// table the semantic analyzer mutates and consults: tables, their
// columns, and column-level constraints.
package symtab

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sqlcore/frontend/syntax"
	"github.com/sqlcore/frontend/token"
)

// ConstraintKind enumerates the column-constraint set from spec.md
// §3's Column Descriptor: PRIMARY_KEY, NOT_NULL, UNIQUE, DEFAULT,
// CHECK, FOREIGN_KEY.
type ConstraintKind uint8

const (
	PrimaryKey ConstraintKind = iota
	NotNull
	Unique
	Default
	Check
	ForeignKey
)

func (k ConstraintKind) String() string {
	switch k {
	case PrimaryKey:
		return "PRIMARY_KEY"
	case NotNull:
		return "NOT_NULL"
	case Unique:
		return "UNIQUE"
	case Default:
		return "DEFAULT"
	case Check:
		return "CHECK"
	case ForeignKey:
		return "FOREIGN_KEY"
	default:
		return "UNKNOWN"
	}
}

// Constraint is one member of a Column's constraint set. Value holds
// the DEFAULT expression text or the CHECK expression text; RefTable/
// RefColumn hold a FOREIGN_KEY's target.
type Constraint struct {
	Kind      ConstraintKind `yaml:"kind"`
	Value     string         `yaml:"value,omitempty"`
	RefTable  string         `yaml:"ref_table,omitempty"`
	RefColumn string         `yaml:"ref_column,omitempty"`
}

// Column is a Column Descriptor: name, declared type, its constraint
// set, and its 0-based ordinal within the owning table.
type Column struct {
	Name        string         `yaml:"name"`
	DeclaredType syntax.Type   `yaml:"-"`
	TypeName    string         `yaml:"declared_type"`
	Constraints []Constraint   `yaml:"constraints,omitempty"`
	Ordinal     int            `yaml:"ordinal"`
}

// HasConstraint reports whether c carries a constraint of kind k.
func (c Column) HasConstraint(k ConstraintKind) bool {
	for _, con := range c.Constraints {
		if con.Kind == k {
			return true
		}
	}
	return false
}

// Table is a Table Descriptor: an ordered column sequence plus the
// position of the DDL statement that declared it.
type Table struct {
	Name       string         `yaml:"name"`
	Columns    []Column       `yaml:"columns"`
	DeclaredAt token.Position `yaml:"declared_at"`
	// IsView marks a Table synthesized from CREATE VIEW's projection
	// rather than an explicit column list (spec.md §3: "Views are
	// recorded as tables...").
	IsView bool `yaml:"is_view,omitempty"`
}

// ColumnByName performs a case-insensitive lookup within t.
func (t *Table) ColumnByName(name string) (Column, bool) {
	norm := strings.ToUpper(name)
	for _, c := range t.Columns {
		if strings.ToUpper(c.Name) == norm {
			return c, true
		}
	}
	return Column{}, false
}

// SymbolTable is the persistent symbol table: an unqualified-table-name to
// Table Descriptor map, case-insensitive on the key. It is owned by a
// single Driver invocation for the invocation's lifetime (spec.md §5).
type SymbolTable struct {
	tables map[string]*Table
	// order preserves declaration order for deterministic dumps/YAML
	// round-trips independent of Go's unordered map iteration.
	order []string
}

// New returns an empty symbol table.
func New() *SymbolTable {
	return &SymbolTable{tables: make(map[string]*Table)}
}

func normalize(name string) string { return strings.ToUpper(name) }

// Lookup resolves a table by unqualified name, case-insensitively.
func (s *SymbolTable) Lookup(name string) (*Table, bool) {
	t, ok := s.tables[normalize(name)]
	return t, ok
}

// Define registers a new table. The caller (semantic.Analyzer) is
// responsible for the SEM_DUPLICATE existence check before calling
// this — Define itself unconditionally overwrites.
func (s *SymbolTable) Define(t *Table) {
	key := normalize(t.Name)
	if _, exists := s.tables[key]; !exists {
		s.order = append(s.order, key)
	}
	s.tables[key] = t
}

// Drop removes a table, reporting whether it existed.
func (s *SymbolTable) Drop(name string) bool {
	key := normalize(name)
	if _, ok := s.tables[key]; !ok {
		return false
	}
	delete(s.tables, key)
	for i, k := range s.order {
		if k == key {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Tables returns every table in declaration order.
func (s *SymbolTable) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.tables[k])
	}
	return out
}

// yamlTable is the on-disk shape for Marshal/Unmarshal: a plain
// ordered list rather than a map, so declaration order survives a
// round-trip.
type yamlTable struct {
	Tables []Table `yaml:"tables"`
}

// Marshal serializes the symbol table to YAML, preserving declaration
// order — used by a long-lived Driver session to snapshot schema
// state between process runs (SPEC_FULL.md §3).
func (s *SymbolTable) Marshal() ([]byte, error) {
	doc := yamlTable{}
	for _, t := range s.Tables() {
		doc.Tables = append(doc.Tables, *t)
	}
	return yaml.Marshal(doc)
}

// Unmarshal replaces s's contents with the tables encoded in data.
func (s *SymbolTable) Unmarshal(data []byte) error {
	var doc yamlTable
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.tables = make(map[string]*Table)
	s.order = nil
	for i := range doc.Tables {
		t := doc.Tables[i]
		for ci := range t.Columns {
			t.Columns[ci].DeclaredType = TypeFromName(t.Columns[ci].TypeName)
		}
		s.Define(&t)
	}
	return nil
}

// TypeFromName maps a DataType keyword (INTEGER/INT/FLOAT/DECIMAL/
// NUMERIC/TEXT/VARCHAR/BOOLEAN/DATE) to its syntax.Type, used both by
// YAML deserialization and by the semantic stage's column-descriptor
// construction from a fresh CREATE TABLE/ALTER TABLE.
func TypeFromName(name string) syntax.Type {
	switch strings.ToUpper(name) {
	case "INTEGER", "INT":
		return syntax.INTEGER
	case "FLOAT", "DECIMAL", "NUMERIC":
		return syntax.FLOAT
	case "TEXT", "VARCHAR":
		return syntax.TEXT
	case "BOOLEAN":
		return syntax.BOOLEAN
	case "DATE":
		return syntax.DATE
	default:
		return syntax.UNKNOWN
	}
}

// Scope is a per-statement alias→table-name map plus the ambient
// symbol table it was built from (spec.md §3's Scope).
type Scope struct {
	Symbols *SymbolTable
	aliases map[string]string
}

// NewScope builds an empty per-statement scope over sym.
func NewScope(sym *SymbolTable) *Scope {
	return &Scope{Symbols: sym, aliases: make(map[string]string)}
}

// Bind records alias → tableName (alias may equal tableName when a
// TableRef has no explicit AS clause — callers should always bind the
// bare table name too, so unqualified resolution can treat it like an
// alias of itself).
func (s *Scope) Bind(alias, tableName string) {
	s.aliases[normalize(alias)] = tableName
}

// Resolve maps an alias or bare table name to its Table Descriptor.
func (s *Scope) Resolve(alias string) (*Table, bool) {
	tableName, ok := s.aliases[normalize(alias)]
	if !ok {
		return nil, false
	}
	return s.Symbols.Lookup(tableName)
}

// Tables returns the Table Descriptors bound into scope, in bind
// order is not preserved (map-backed) — callers needing deterministic
// order should track their own FROM-list sequence.
func (s *Scope) Tables() []*Table {
	seen := make(map[string]bool)
	var out []*Table
	for _, tableName := range s.aliases {
		key := normalize(tableName)
		if seen[key] {
			continue
		}
		seen[key] = true
		if t, ok := s.Symbols.Lookup(tableName); ok {
			out = append(out, t)
		}
	}
	return out
}
