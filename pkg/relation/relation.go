// Package relation holds the join-path knowledge base: declared equi-join
// column pairs between two tables plus at most one default pair usable
// between any two tables.
package relation

import (
	"errors"
	"sync"
)

// ErrDefaultColumnsDiffer is returned when a default relation names two
// different columns.
var ErrDefaultColumnsDiffer = errors.New("Default relation has no equal columns.") //nolint:staticcheck // message is user facing

// Relation is a declared equi-join between Table1.Column1 and Table2.Column2.
// A default relation has empty table names and equal columns.
type Relation struct {
	Table1  string
	Column1 string
	Table2  string
	Column2 string
}

// IsDefault reports whether r applies between any two tables.
func (r Relation) IsDefault() bool {
	return r.Table1 == "" && r.Table2 == "" && r.Column1 == r.Column2
}

// Column returns the join column of r on the side of table.
// It returns an empty string if table is on neither side.
func (r Relation) Column(table string) string {
	switch {
	case r.IsDefault():
		return r.Column1
	case r.Table1 == table:
		return r.Column1
	case r.Table2 == table:
		return r.Column2
	}
	return ""
}

// matches checks the table pair in both directions. When driveColumn is set
// it must be the column on the drive side.
func (r Relation) matches(driveTable, driveColumn, joinTable string) bool {
	forward := r.Table1 == driveTable && r.Table2 == joinTable
	backward := r.Table2 == driveTable && r.Table1 == joinTable
	if !forward && !backward {
		return false
	}
	if driveColumn == "" {
		return true
	}
	return (r.Table1 == driveTable && r.Column1 == driveColumn) ||
		(r.Table2 == driveTable && r.Column2 == driveColumn)
}

// Table is an ordered, duplicate-free set of relations.
type Table struct {
	mu        sync.RWMutex
	relations []Relation
	def       *Relation
}

// NewTable creates an empty relation table.
func NewTable() *Table {
	return &Table{}
}

// Add declares a relation between table1.column1 and table2.column2.
// Adding an existing relation is a no-op.
func (t *Table) Add(table1, column1, table2, column2 string) error {
	r := Relation{Table1: table1, Column1: column1, Table2: table2, Column2: column2}
	if table1 == "" && table2 == "" {
		return t.addDefault(r)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, existing := range t.relations {
		if existing == r {
			return nil
		}
	}
	t.relations = append(t.relations, r)
	return nil
}

// AddDefault declares the default relation. Both columns must be equal.
// A later default replaces an earlier one.
func (t *Table) AddDefault(column1, column2 string) error {
	return t.addDefault(Relation{Column1: column1, Column2: column2})
}

func (t *Table) addDefault(r Relation) error {
	if r.Column1 != r.Column2 {
		return ErrDefaultColumnsDiffer
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.def = &r
	return nil
}

// Lookup finds the relation joining driveTable to joinTable. driveColumn is
// optional; when set, only relations using it on the drive side qualify.
// Declared relations win over the default relation.
func (t *Table) Lookup(driveTable, driveColumn, joinTable string) (Relation, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, r := range t.relations {
		if r.matches(driveTable, driveColumn, joinTable) {
			return r, true
		}
	}

	if t.def != nil && (driveColumn == "" || t.def.Column1 == driveColumn) {
		return *t.def, true
	}
	return Relation{}, false
}

// All returns a copy of the declared relations followed by the default
// relation, if any.
func (t *Table) All() []Relation {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Relation, 0, len(t.relations)+1)
	out = append(out, t.relations...)
	if t.def != nil {
		out = append(out, *t.def)
	}
	return out
}

// Len returns the number of relations including the default relation.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n := len(t.relations)
	if t.def != nil {
		n++
	}
	return n
}
