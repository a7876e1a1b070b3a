package commands

import (
	"strconv"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Ref resolves the nth instance of a table to its alias. It can only be
// used as an argument where a table or column is expected.
//
// Syntax:
//
//	ref(table, n)
//	ref(table.column, n)
type Ref struct {
	core.Base

	target    string
	reference string
	result    string
}

// NewRef creates a ref command.
func NewRef(ctx core.Context) *Ref {
	r := &Ref{Base: core.NewBase(ctx)}
	m := r.Machine()
	m.Literal(0, func(v string) error { r.target = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { r.reference = v; return nil }).Single().Mandatory()
	return r
}

// Kind implements core.Command.
func (r *Ref) Kind() core.Kind { return core.RefKind }

// Reference implements core.Referencer.
func (r *Ref) Reference() string { return r.result }

// Execute implements core.Command.
func (r *Ref) Execute() error {
	table, column, err := core.SplitTableColumn(r.target)
	if err != nil {
		return err
	}

	stmt := r.Statement()
	if !stmt.IsTable(table) {
		return core.Errorf(core.UnresolvedTable, core.ErrNonExistingTable, table)
	}

	if !core.IsNumeric(r.reference) {
		return core.Errorf(core.TableReference, core.ErrReferenceNotNumeric, r.reference)
	}
	n, err := strconv.Atoi(r.reference)
	if err != nil {
		return core.Errorf(core.TableReference, core.ErrReferenceNotNumeric, r.reference)
	}
	if n < 1 {
		return core.Errorf(core.TableReference, core.ErrReferenceBelowOne, r.reference)
	}

	alias, ok := stmt.Instance(table, n)
	if !ok {
		return core.Errorf(core.TableReference, core.ErrReferenceNotCorrect, r.reference)
	}

	r.result = alias
	if column != "" {
		r.result += "." + column
	}
	return nil
}

// NewTable adds another instance of a table under a fresh alias. It can
// only be used as an argument of a join.
//
// Syntax:
//
//	newtable(table)
type NewTable struct {
	core.Base

	table string
	alias string
}

// NewNewTable creates a newtable command.
func NewNewTable(ctx core.Context) *NewTable {
	n := &NewTable{Base: core.NewBase(ctx)}
	n.Machine().TableOrColumn(0, func(v string) error {
		if err := core.CheckName(v); err != nil {
			return err
		}
		n.table = v
		return nil
	}).Single().Mandatory()
	return n
}

// Kind implements core.Command.
func (n *NewTable) Kind() core.Kind { return core.NewTableKind }

// Instance returns the table and its new alias. Valid after Execute.
func (n *NewTable) Instance() core.TableRef {
	return core.TableRef{Table: n.table, Alias: n.alias}
}

// Execute implements core.Command.
func (n *NewTable) Execute() error {
	n.alias = n.Statement().NewAlias(n.table)
	return nil
}
