package commands

import (
	"fmt"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// expandTable turns a table name or alias into alias.*; anything else is
// returned as is.
func expandTable(stmt *core.Statement, v string) (string, error) {
	switch {
	case stmt.IsTable(v):
		alias, err := stmt.Alias(v)
		if err != nil {
			return "", err
		}
		return alias + ".*", nil
	case stmt.IsAlias(v):
		return v + ".*", nil
	}
	return v, nil
}

// Print sets the select list. Tables and aliases select all their columns.
//
// Syntax:
//
//	print(column, table.column, table, ...)
type Print struct {
	core.Base

	columns []string
}

// NewPrint creates a print command.
func NewPrint(ctx core.Context) *Print {
	p := &Print{Base: core.NewBase(ctx)}
	p.Machine().TableOrColumn(0, func(v string) error {
		p.columns = append(p.columns, v)
		return nil
	}).Mandatory()
	return p
}

// Kind implements core.Command.
func (p *Print) Kind() core.Kind { return core.SelectKind }

// Execute implements core.Command.
func (p *Print) Execute() error {
	stmt := p.Statement()
	columns := make([]string, 0, len(p.columns))
	for _, c := range p.columns {
		col, err := expandTable(stmt, c)
		if err != nil {
			return err
		}
		columns = append(columns, col)
	}
	return stmt.SetSelect(columns...)
}

// Distinct sets a SELECT DISTINCT list. Without arguments it only makes the
// current select distinct.
//
// Syntax:
//
//	distinct(column, table, ...)
//	distinct()
type Distinct struct {
	core.Base

	columns []string
}

// NewDistinct creates a distinct command.
func NewDistinct(ctx core.Context) *Distinct {
	d := &Distinct{Base: core.NewBase(ctx)}
	m := d.Machine()
	m.TableOrColumn(0, func(v string) error {
		d.columns = append(d.columns, v)
		return nil
	})
	m.PermitEmpty()
	return d
}

// Kind implements core.Command.
func (d *Distinct) Kind() core.Kind { return core.SelectKind }

// Execute implements core.Command.
func (d *Distinct) Execute() error {
	stmt := d.Statement()
	if len(d.columns) > 0 {
		columns := make([]string, 0, len(d.columns))
		for _, c := range d.columns {
			col, err := expandTable(stmt, c)
			if err != nil {
				return err
			}
			columns = append(columns, col)
		}
		if err := stmt.SetSelect(columns...); err != nil {
			return err
		}
	}
	stmt.MakeDistinct()
	return nil
}

// Group selects and groups by the given columns.
//
// Syntax:
//
//	group(column, table.column, ...)
type Group struct {
	core.Base

	columns []string
}

// NewGroup creates a group command.
func NewGroup(ctx core.Context) *Group {
	g := &Group{Base: core.NewBase(ctx)}
	g.Machine().TableOrColumn(0, func(v string) error {
		g.columns = append(g.columns, v)
		return nil
	}).Mandatory()
	return g
}

// Kind implements core.Command.
func (g *Group) Kind() core.Kind { return core.SelectKind }

// Execute implements core.Command.
func (g *Group) Execute() error {
	stmt := g.Statement()
	if err := stmt.SetSelect(g.columns...); err != nil {
		return err
	}
	return stmt.SetGroupBy(g.columns...)
}

// Aggregate selects an aggregate function, optionally grouped.
//
// Syntax:
//
//	sum(column | number, groupColumn, ...)
//
// min, max, avg and count share the syntax.
type Aggregate struct {
	core.Base

	function string
	argument string
	columns  []string
}

// NewAggregate creates an aggregate command for function, e.g. "SUM".
func NewAggregate(ctx core.Context, function string) *Aggregate {
	a := &Aggregate{Base: core.NewBase(ctx), function: function}
	m := a.Machine()
	m.TableOrColumn(0, func(v string) error { a.argument = v; return nil }).Single().Mandatory()
	m.TableOrColumn(1, func(v string) error {
		a.columns = append(a.columns, v)
		return nil
	})
	return a
}

func aggregateFactory(function string) core.Factory {
	return func(ctx core.Context) core.Command { return NewAggregate(ctx, function) }
}

// Kind implements core.Command.
func (a *Aggregate) Kind() core.Kind { return core.SelectKind }

// Execute implements core.Command.
func (a *Aggregate) Execute() error {
	stmt := a.Statement()

	selected := make([]string, 0, len(a.columns)+1)
	selected = append(selected, a.columns...)
	selected = append(selected, fmt.Sprintf("%s( %s )", a.function, a.argument))
	if err := stmt.SetSelect(selected...); err != nil {
		return err
	}

	if len(a.columns) == 0 {
		return nil
	}
	return stmt.SetGroupBy(a.columns...)
}

// Order sets the ORDER BY clause.
//
// Syntax:
//
//	asc(column, table.column, ...)
//	desc(column, table.column, ...)
type Order struct {
	core.Base

	direction string
	columns   []string
}

// NewOrder creates an order command with direction "ASC" or "DESC".
func NewOrder(ctx core.Context, direction string) *Order {
	o := &Order{Base: core.NewBase(ctx), direction: direction}
	o.Machine().TableOrColumn(0, func(v string) error {
		o.columns = append(o.columns, v)
		return nil
	}).Mandatory()
	return o
}

func orderFactory(direction string) core.Factory {
	return func(ctx core.Context) core.Command { return NewOrder(ctx, direction) }
}

// Kind implements core.Command.
func (o *Order) Kind() core.Kind { return core.OrderKind }

// Execute implements core.Command.
func (o *Order) Execute() error {
	return o.Statement().SetOrderBy(o.direction, o.columns...)
}
