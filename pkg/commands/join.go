package commands

import (
	"fmt"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// JoinType selects how a join is rendered.
type JoinType string

// Join types. ImplicitJoin adds the table to FROM and the equality to WHERE.
const (
	ImplicitJoin JoinType = ""
	InnerJoin    JoinType = "INNER"
	LeftJoin     JoinType = "LEFT"
	RightJoin    JoinType = "RIGHT"
	FullJoin     JoinType = "FULL"
)

// Join attaches a table to the drive table.
//
// Syntax:
//
//	join(table)
//	join(table, driveColumn)
//	join(table, driveColumn, joinColumn)
//	join(table, join(...), ...)
//	join(table, driveColumn, joinColumn, join(...), ...)
//
// The table may also be newtable(t) or a nested statement. Nested joins
// attach to this join's table.
type Join struct {
	core.Base

	typ         JoinType
	drive       core.TableRef
	table       string
	alias       string
	driveColumn string
	joinColumn  string
}

// NewJoin creates a join of the given type.
func NewJoin(ctx core.Context, typ JoinType) *Join {
	j := &Join{Base: core.NewBase(ctx), typ: typ, drive: ctx.Drive}

	m := j.Machine()
	m.Literal(0, j.setTable).Single().Mandatory()
	m.Command(0, j.setTableCommand).Single().Accept(core.NewTableKind, core.StatementKind)

	m.Literal(1, func(v string) error { return setColumn(&j.driveColumn, v) }).Single()
	m.Jump(m.Command(1, nil).Accept(core.JoinKind), 3)

	m.Literal(2, func(v string) error { return setColumn(&j.joinColumn, v) }).Single()
	m.Jump(m.Command(2, nil).Accept(core.JoinKind), 3)

	m.Literal(3, func(v string) error {
		return core.Errorf(core.JoinOrder, core.ErrJoinShouldFollowJoin, v)
	})
	m.Command(3, nil).Accept(core.JoinKind)
	return j
}

func joinFactory(typ JoinType) core.Factory {
	return func(ctx core.Context) core.Command { return NewJoin(ctx, typ) }
}

// Kind implements core.Command.
func (j *Join) Kind() core.Kind { return core.JoinKind }

// Drive implements core.DriveProvider: nested joins attach to the join table.
func (j *Join) Drive() core.TableRef {
	return core.TableRef{Table: j.table, Alias: j.alias}
}

// Type returns the join type.
func (j *Join) Type() JoinType { return j.typ }

func setColumn(dst *string, v string) error {
	if err := core.CheckName(v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// setTable registers the alias right away so aliases follow source order.
func (j *Join) setTable(table string) error {
	if err := core.CheckName(table); err != nil {
		return err
	}
	alias, err := j.Statement().Alias(table)
	if err != nil {
		return err
	}
	j.table, j.alias = table, alias
	return nil
}

func (j *Join) setTableCommand(cmd core.Command) error {
	switch c := cmd.(type) {
	case *core.Statement:
		j.table = "(" + c.SQL() + ")"
		alias, err := j.Statement().Alias(j.table)
		if err != nil {
			return err
		}
		j.alias = alias
	case *NewTable:
		ref := c.Instance()
		j.table, j.alias = ref.Table, ref.Alias
	default:
		return core.Invariantf("join table from %T", cmd)
	}
	return nil
}

// Execute implements core.Command.
func (j *Join) Execute() error {
	if j.drive.IsZero() {
		return core.Errorf(core.MalformedName, core.ErrNullTable)
	}

	driveColumn, joinColumn := j.driveColumn, j.joinColumn
	if joinColumn == "" {
		rel := j.Context().Relations
		if rel == nil {
			return core.Errorf(core.NoRelation, core.ErrNoJoinColumns)
		}
		r, ok := rel.Lookup(j.drive.Table, driveColumn, j.table)
		if !ok {
			return core.Errorf(core.NoRelation, core.ErrNoJoinColumns)
		}
		joinColumn = r.Column(j.table)
		if driveColumn == "" {
			driveColumn = r.Column(j.drive.Table)
		}
		if joinColumn == "" || driveColumn == "" {
			return core.Invariantf("relation %+v has no column for %s or %s", r, j.drive.Table, j.table)
		}
	}

	cond := Equality(j.drive.Alias, driveColumn, j.alias, joinColumn)
	stmt := j.Statement()

	if j.typ == ImplicitJoin {
		stmt.AddFrom(j.table, j.alias)
		stmt.AddFilter(cond)
		return nil
	}

	stmt.AddJoin(fmt.Sprintf("%s JOIN %s %s ON %s", j.typ, j.table, j.alias, cond))
	return nil
}

// Equality renders an equi-join condition with the lower alias ordinal on
// the left.
func Equality(alias1, column1, alias2, column2 string) string {
	if core.Ordinal(alias1) < core.Ordinal(alias2) {
		return fmt.Sprintf("%s.%s = %s.%s", alias1, column1, alias2, column2)
	}
	return fmt.Sprintf("%s.%s = %s.%s", alias2, column2, alias1, column1)
}
