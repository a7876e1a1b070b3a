package commands

import (
	"strings"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Logic combines the clauses of nested filter commands with OR or AND.
//
// Syntax:
//
//	or(filter(...), like(...), and(...), ...)
//	and(filter(...), ...)
//
// Nested commands write into the command's own buffer; the combined
// clause goes to the enclosing sink, so logic commands nest.
type Logic struct {
	core.Base

	operator string
	buffer   *clauseBuffer
}

// NewLogic creates a logic command with operator "OR" or "AND".
func NewLogic(ctx core.Context, operator string) *Logic {
	l := &Logic{Base: core.NewBase(ctx), operator: operator, buffer: &clauseBuffer{}}
	l.Machine().Command(0, nil).Mandatory().Accept(core.FilterKind, core.LogicKind)
	return l
}

func logicFactory(operator string) core.Factory {
	return func(ctx core.Context) core.Command { return NewLogic(ctx, operator) }
}

// Kind implements core.Command.
func (l *Logic) Kind() core.Kind { return core.LogicKind }

// Sink implements core.SinkProvider.
func (l *Logic) Sink() core.Sink { return l.buffer }

// Execute implements core.Command.
func (l *Logic) Execute() error {
	if len(l.buffer.clauses) == 0 {
		return nil
	}
	clause := "( " + strings.Join(l.buffer.clauses, " "+l.operator+" ") + " )"
	l.ClauseSink().AddFilter(clause)
	return nil
}

// clauseBuffer is a private, deduplicating clause sink.
type clauseBuffer struct {
	clauses []string
}

func (b *clauseBuffer) AddFilter(clause string) {
	for _, c := range b.clauses {
		if c == clause {
			return
		}
	}
	b.clauses = append(b.clauses, clause)
}

// In filters a column on the result of a subquery. The subquery keeps its
// own aliases and is never merged into the enclosing statement.
//
// Syntax:
//
//	in(column, (statement))
type In struct {
	core.Base

	column   string
	subquery string
}

// NewIn creates an in command.
func NewIn(ctx core.Context) *In {
	i := &In{Base: core.NewBase(ctx)}
	m := i.Machine()
	m.TableOrColumn(0, func(v string) error { i.column = v; return nil }).Single().Mandatory()
	m.Command(1, func(cmd core.Command) error {
		stmt, ok := cmd.(*core.Statement)
		if !ok {
			return core.Invariantf("in subquery from %T", cmd)
		}
		i.subquery = stmt.SQL()
		return nil
	}).Single().Mandatory().Accept(core.StatementKind)
	return i
}

// Kind implements core.Command.
func (i *In) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (i *In) Execute() error {
	i.ClauseSink().AddFilter(i.column + " IN (" + i.subquery + ")")
	return nil
}
