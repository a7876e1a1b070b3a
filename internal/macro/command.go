package macro

import (
	"go.starlark.net/starlark"

	starctx "github.com/leapstack-labs/funcsql/internal/starlark"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Messages of macro failures.
const (
	ErrMacroFailed = "Macro (%s) failed: %s."
	ErrMacroResult = "Macro (%s) returned an invalid clause: %s."
	ErrMacroTooFew = "Macro (%s) needs at least %d values."
)

// Command calls a Starlark function and adds the returned clauses to the
// enclosing filter sink.
//
//	dates.since(column, value, ...)
type Command struct {
	core.Base

	fn     function
	pool   *starctx.ThreadPool
	column string
	values []string
}

func newCommand(ctx core.Context, fn function, pool *starctx.ThreadPool) *Command {
	c := &Command{Base: core.NewBase(ctx), fn: fn, pool: pool}
	m := c.Machine()
	m.TableOrColumn(0, func(v string) error { c.column = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { c.values = append(c.values, v); return nil })
	return c
}

// Kind implements core.Command.
func (c *Command) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (c *Command) Execute() error {
	if err := c.fn.sig.checkArgs(c.Name(), 1+len(c.values)); err != nil {
		return err
	}

	thread := c.pool.Get(c.Name())
	args := starctx.Tuple(append([]string{c.column}, c.values...)...)

	result, err := starlark.Call(thread, c.fn.fn, args, nil)
	if err != nil {
		msg := err.Error()
		if evalErr, ok := err.(*starlark.EvalError); ok {
			msg = evalErr.Msg
		}
		return core.Errorf(core.InvalidValue, ErrMacroFailed, c.Name(), msg)
	}
	c.pool.Put(thread)

	clauses, err := starctx.Strings(result)
	if err != nil {
		return core.Errorf(core.InvalidValue, ErrMacroResult, c.Name(), err)
	}

	sink := c.ClauseSink()
	for _, clause := range clauses {
		sink.AddFilter(clause)
	}
	return nil
}
