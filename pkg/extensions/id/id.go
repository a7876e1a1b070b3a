// Package id is an example extension command. It filters tables that carry
// an integer id column:
//
//	id(value)         id = value
//	id(table, value)  alias.id = value
//
// Install it on a compiler with Install.
package id

import (
	"strconv"

	"github.com/leapstack-labs/funcsql/pkg/compiler"
	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Name is the command name Install registers.
const Name = "id"

// ErrNotNumerical is the message for a non-integer id value.
const ErrNotNumerical = "Argument (%s) should be nummerical."

// Column is the filtered column.
const Column = "id"

// ID is the id command.
type ID struct {
	core.Base

	first  string
	second string
}

// New creates an id command.
func New(ctx core.Context) core.Command {
	c := &ID{Base: core.NewBase(ctx)}
	m := c.Machine()
	m.TableOrColumn(0, func(v string) error { c.first = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { c.second = v; return nil }).Single()
	return c
}

// Install registers the id command on c.
func Install(c *compiler.Compiler) {
	c.Register(Name, New)
}

// Kind implements core.Command.
func (c *ID) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (c *ID) Execute() error {
	column, value := Column, c.first
	if c.second != "" {
		value = c.second
	}

	if _, err := strconv.Atoi(value); err != nil {
		return core.Errorf(core.InvalidValue, ErrNotNumerical, value)
	}

	if c.second != "" {
		stmt := c.Statement()
		if !stmt.IsTable(c.first) {
			return core.Errorf(core.UnresolvedTable, core.ErrNonExistingTable, c.first)
		}
		alias, err := stmt.Alias(c.first)
		if err != nil {
			return err
		}
		column = alias + "." + Column
	}

	c.ClauseSink().AddFilter(column + " = " + value)
	return nil
}
