// Package compiler turns functional query notation into SQL.
//
// A source such as
//
//	a join(b) filter(b.kind, 'x') print(a.name)
//
// names a drive table followed by commands. The compiler tokenizes the
// source, parses it by recursive descent with every command driving its
// own argument state machine, and renders the root statement:
//
//	SELECT t0.name FROM a t0, b t1 WHERE t0.id = t1.id AND t1.kind = 'x'
package compiler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/funcsql/pkg/commands"
	"github.com/leapstack-labs/funcsql/pkg/core"
	"github.com/leapstack-labs/funcsql/pkg/lexer"
	"github.com/leapstack-labs/funcsql/pkg/relation"
)

// DefaultMaxDepth bounds the nesting of statements and commands.
const DefaultMaxDepth = 64

// Usage is the one-line grammar summary returned for "help".
const Usage = "<table> command1 command2 ..."

var (
	// ErrNoStatement is returned for empty source.
	ErrNoStatement = errors.New("no statement")
	// ErrHelp is returned when the source asks for help; its message is Usage.
	ErrHelp = errors.New(Usage)
)

// Compiler compiles functional query notation into SQL. A Compiler owns its
// command registry and relations; it compiles one source at a time.
type Compiler struct {
	registry  *Registry
	relations *relation.Table
	logger    *slog.Logger
	maxDepth  int
	defaults  bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger. Compilation events are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxDepth sets the maximum nesting depth.
func WithMaxDepth(depth int) Option {
	return func(c *Compiler) {
		if depth > 0 {
			c.maxDepth = depth
		}
	}
}

// WithoutDefaults starts the compiler with an empty command registry.
func WithoutDefaults() Option {
	return func(c *Compiler) {
		c.defaults = false
	}
}

// New creates a compiler with the built-in commands installed.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		registry:  NewRegistry(),
		relations: relation.NewTable(),
		logger:    slog.New(slog.DiscardHandler),
		maxDepth:  DefaultMaxDepth,
		defaults:  true,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.defaults {
		for name, factory := range commands.Defaults() {
			c.registry.Register(name, factory)
		}
	}
	return c
}

// Register adds a command, replacing any command of the same name.
func (c *Compiler) Register(name string, factory core.Factory) {
	c.registry.Register(name, factory)
	c.logger.Debug("registered command", slog.String("name", name))
}

// Rename rebinds a command to a new name. It fails if oldName is unknown.
func (c *Compiler) Rename(oldName, newName string) error {
	if err := c.registry.Rename(oldName, newName); err != nil {
		return err
	}
	c.logger.Debug("renamed command", slog.String("from", oldName), slog.String("to", newName))
	return nil
}

// Commands returns the registered command names (sorted).
func (c *Compiler) Commands() []string {
	return c.registry.List()
}

// AddRelation declares that table1.column1 joins table2.column2.
func (c *Compiler) AddRelation(table1, column1, table2, column2 string) error {
	if err := c.relations.Add(table1, column1, table2, column2); err != nil {
		return err
	}
	c.logger.Debug("added relation",
		slog.String("table1", table1), slog.String("column1", column1),
		slog.String("table2", table2), slog.String("column2", column2))
	return nil
}

// AddDefaultRelation declares the relation used between any two tables
// without a declared relation. Both columns must be equal.
func (c *Compiler) AddDefaultRelation(column1, column2 string) error {
	if err := c.relations.AddDefault(column1, column2); err != nil {
		return err
	}
	c.logger.Debug("added default relation", slog.String("column", column1))
	return nil
}

// Relations returns the compiler's relation table.
func (c *Compiler) Relations() *relation.Table {
	return c.relations
}

// Compile translates source into SQL. Syntax errors are *core.SyntaxError
// values carrying the source and the position of the offending token.
func (c *Compiler) Compile(source string) (string, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return "", ErrNoStatement
	}
	if strings.EqualFold(trimmed, "help") {
		return "", ErrHelp
	}

	c.logger.Debug("compiling", slog.String("source", source))

	p := &parser{
		registry:  c.registry,
		relations: c.relations,
		maxDepth:  c.maxDepth,
		tokens:    lexer.Tokenize(source + ")"),
	}

	sql, err := p.parseRoot()
	if err != nil {
		var se *core.SyntaxError
		if errors.As(err, &se) && se.Source == "" {
			se.Source = source
			se.Pos = p.last.Pos
		}
		c.logger.Debug("compile failed", slog.String("source", source), slog.Any("error", err))
		return "", err
	}

	c.logger.Debug("compiled", slog.String("source", source), slog.String("sql", sql))
	return sql, nil
}
