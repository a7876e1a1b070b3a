package core

import "github.com/leapstack-labs/funcsql/pkg/relation"

// Kind is the category of a command. Allow-lists of command consumers
// are expressed in kinds, so plug-in commands take part by declaring one.
type Kind int

// Command kinds.
const (
	StatementKind Kind = iota
	JoinKind
	NewTableKind
	RefKind
	FilterKind
	LogicKind
	SelectKind
	OrderKind
)

var kindNames = map[Kind]string{
	StatementKind: "statement",
	JoinKind:      "join",
	NewTableKind:  "newtable",
	RefKind:       "ref",
	FilterKind:    "filter",
	LogicKind:     "logic",
	SelectKind:    "select",
	OrderKind:     "order",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is a unit of the language. The compiler feeds arguments through
// Machine and calls Execute once the closing bracket has been read.
type Command interface {
	Name() string
	Kind() Kind
	Machine() *Machine
	Execute() error
}

// Factory creates a fresh command instance for one call site.
type Factory func(ctx Context) Command

// Sink receives generated filter clauses.
type Sink interface {
	AddFilter(clause string)
}

// TableRef is a table instance in a statement.
type TableRef struct {
	Table string
	Alias string
}

// IsZero reports whether the reference is unset.
func (r TableRef) IsZero() bool { return r.Table == "" && r.Alias == "" }

// Context is everything a command may touch, handed over at construction.
type Context struct {
	// Name is the name the command was called by.
	Name string
	// Statement is the innermost statement enclosing the call.
	Statement *Statement
	// Sink is where filter clauses go; the statement unless redirected
	// by a logical command.
	Sink Sink
	// Drive is the table nested joins attach to.
	Drive TableRef
	// Relations is the compiler's join knowledge base.
	Relations *relation.Table
}

// Scoper is implemented by commands that open a new statement scope for
// their arguments.
type Scoper interface {
	Scope() *Statement
}

// SinkProvider is implemented by commands that collect the filter clauses
// of their nested commands.
type SinkProvider interface {
	Sink() Sink
}

// DriveProvider is implemented by commands that nested joins attach to.
type DriveProvider interface {
	Drive() TableRef
}

// Referencer is implemented by commands whose result is a plain
// table or column reference instead of a command.
type Referencer interface {
	Reference() string
}

// Base supplies the bookkeeping shared by all commands.
type Base struct {
	ctx     Context
	machine *Machine
}

// NewBase creates the base for a command built with ctx.
func NewBase(ctx Context) Base {
	return Base{ctx: ctx, machine: NewMachine(ctx.Name)}
}

// Name returns the name the command was called by.
func (b *Base) Name() string { return b.ctx.Name }

// Machine returns the argument state machine.
func (b *Base) Machine() *Machine { return b.machine }

// Context returns the construction context.
func (b *Base) Context() Context { return b.ctx }

// Statement returns the innermost enclosing statement.
func (b *Base) Statement() *Statement { return b.ctx.Statement }

// ClauseSink returns where the command's filter clauses go.
func (b *Base) ClauseSink() Sink {
	if b.ctx.Sink != nil {
		return b.ctx.Sink
	}
	if b.ctx.Statement != nil {
		return b.ctx.Statement
	}
	return discardSink{}
}

type discardSink struct{}

func (discardSink) AddFilter(string) {}
