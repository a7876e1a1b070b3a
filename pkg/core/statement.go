package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// StatementName is the name statements report in error messages.
const StatementName = "statement"

const selectAll = "*"

type alias struct {
	name  string
	table string
}

type fromEntry struct {
	clause  string
	ordinal int
}

// Statement accumulates the clauses of one query scope and renders them
// into SQL. Its slot 0 takes the drive table or a nested statement; slot 1
// takes any number of commands.
type Statement struct {
	Base

	aliases  []alias
	from     []fromEntry
	joins    clauseSet
	filters  clauseSet
	selected string
	distinct bool
	groupBy  string
	orderBy  string

	sql string
}

// NewStatement creates an empty statement. ctx.Statement is the enclosing
// statement, nil for the root.
func NewStatement(ctx Context) *Statement {
	if ctx.Name == "" {
		ctx.Name = StatementName
	}
	s := &Statement{Base: NewBase(ctx)}

	m := s.Machine()
	m.TableOrColumn(0, s.setDriveTable).Single().Mandatory()
	m.Command(0, s.nest).Single().Accept(StatementKind)
	m.Literal(1, func(v string) error {
		return Errorf(UnknownCommand, ErrUnknownCommand, v)
	})
	m.Command(1, s.command).Accept(StatementKind, JoinKind, FilterKind, LogicKind, SelectKind, OrderKind)
	return s
}

// Kind implements Command.
func (s *Statement) Kind() Kind { return StatementKind }

// Scope implements Scoper.
func (s *Statement) Scope() *Statement { return s }

// Drive implements DriveProvider.
func (s *Statement) Drive() TableRef {
	if len(s.aliases) == 0 {
		return TableRef{}
	}
	return TableRef{Table: s.aliases[0].table, Alias: s.aliases[0].name}
}

func (s *Statement) setDriveTable(table string) error {
	if err := CheckName(table); err != nil {
		return err
	}
	a, err := s.Alias(table)
	if err != nil {
		return err
	}
	s.AddFrom(table, a)
	return nil
}

// nest takes a nested statement in drive position.
func (s *Statement) nest(cmd Command) error {
	child, ok := cmd.(*Statement)
	if !ok {
		return Invariantf("statement drive slot got %T", cmd)
	}
	if s.IsPlain() && len(s.aliases) == 0 {
		s.merge(child)
		return nil
	}
	derived := "(" + child.SQL() + ")"
	s.AddFrom(derived, s.NewAlias(derived))
	return nil
}

// command takes a command following the drive table.
func (s *Statement) command(cmd Command) error {
	if cmd.Kind() == StatementKind {
		return Errorf(UnknownCommand, ErrUnknownCommand, "(")
	}
	return nil
}

// merge copies the clauses and aliases of child into s.
func (s *Statement) merge(child *Statement) {
	s.aliases = append(s.aliases, child.aliases...)
	s.from = append(s.from, child.from...)
	s.joins.addAll(child.joins)
	s.filters.addAll(child.filters)
	s.selected = child.selected
	s.distinct = child.distinct
	s.groupBy = child.groupBy
	s.orderBy = child.orderBy
}

// IsPlain reports whether the statement has no join or filter content, in
// which case it is a pure table reference.
func (s *Statement) IsPlain() bool {
	return s.joins.len() == 0 && s.filters.len() == 0
}

// =============================================================================
// Aliases
// =============================================================================

// Alias returns the alias of table, registering a new one if the table has
// none yet. A table with several instances is ambiguous.
func (s *Statement) Alias(table string) (string, error) {
	if table == "" {
		return "", Errorf(MalformedName, ErrNullTable)
	}
	a, found, err := s.lookup(table)
	if err != nil {
		return "", err
	}
	if found {
		return a, nil
	}
	return s.NewAlias(table), nil
}

// Resolve returns the alias of an existing table. An alias resolves to
// itself, which is the only way to name a derived table.
func (s *Statement) Resolve(table string) (string, error) {
	a, found, err := s.lookup(table)
	if err != nil {
		return "", err
	}
	if found {
		return a, nil
	}
	if s.IsAlias(table) {
		return table, nil
	}
	return "", Errorf(UnresolvedTable, ErrNonExistingTable, table)
}

func (s *Statement) lookup(table string) (string, bool, error) {
	found := ""
	for _, a := range s.aliases {
		if a.table != table {
			continue
		}
		if found != "" {
			return "", false, Errorf(AmbiguousAlias, ErrMultipleInstances, table)
		}
		found = a.name
	}
	return found, found != "", nil
}

// NewAlias registers a new instance of table and returns its alias.
func (s *Statement) NewAlias(table string) string {
	name := "t" + strconv.Itoa(len(s.aliases))
	s.aliases = append(s.aliases, alias{name: name, table: table})
	return name
}

// Instance returns the alias of the nth (1-based) instance of table.
func (s *Statement) Instance(table string, n int) (string, bool) {
	i := 0
	for _, a := range s.aliases {
		if a.table != table {
			continue
		}
		i++
		if i == n {
			return a.name, true
		}
	}
	return "", false
}

// IsTable reports whether table has at least one alias.
func (s *Statement) IsTable(table string) bool {
	for _, a := range s.aliases {
		if a.table == table {
			return true
		}
	}
	return false
}

// IsAlias reports whether name is an alias of this statement.
func (s *Statement) IsAlias(name string) bool {
	for _, a := range s.aliases {
		if a.name == name {
			return true
		}
	}
	return false
}

// Tables returns the table instances in alias order.
func (s *Statement) Tables() []TableRef {
	out := make([]TableRef, len(s.aliases))
	for i, a := range s.aliases {
		out[i] = TableRef{Table: a.table, Alias: a.name}
	}
	return out
}

// Ordinal returns the number of an alias such as t3, or -1 if alias is not
// an alias name.
func Ordinal(alias string) int {
	if !strings.HasPrefix(alias, "t") {
		return -1
	}
	n, err := strconv.Atoi(alias[1:])
	if err != nil {
		return -1
	}
	return n
}

// =============================================================================
// Clauses
// =============================================================================

// AddFrom adds "table alias" to the FROM list.
func (s *Statement) AddFrom(table, alias string) {
	clause := table + " " + alias
	for _, f := range s.from {
		if f.clause == clause {
			return
		}
	}
	s.from = append(s.from, fromEntry{clause: clause, ordinal: Ordinal(alias)})
}

// AddJoin adds an explicit join clause.
func (s *Statement) AddJoin(clause string) { s.joins.add(clause) }

// AddFilter implements Sink.
func (s *Statement) AddFilter(clause string) { s.filters.add(clause) }

// SetSelect sets the select list. It fails if a select list is set already.
func (s *Statement) SetSelect(columns ...string) error {
	if s.selected != "" {
		return Errorf(ClauseDefined, ErrClauseAlreadyDefined, "Select", s.SelectClause())
	}
	s.selected = strings.Join(columns, ", ")
	return nil
}

// MakeDistinct turns the select clause into SELECT DISTINCT.
func (s *Statement) MakeDistinct() { s.distinct = true }

// SetGroupBy sets the GROUP BY columns.
func (s *Statement) SetGroupBy(columns ...string) error {
	if s.groupBy != "" {
		return Errorf(ClauseDefined, ErrClauseAlreadyDefined, "Group by", "GROUP BY "+s.groupBy)
	}
	s.groupBy = strings.Join(columns, ", ")
	return nil
}

// SetOrderBy sets the ORDER BY columns and direction.
func (s *Statement) SetOrderBy(direction string, columns ...string) error {
	if s.orderBy != "" {
		return Errorf(ClauseDefined, ErrClauseAlreadyDefined, "Order by", "ORDER BY "+s.orderBy)
	}
	s.orderBy = strings.Join(columns, ", ") + " " + direction
	return nil
}

// HasSelect reports whether a select list was set.
func (s *Statement) HasSelect() bool { return s.selected != "" }

// SelectClause renders the select clause.
func (s *Statement) SelectClause() string {
	var b strings.Builder
	b.WriteString("SELECT")
	if s.distinct {
		b.WriteString(" DISTINCT")
	}
	b.WriteByte(' ')
	if s.selected == "" {
		b.WriteString(selectAll)
	} else {
		b.WriteString(s.selected)
	}
	return b.String()
}

// Filters returns the filter clauses in render order.
func (s *Statement) Filters() []string { return s.filters.sorted() }

// =============================================================================
// Rendering
// =============================================================================

// Execute implements Command. It renders the accumulated clauses.
func (s *Statement) Execute() error {
	if len(s.from) == 0 {
		return Invariantf("statement without drive table")
	}

	from := make([]fromEntry, len(s.from))
	copy(from, s.from)
	sort.SliceStable(from, func(i, j int) bool { return from[i].ordinal < from[j].ordinal })

	var b strings.Builder
	b.WriteString(s.SelectClause())
	b.WriteString(" FROM ")
	for i, f := range from {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(f.clause)
	}

	for _, j := range s.joins.sorted() {
		b.WriteByte(' ')
		b.WriteString(j)
	}

	if filters := s.filters.sorted(); len(filters) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(filters, " AND "))
	}

	if s.groupBy != "" {
		fmt.Fprintf(&b, " GROUP BY %s", s.groupBy)
	}
	if s.orderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", s.orderBy)
	}

	s.sql = b.String()
	return nil
}

// SQL returns the rendered SQL. Empty until Execute ran.
func (s *Statement) SQL() string { return s.sql }

// clauseSet is an insertion-deduplicated list of clauses.
type clauseSet struct {
	items []string
	seen  map[string]struct{}
}

func (c *clauseSet) add(clause string) {
	if c.seen == nil {
		c.seen = make(map[string]struct{})
	}
	if _, ok := c.seen[clause]; ok {
		return
	}
	c.seen[clause] = struct{}{}
	c.items = append(c.items, clause)
}

func (c *clauseSet) addAll(other clauseSet) {
	for _, item := range other.items {
		c.add(item)
	}
}

func (c *clauseSet) len() int { return len(c.items) }

func (c *clauseSet) sorted() []string {
	out := make([]string, len(c.items))
	copy(out, c.items)
	sort.Strings(out)
	return out
}
