package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

var filterOperators = map[string]bool{
	"<": true, ">": true, "<=": true, ">=": true, "==": true, "!=": true,
}

// Filter restricts a column to a list of values, or compares it with an
// operator when the first value is an unquoted operator symbol.
//
// Syntax:
//
//	filter(column, value1, value2, ...)
//	filter(column, operator, value)
//
// To filter on an operator symbol itself, quote it: filter(column, '<').
type Filter struct {
	core.Base

	inclusive bool
	column    string
	values    []string
}

// NewFilter creates filter (inclusive) or notfilter.
func NewFilter(ctx core.Context, inclusive bool) *Filter {
	f := &Filter{Base: core.NewBase(ctx), inclusive: inclusive}
	m := f.Machine()
	m.TableOrColumn(0, func(v string) error { f.column = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { f.values = append(f.values, v); return nil }).Mandatory()
	return f
}

func filterFactory(inclusive bool) core.Factory {
	return func(ctx core.Context) core.Command { return NewFilter(ctx, inclusive) }
}

// Kind implements core.Command.
func (f *Filter) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (f *Filter) Execute() error {
	if len(f.values) == 0 {
		return core.Invariantf("filter executed without values")
	}

	var (
		clause string
		err    error
	)
	if first := f.values[0]; !core.IsQuoted(first) && filterOperators[first] {
		clause, err = f.onOperator(first, f.values[1:])
	} else {
		clause, err = f.onValues()
	}
	if err != nil {
		return err
	}

	f.ClauseSink().AddFilter(clause)
	return nil
}

func (f *Filter) onOperator(op string, values []string) (string, error) {
	switch {
	case len(values) == 0:
		return "", core.Errorf(core.ArgumentCount, core.ErrNeedOperatorValue)
	case len(values) > 1:
		return "", core.Errorf(core.ArgumentCount, core.ErrOneOperatorValue, core.FormatValues(values))
	}
	return fmt.Sprintf("%s %s %s", f.column, op, values[0]), nil
}

func (f *Filter) onValues() (string, error) {
	for _, v := range f.values {
		if err := checkValue(v); err != nil {
			return "", err
		}
	}

	if len(f.values) == 1 {
		op := "="
		if !f.inclusive {
			op = "!="
		}
		return fmt.Sprintf("%s %s %s", f.column, op, f.values[0]), nil
	}

	op := "IN"
	if !f.inclusive {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s ( %s )", f.column, op, strings.Join(f.values, ", ")), nil
}

// checkValue requires a value to be a number or a quoted literal.
func checkValue(v string) error {
	if !core.IsNumeric(v) && !core.IsQuoted(v) {
		return core.Errorf(core.InvalidValue, core.ErrValueShouldBeQuoted, v)
	}
	return nil
}

// Like filters a column on a pattern.
//
// Syntax:
//
//	like(column, 'aa%bb')
type Like struct {
	core.Base

	column  string
	pattern string
}

// NewLike creates a like command.
func NewLike(ctx core.Context) *Like {
	l := &Like{Base: core.NewBase(ctx)}
	m := l.Machine()
	m.TableOrColumn(0, func(v string) error { l.column = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { l.pattern = v; return nil }).Single().Mandatory()
	return l
}

// Kind implements core.Command.
func (l *Like) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (l *Like) Execute() error {
	if err := checkValue(l.pattern); err != nil {
		return err
	}
	l.ClauseSink().AddFilter(fmt.Sprintf("%s LIKE %s", l.column, l.pattern))
	return nil
}

var dateOperators = map[string]bool{
	"=": true, "<": true, ">": true, "<=": true, ">=": true,
}

// FilterDate compares a column with a date literal.
//
// Syntax:
//
//	filterdate(column, 20120101)
//	filterdate(column, 20120101, >=)
//	filterdate(column, 20120101, '<')
//	filterdate(column, 20120101, 20140101)
//
// The last form selects the half-open range [20120101, 20140101).
// Quoted dates and operators are accepted and unquoted.
type FilterDate struct {
	core.Base

	column string
	date   string
	third  string
}

// NewFilterDate creates a filterdate command.
func NewFilterDate(ctx core.Context) *FilterDate {
	f := &FilterDate{Base: core.NewBase(ctx)}
	m := f.Machine()
	m.TableOrColumn(0, func(v string) error { f.column = v; return nil }).Single().Mandatory()
	m.Literal(1, func(v string) error { f.date = unquote(v); return nil }).Single().Mandatory()
	m.Literal(2, func(v string) error { f.third = unquote(v); return nil }).Single()
	return f
}

// Kind implements core.Command.
func (f *FilterDate) Kind() core.Kind { return core.FilterKind }

// Execute implements core.Command.
func (f *FilterDate) Execute() error {
	sink := f.ClauseSink()

	op := f.third
	if op == "" {
		op = "="
	}

	switch {
	case dateOperators[op]:
		sink.AddFilter(fmt.Sprintf("%s %s '%s'", f.column, op, f.date))
	case core.IsNumeric(op):
		from := fmt.Sprintf("%s >= '%s'", f.column, f.date)
		to := fmt.Sprintf("%s < '%s'", f.column, op)
		if sink != core.Sink(f.Statement()) {
			// Inside or/and the range must stay one operand.
			sink.AddFilter(fmt.Sprintf("( %s AND %s )", from, to))
			return nil
		}
		sink.AddFilter(from)
		sink.AddFilter(to)
	default:
		return core.Errorf(core.UnknownOperator, core.ErrUnknownOperator, op)
	}
	return nil
}

func unquote(v string) string {
	if len(v) >= 2 && strings.HasPrefix(v, "'") && strings.HasSuffix(v, "'") {
		return v[1 : len(v)-1]
	}
	return v
}
