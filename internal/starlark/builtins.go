package starlark

import (
	"fmt"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

// TargetInfo describes the database target. Exposed as the "target"
// global so macros can emit target specific SQL. Credentials are never
// exposed.
type TargetInfo struct {
	Type     string // "sqlite", "duckdb", "postgres"
	Database string
}

// ToStarlark converts TargetInfo to a Starlark struct value.
func (t *TargetInfo) ToStarlark() starlark.Value {
	return starlarkstruct.FromStringDict(starlark.String("target"), starlark.StringDict{
		"type":     starlark.String(t.Type),
		"database": starlark.String(t.Database),
	})
}

// Predeclared returns the globals every macro file sees: target (when
// set), quote and sql_list.
func Predeclared(target *TargetInfo) starlark.StringDict {
	globals := starlark.StringDict{
		"quote":    starlark.NewBuiltin("quote", quote),
		"sql_list": starlark.NewBuiltin("sql_list", sqlList),
	}
	if target != nil {
		globals["target"] = target.ToStarlark()
	}
	return globals
}

// Quote renders s as a SQL string literal. An already quoted value is
// returned unchanged.
func Quote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quote(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	return starlark.String(Quote(s)), nil
}

// sql_list(values) renders "( v1, v2 )" the way IN lists are written.
func sqlList(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var values starlark.Iterable
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &values); err != nil {
		return nil, err
	}

	var parts []string
	iter := values.Iterate()
	defer iter.Done()
	var v starlark.Value
	for iter.Next(&v) {
		s, ok := starlark.AsString(v)
		if !ok {
			s = v.String()
		}
		parts = append(parts, s)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("%s: empty list", b.Name())
	}
	return starlark.String("( " + strings.Join(parts, ", ") + " )"), nil
}
