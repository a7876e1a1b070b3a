package compiler

import "github.com/leapstack-labs/funcsql/pkg/core"

// resolve maps table.column to alias.column against stmt. Numbers pass
// through untouched; anything else must be a valid name.
func resolve(stmt *core.Statement, v string) (string, error) {
	table, column, err := core.SplitTableColumn(v)
	if err != nil {
		return "", err
	}
	if core.IsNumeric(table) {
		return v, nil
	}

	if err := core.CheckName(table); err != nil {
		return "", err
	}
	if column == "" {
		return v, nil
	}
	if err := core.CheckName(column); err != nil {
		return "", err
	}

	if stmt == nil {
		return "", core.Invariantf("no statement to resolve %q against", v)
	}
	alias, err := stmt.Resolve(table)
	if err != nil {
		return "", err
	}
	return alias + "." + column, nil
}
