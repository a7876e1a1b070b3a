package adapter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/funcsql/pkg/relation"
)

// ErrNotConnected is returned when an adapter is used before Connect.
var ErrNotConnected = errors.New("database connection not established")

// ForeignKeysQuery lists single-column foreign keys through the standard
// information_schema views as (table, column, referenced table, referenced
// column) rows.
const ForeignKeysQuery = `
	SELECT
		k.table_name,
		k.column_name,
		u.table_name,
		u.column_name
	FROM information_schema.referential_constraints r
	JOIN information_schema.key_column_usage k
		ON k.constraint_schema = r.constraint_schema
		AND k.constraint_name = r.constraint_name
	JOIN information_schema.key_column_usage u
		ON u.constraint_schema = r.unique_constraint_schema
		AND u.constraint_name = r.unique_constraint_name
		AND u.ordinal_position = k.position_in_unique_constraint
	ORDER BY k.table_name, k.column_name
`

// Conn is the database/sql handle concrete adapters embed. It provides
// Close, Exec and Query of the Adapter interface.
type Conn struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func (c *Conn) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Logger
}

// Connected reports whether Connect has opened a database.
func (c *Conn) Connected() bool { return c.DB != nil }

// Close closes the database. Closing an unconnected adapter is a no-op.
func (c *Conn) Close() error {
	if c.DB == nil {
		return nil
	}
	c.logger().Debug("closing database connection")
	return c.DB.Close()
}

// Exec runs a statement that returns no rows.
func (c *Conn) Exec(ctx context.Context, query string) error {
	if c.DB == nil {
		return ErrNotConnected
	}
	if _, err := c.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// Query runs a compiled query and reads every row. Byte slices are
// returned as strings.
func (c *Conn) Query(ctx context.Context, query string) (*Result, error) {
	if c.DB == nil {
		return nil, ErrNotConnected
	}
	c.logger().Debug("executing query", slog.String("sql", query))

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}
	result := &Result{Columns: columns}
	err = eachRow(rows, len(columns), func(values []any) error {
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		result.Rows = append(result.Rows, values)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RelationsFromQuery reads join relations from a query returning (table,
// column, referenced table, referenced column) rows. Rows with an unknown
// column on either side are skipped.
func (c *Conn) RelationsFromQuery(ctx context.Context, query string) ([]relation.Relation, error) {
	if c.DB == nil {
		return nil, ErrNotConnected
	}

	rows, err := c.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []relation.Relation
	err = eachRow(rows, 4, func(values []any) error {
		r := relation.Relation{
			Table1:  text(values[0]),
			Column1: text(values[1]),
			Table2:  text(values[2]),
			Column2: text(values[3]),
		}
		if r.Column1 != "" && r.Column2 != "" {
			out = append(out, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger().Debug("loaded foreign keys", slog.Int("count", len(out)))
	return out, nil
}

// eachRow scans every row into a fresh slice of n values.
func eachRow(rows *sql.Rows, n int, fn func([]any) error) error {
	for rows.Next() {
		values := make([]any, n)
		ptrs := make([]any, n)
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		if err := fn(values); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rows: %w", err)
	}
	return nil
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
