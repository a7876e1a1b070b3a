// Package adapter runs compiled SQL against a database.
//
// Concrete adapters live in pkg/adapters/ subdirectories and register
// themselves by type name from their init functions:
//
//	import _ "github.com/leapstack-labs/funcsql/pkg/adapters/sqlite"
package adapter

import (
	"context"

	"github.com/leapstack-labs/funcsql/pkg/relation"
)

// Config selects and configures a database target.
type Config struct {
	Type     string
	Path     string
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Options  map[string]string
	Params   map[string]any
}

// Result is a fully read query result.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Adapter is the contract every database adapter implements.
type Adapter interface {
	// Connect opens the database described by cfg.
	Connect(ctx context.Context, cfg Config) error

	// Close releases the connection.
	Close() error

	// Exec runs a statement that returns no rows.
	Exec(ctx context.Context, sql string) error

	// Query runs a statement and reads all of its rows.
	Query(ctx context.Context, sql string) (*Result, error)

	// Relations returns the single-column foreign keys of the database as
	// join relations.
	Relations(ctx context.Context) ([]relation.Relation, error)
}
