// Package sqlite provides a SQLite adapter backed by the pure Go
// modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/leapstack-labs/funcsql/pkg/adapter"
	"github.com/leapstack-labs/funcsql/pkg/relation"

	_ "modernc.org/sqlite" // sqlite driver
)

// foreignKeysQuery reads foreign keys table by table from the pragma table
// valued function. Keys referencing an implicit primary key have a NULL
// target column and are skipped.
const foreignKeysQuery = `
	SELECT m.name, p."from", p."table", p."to"
	FROM sqlite_master m
	JOIN pragma_foreign_key_list(m.name) p
	WHERE m.type = 'table'
	ORDER BY m.name, p.id, p.seq
`

// Adapter implements adapter.Adapter for SQLite.
type Adapter struct {
	adapter.Conn
}

// New creates a SQLite adapter. A nil logger discards.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		Conn: adapter.Conn{Logger: logger},
	}
}

// Connect opens the database file at cfg.Path, ":memory:" when empty.
// cfg.Options are appended as the DSN query, e.g. mode=ro.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}
	dsn := path + dsnQuery(cfg.Options)
	a.Logger.Debug("connecting to sqlite", slog.String("dsn", dsn))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	return nil
}

// Relations implements adapter.Adapter.
func (a *Adapter) Relations(ctx context.Context) ([]relation.Relation, error) {
	return a.RelationsFromQuery(ctx, foreignKeysQuery)
}

func dsnQuery(options map[string]string) string {
	if len(options) == 0 {
		return ""
	}
	values := make(url.Values, len(options))
	for k, v := range options {
		values.Set(k, v)
	}
	return "?" + values.Encode()
}

var _ adapter.Adapter = (*Adapter)(nil)
