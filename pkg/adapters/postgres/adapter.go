// Package postgres provides a PostgreSQL adapter built on pgx.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/leapstack-labs/funcsql/pkg/adapter"
	"github.com/leapstack-labs/funcsql/pkg/relation"
)

// Adapter implements adapter.Adapter for PostgreSQL.
type Adapter struct {
	adapter.Conn
}

// New creates a PostgreSQL adapter. A nil logger discards.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{Conn: adapter.Conn{Logger: logger}}
}

// Connect opens the database through pgx's database/sql driver and pings
// it.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	connCfg, err := pgx.ParseConfig(connString(cfg))
	if err != nil {
		return fmt.Errorf("invalid postgres target: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres at %s:%d: %w", connCfg.Host, connCfg.Port, err)
	}

	a.DB = db
	a.Logger.Debug("connected to postgres", slog.String("host", connCfg.Host), slog.String("database", connCfg.Database))
	return nil
}

// Relations implements adapter.Adapter.
func (a *Adapter) Relations(ctx context.Context) ([]relation.Relation, error) {
	return a.RelationsFromQuery(ctx, adapter.ForeignKeysQuery)
}

// connString builds a postgres:// URL for cfg. Host and port default to
// localhost:5432 and sslmode to disable; Options become query parameters.
func connString(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	query := url.Values{"sslmode": {"disable"}}
	for name, value := range cfg.Options {
		query.Set(name, value)
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + cfg.Database,
		RawQuery: query.Encode(),
	}
	switch {
	case cfg.Password != "":
		u.User = url.UserPassword(cfg.Username, cfg.Password)
	case cfg.Username != "":
		u.User = url.User(cfg.Username)
	}
	return u.String()
}

var _ adapter.Adapter = (*Adapter)(nil)
