package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"socialhub/database"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var sqliteParams = []struct{ key, value string }{
	{"_foreign_keys", "on"},
	{"_txlock", "immediate"},
	{"_busy_timeout", "5000"},
}

// sqliteDSN adds every connection parameter the ledger relies on that dsn
// does not set itself.
func sqliteDSN(dsn string) string {
	_, query, hasQuery := strings.Cut(dsn, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	sep := "?"
	if hasQuery {
		sep = "&"
		if query == "" || strings.HasSuffix(query, "&") {
			sep = ""
		}
	}
	for _, p := range sqliteParams {
		if values.Has(p.key) {
			continue
		}
		dsn += sep + p.key + "=" + p.value
		sep = "&"
	}
	return dsn
}

type Option func(*Store)

// WithClock replaces the system clock used to stamp rows.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// Open connects to the configured database, applies pending migrations and
// returns a ready Store.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		dsn = sqliteDSN(dsn)
		db, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer at a time; sqlite serializes anyway
		db.SetMaxOpenConns(1)
	case DriverPostgres:
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	if _, err := database.Migrate(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	return New(db, driver, opts...), nil
}
