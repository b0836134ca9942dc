// Package database holds the ledger schema as goose migrations, one
// directory per SQL dialect, and development seed data.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var Migrations embed.FS

// Migrate applies every pending migration for the dialect ("sqlite3" or
// "postgres") and returns the number applied.
func Migrate(ctx context.Context, db *sql.DB, dialect string) (int, error) {
	var (
		dir string
		d   goose.Dialect
	)
	switch dialect {
	case "sqlite3":
		dir, d = "migrations/sqlite", goose.DialectSQLite3
	case "postgres":
		dir, d = "migrations/postgres", goose.DialectPostgres
	default:
		return 0, fmt.Errorf("unsupported dialect %q", dialect)
	}

	fsys, err := fs.Sub(Migrations, dir)
	if err != nil {
		return 0, err
	}
	provider, err := goose.NewProvider(d, db, fsys)
	if err != nil {
		return 0, fmt.Errorf("goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	return len(results), nil
}
