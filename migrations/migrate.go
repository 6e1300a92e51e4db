// Package migrations embeds the goose schema migrations of the local journal
// (SQLite) and of the remote document store (PostgreSQL).
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed client/*.sql
var clientMigrations embed.FS

//go:embed server/*.sql
var serverMigrations embed.FS

// ErrNilDB is returned when a migration is requested without a connection.
var ErrNilDB = errors.New("db is nil")

// MigrateSQLite applies the client schema (fills, kv_store).
func MigrateSQLite(db *sql.DB) error {
	return migrate(db, clientMigrations, "client", "sqlite3")
}

// MigratePostgres applies the server schema (documents).
func MigratePostgres(db *sql.DB) error {
	return migrate(db, serverMigrations, "server", "pgx")
}

func migrate(db *sql.DB, fsys fs.FS, dir, dialect string) error {
	if db == nil {
		return fmt.Errorf("migration error: %w", ErrNilDB)
	}

	goose.SetBaseFS(fsys)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("migration error setting dialect for db: %w", err)
	}

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	return nil
}
