package store

import (
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/migrations"
)

// DB wraps a *sql.DB together with the error classifier of its driver.
type DB struct {
	*sql.DB
	errorClassificator ErrorClassificator
	logger             *logger.Logger
	dialect            string
}

const (
	dialectSQLite   = "sqlite3"
	dialectPostgres = "pgx"
)

// Migrate applies the schema that matches the connection's dialect.
func (db *DB) Migrate() error {
	switch db.dialect {
	case dialectSQLite:
		return migrations.MigrateSQLite(db.DB)
	case dialectPostgres:
		return migrations.MigratePostgres(db.DB)
	default:
		return fmt.Errorf("migration error: unknown dialect %q", db.dialect)
	}
}

// classify wraps err with [ErrTransient] when the driver reports a retryable
// failure.
func (db *DB) classify(err error) error {
	if db.errorClassificator != nil && db.errorClassificator.Classify(err) == Retryable {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return err
}
