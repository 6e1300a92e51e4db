package store

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

func newTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newSQLiteDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:      db,
		logger:  logger.Nop(),
		dialect: dialectSQLite,
	}
}

func newPostgresDBFromSQL(db *sql.DB) *DB {
	return &DB{
		DB:                 db,
		errorClassificator: NewPostgresErrorClassifier(),
		logger:             logger.Nop(),
		dialect:            dialectPostgres,
	}
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

// failingKV fails every call with err.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(context.Context, string, string) error         { return f.err }
