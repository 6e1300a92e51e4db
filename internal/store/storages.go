package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

// Storages groups the server-side repositories.
type Storages struct {
	Documents DocumentRepository

	db *DB
}

// NewStorages connects to PostgreSQL at dsn, migrates the schema and wires
// the document repository.
func NewStorages(ctx context.Context, dsn string, logger *logger.Logger) (*Storages, error) {
	db, err := NewConnectPostgres(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		Documents: NewDocumentRepository(db, logger),
		db:        db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
