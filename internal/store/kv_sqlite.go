package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

// sqliteKeyValueStore keeps key-value state in the kv_store table of the
// local journal.
type sqliteKeyValueStore struct {
	*DB
	logger *logger.Logger
	now    func() time.Time
}

// NewSQLiteKeyValueStore returns a [KeyValueStore] backed by db.
func NewSQLiteKeyValueStore(db *DB, logger *logger.Logger) KeyValueStore {
	return &sqliteKeyValueStore{
		DB:     db,
		logger: logger,
		now:    time.Now,
	}
}

func (s *sqliteKeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildGetValueQuery(key)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var value string
	err = s.DB.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "sqliteKeyValueStore.Get").
			Str("key", key).
			Msg("failed to read value")
		return "", false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return value, true, nil
}

func (s *sqliteKeyValueStore) Set(ctx context.Context, key, value string) error {
	log := logger.FromContext(ctx)

	query, args, err := buildSetValueQuery(key, value, s.now().UTC())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err = s.DB.ExecContext(ctx, query, args...); err != nil {
		log.Err(err).
			Str("func", "sqliteKeyValueStore.Set").
			Str("key", key).
			Msg("failed to write value")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}
