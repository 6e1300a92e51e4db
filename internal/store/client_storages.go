package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

// ClientStorages groups every client-side store so it can be passed to the
// service layer as one value.
type ClientStorages struct {
	// Entries is the SQLite journal of fuel entries.
	Entries EntryRepository
	// KV is the raw key-value collaborator backing the typed stores below.
	KV KeyValueStore

	Queue       QueueStore
	Strategies  StrategyStore
	DeadLetters DeadLetterStore
	Settings    SettingsStore

	db *DB
}

// NewClientStorages initialises the client storage layer:
//  1. Opens the SQLite journal at cfg.DSN, creating the file if needed.
//  2. Runs pending schema migrations via [DB.Migrate].
//  3. Picks the key-value backend: a JSON file when cfg.KVFile is set,
//     otherwise the kv_store table of the journal.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new storages...")

	db, err := NewConnectSQLite(ctx, cfg.DSN, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err = db.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	var kv KeyValueStore
	if cfg.KVFile != "" {
		kv, err = NewFileKeyValueStore(cfg.KVFile, logger)
		if err != nil {
			return nil, fmt.Errorf("key-value file error: %w", err)
		}
	} else {
		kv = NewSQLiteKeyValueStore(db, logger)
	}

	storages := NewClientStoragesWith(NewEntryRepository(db, logger), kv, logger)
	storages.db = db
	return storages, nil
}

// NewClientStoragesWith builds the typed stores on top of the given
// collaborators.
func NewClientStoragesWith(entries EntryRepository, kv KeyValueStore, logger *logger.Logger) *ClientStorages {
	return &ClientStorages{
		Entries:     entries,
		KV:          kv,
		Queue:       NewQueueStore(kv, logger),
		Strategies:  NewStrategyStore(kv, logger),
		DeadLetters: NewDeadLetterStore(kv, logger),
		Settings:    NewSettingsStore(kv, logger),
	}
}

// Close releases the underlying database connection, if any.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
