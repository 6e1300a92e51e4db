package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
)

// fileKeyValueStore keeps every key in a single indented JSON object on disk.
// The whole file is rewritten on each Set.
type fileKeyValueStore struct {
	path   string
	logger *logger.Logger

	mu     sync.RWMutex
	values map[string]string
}

// NewFileKeyValueStore loads path (if it exists) and returns a
// [KeyValueStore] that persists to it. A file that cannot be decoded is
// logged and treated as empty; it is replaced by the next Set.
func NewFileKeyValueStore(path string, logger *logger.Logger) (KeyValueStore, error) {
	s := &fileKeyValueStore{
		path:   path,
		logger: logger,
		values: make(map[string]string),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *fileKeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *fileKeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.values[key]
	s.values[key] = value

	if err := s.persist(); err != nil {
		// keep memory consistent with disk
		if existed {
			s.values[key] = prev
		} else {
			delete(s.values, key)
		}
		return err
	}
	return nil
}

func (s *fileKeyValueStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}

	if len(data) == 0 {
		return nil
	}

	values := make(map[string]string)
	if err = json.Unmarshal(data, &values); err != nil {
		s.logger.Warn().Err(err).
			Str("func", "fileKeyValueStore.load").
			Str("path", s.path).
			Msg("state file is corrupt, starting empty")
		return nil
	}
	s.values = values

	return nil
}

func (s *fileKeyValueStore) persist() error {
	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	payload, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(payload)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmpName, s.path)
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}

// memoryKeyValueStore is a process-local [KeyValueStore].
type memoryKeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryKeyValueStore returns an empty in-memory [KeyValueStore].
func NewMemoryKeyValueStore() KeyValueStore {
	return &memoryKeyValueStore{values: make(map[string]string)}
}

func (s *memoryKeyValueStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryKeyValueStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}
