package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// Keys of the local key-value store.
const (
	KeySyncQueue            = "syncQueue"
	KeyConflictStrategies   = "conflictStrategies"
	KeyDeadLetters          = "syncDeadLetters"
	KeyUserSettings         = "userSettings"
	KeyNotificationSettings = "notificationSettings"
)

// jsonRecord is a typed JSON value stored under a single key.
type jsonRecord[T any] struct {
	kv  KeyValueStore
	key string
}

// load decodes the value under the key. found is false when the key is
// absent; any read or decode failure is wrapped with [ErrPersistence].
func (r jsonRecord[T]) load(ctx context.Context) (value T, found bool, err error) {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return value, false, fmt.Errorf("%w: read %s: %w", ErrPersistence, r.key, err)
	}
	if !ok || raw == "" {
		return value, false, nil
	}

	if err = json.Unmarshal([]byte(raw), &value); err != nil {
		return value, false, fmt.Errorf("%w: decode %s: %w", ErrPersistence, r.key, err)
	}
	return value, true, nil
}

func (r jsonRecord[T]) save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, r.key, err)
	}

	if err = r.kv.Set(ctx, r.key, string(raw)); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, r.key, err)
	}
	return nil
}

// ── queue ────────────────────────────────────────────────────────────────────

type queueStore struct {
	record jsonRecord[[]models.QueueItem]
	logger *logger.Logger
}

// NewQueueStore persists the sync queue under [KeySyncQueue].
func NewQueueStore(kv KeyValueStore, logger *logger.Logger) QueueStore {
	return &queueStore{
		record: jsonRecord[[]models.QueueItem]{kv: kv, key: KeySyncQueue},
		logger: logger,
	}
}

func (s *queueStore) Load(ctx context.Context) []models.QueueItem {
	items, _, err := s.record.load(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "queueStore.Load").Msg("failed to load sync queue, starting empty")
		return []models.QueueItem{}
	}
	if items == nil {
		return []models.QueueItem{}
	}
	return items
}

func (s *queueStore) Save(ctx context.Context, items []models.QueueItem) {
	if items == nil {
		items = []models.QueueItem{}
	}
	if err := s.record.save(ctx, items); err != nil {
		s.logger.Err(err).
			Str("func", "queueStore.Save").
			Int("items", len(items)).
			Msg("failed to save sync queue")
	}
}

// ── conflict strategies ──────────────────────────────────────────────────────

type strategyStore struct {
	record jsonRecord[map[string]models.ConflictStrategy]
	logger *logger.Logger
}

// NewStrategyStore persists the conflict strategy table under
// [KeyConflictStrategies].
func NewStrategyStore(kv KeyValueStore, logger *logger.Logger) StrategyStore {
	return &strategyStore{
		record: jsonRecord[map[string]models.ConflictStrategy]{kv: kv, key: KeyConflictStrategies},
		logger: logger,
	}
}

func (s *strategyStore) Load(ctx context.Context) map[string]models.ConflictStrategy {
	strategies, _, err := s.record.load(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "strategyStore.Load").Msg("failed to load conflict strategies")
	}
	if strategies == nil {
		strategies = make(map[string]models.ConflictStrategy)
	}
	return strategies
}

func (s *strategyStore) Save(ctx context.Context, strategies map[string]models.ConflictStrategy) {
	if err := s.record.save(ctx, strategies); err != nil {
		s.logger.Err(err).Str("func", "strategyStore.Save").Msg("failed to save conflict strategies")
	}
}

// ── dead letters ─────────────────────────────────────────────────────────────

type deadLetterStore struct {
	record jsonRecord[[]models.DeadLetter]
	logger *logger.Logger
}

// NewDeadLetterStore persists dropped queue items under [KeyDeadLetters].
func NewDeadLetterStore(kv KeyValueStore, logger *logger.Logger) DeadLetterStore {
	return &deadLetterStore{
		record: jsonRecord[[]models.DeadLetter]{kv: kv, key: KeyDeadLetters},
		logger: logger,
	}
}

func (s *deadLetterStore) Load(ctx context.Context) []models.DeadLetter {
	letters, _, err := s.record.load(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "deadLetterStore.Load").Msg("failed to load dead letters")
	}
	if letters == nil {
		letters = []models.DeadLetter{}
	}
	return letters
}

func (s *deadLetterStore) Save(ctx context.Context, letters []models.DeadLetter) {
	if err := s.record.save(ctx, letters); err != nil {
		s.logger.Err(err).Str("func", "deadLetterStore.Save").Msg("failed to save dead letters")
	}
}

// ── settings ─────────────────────────────────────────────────────────────────

type settingsStore struct {
	settings      jsonRecord[models.Settings]
	notifications jsonRecord[models.NotificationSettings]
	logger        *logger.Logger
}

// NewSettingsStore persists user settings under [KeyUserSettings] and
// notification preferences under [KeyNotificationSettings].
func NewSettingsStore(kv KeyValueStore, logger *logger.Logger) SettingsStore {
	return &settingsStore{
		settings:      jsonRecord[models.Settings]{kv: kv, key: KeyUserSettings},
		notifications: jsonRecord[models.NotificationSettings]{kv: kv, key: KeyNotificationSettings},
		logger:        logger,
	}
}

func (s *settingsStore) GetSettings(ctx context.Context) (models.Settings, error) {
	settings, _, err := s.settings.load(ctx)
	return settings, err
}

func (s *settingsStore) SaveSettings(ctx context.Context, settings models.Settings) error {
	return s.settings.save(ctx, settings)
}

// GetNotificationSettings falls back to [models.DefaultNotificationSettings]
// when nothing was persisted or the stored value is unreadable.
func (s *settingsStore) GetNotificationSettings(ctx context.Context) models.NotificationSettings {
	settings, found, err := s.notifications.load(ctx)
	if err != nil {
		s.logger.Err(err).Str("func", "settingsStore.GetNotificationSettings").Msg("failed to load notification settings")
	}
	if err != nil || !found {
		return models.DefaultNotificationSettings()
	}
	return settings
}

func (s *settingsStore) SaveNotificationSettings(ctx context.Context, settings models.NotificationSettings) error {
	return s.notifications.save(ctx, settings)
}
