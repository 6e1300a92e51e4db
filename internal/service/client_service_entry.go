package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/internal/validators"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type entryService struct {
	entries   store.EntryRepository
	settings  store.SettingsStore
	queue     QueueManager
	validator validators.Validator
	ids       *utils.UUIDGenerator
	now       func() time.Time

	logger *logger.Logger
}

// NewEntryService returns the entry point for fuel entries and settings.
func NewEntryService(entries store.EntryRepository, settings store.SettingsStore, queue QueueManager, logger *logger.Logger) EntryService {
	return &entryService{
		entries:   entries,
		settings:  settings,
		queue:     queue,
		validator: validators.NewFuelValidator(),
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		logger:    logger,
	}
}

// AddEntry validates entry, assigns its id and creation time, fills in total
// when it was left at zero, saves it locally and enqueues a create-entry item.
func (s *entryService) AddEntry(ctx context.Context, entry models.FuelEntry) (models.FuelEntry, error) {
	if entry.Total == 0 {
		entry.Total = entry.Price * entry.Amount
	}
	if err := s.validator.Validate(ctx, entry); err != nil {
		return models.FuelEntry{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	entry.ID = s.ids.Generate()
	entry.CreatedAt = s.now().UTC()
	entry.UpdatedAt = nil

	if err := s.entries.SaveEntry(ctx, entry); err != nil {
		return models.FuelEntry{}, fmt.Errorf("save entry: %w", err)
	}
	if _, err := s.queue.Enqueue(ctx, models.KindCreateEntry, entry); err != nil {
		return models.FuelEntry{}, fmt.Errorf("enqueue entry: %w", err)
	}

	return entry, nil
}

// UpdateEntry applies patch to the local entry. When price or amount change
// and no total is given, the total is recomputed and becomes part of the
// patch. The version before the edit travels with the queue item as the
// conflict-detection base.
func (s *entryService) UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.FuelEntry, error) {
	if err := s.validator.Validate(ctx, patch); err != nil {
		return models.FuelEntry{}, fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	base, err := s.entries.GetEntry(ctx, id)
	if err != nil {
		return models.FuelEntry{}, fmt.Errorf("load entry %s: %w", id, err)
	}

	updated := patch.Apply(base)
	if (patch.Price != nil || patch.Amount != nil) && patch.Total == nil {
		total := updated.Price * updated.Amount
		patch.Total = &total
		updated.Total = total
	}
	now := s.now().UTC()
	updated.UpdatedAt = &now

	if err = s.entries.SaveEntry(ctx, updated); err != nil {
		return models.FuelEntry{}, fmt.Errorf("save entry %s: %w", id, err)
	}

	payload := models.EntryUpdate{TargetID: id, Patch: patch, Base: &base}
	if _, err = s.queue.Enqueue(ctx, models.KindUpdateEntry, payload); err != nil {
		return models.FuelEntry{}, fmt.Errorf("enqueue entry update: %w", err)
	}

	return updated, nil
}

func (s *entryService) UpdateSettings(ctx context.Context, userID string, settings models.Settings) error {
	update := models.SettingsUpdate{UserID: userID, Settings: settings}
	if err := s.validator.Validate(ctx, update); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataProvided, err)
	}

	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if _, err := s.queue.Enqueue(ctx, models.KindUpdateSettings, update); err != nil {
		return fmt.Errorf("enqueue settings: %w", err)
	}

	return nil
}

func (s *entryService) Settings(ctx context.Context) (models.Settings, error) {
	return s.settings.GetSettings(ctx)
}

func (s *entryService) Entries(ctx context.Context, userID string) ([]models.FuelEntry, error) {
	return s.entries.GetAllEntries(ctx, userID)
}
