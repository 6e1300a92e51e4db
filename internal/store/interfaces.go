// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"time"

	"github.com/MKhiriev/go-fuel-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// KeyValueStore is the local durable persistence collaborator. Values are
// opaque strings, usually JSON.
type KeyValueStore interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error
}

// EntryRepository is the local journal of fuel entries.
type EntryRepository interface {
	SaveEntry(ctx context.Context, entry models.FuelEntry) error
	GetEntry(ctx context.Context, id string) (models.FuelEntry, error)
	GetAllEntries(ctx context.Context, userID string) ([]models.FuelEntry, error)
	LatestEntry(ctx context.Context, userID string) (models.FuelEntry, error)
}

// DocumentRepository is the server-side document table.
type DocumentRepository interface {
	// Create inserts doc. A repeated create with an existing (collection, id)
	// is a no-op.
	Create(ctx context.Context, doc models.Document) error
	// Update merges patch into the stored fields.
	Update(ctx context.Context, collection, id string, patch map[string]any, at time.Time) error
	Read(ctx context.Context, collection, id string) (models.Document, error)
}

// QueueStore persists the ordered list of pending queue items.
type QueueStore interface {
	// Load never fails: missing or unreadable state yields an empty queue.
	Load(ctx context.Context) []models.QueueItem
	// Save overwrites the persisted queue. Failures are logged, not returned.
	Save(ctx context.Context, items []models.QueueItem)
}

// StrategyStore persists the conflict strategy table.
type StrategyStore interface {
	Load(ctx context.Context) map[string]models.ConflictStrategy
	Save(ctx context.Context, strategies map[string]models.ConflictStrategy)
}

// DeadLetterStore persists the bounded log of discarded queue items.
type DeadLetterStore interface {
	Load(ctx context.Context) []models.DeadLetter
	Save(ctx context.Context, letters []models.DeadLetter)
}

// SettingsStore persists the user's settings and notification preferences.
type SettingsStore interface {
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, settings models.Settings) error
	GetNotificationSettings(ctx context.Context) models.NotificationSettings
	SaveNotificationSettings(ctx context.Context, settings models.NotificationSettings) error
}

// ErrorClassificator decides whether a failed database operation may be
// retried.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
