package service

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/models"
)

// QueueManager owns the durable mutation queue and the aggregate sync state.
// It applies items to the remote store in FIFO order with retry and backoff.
type QueueManager interface {
	// Enqueue appends a new item of kind carrying payload, persists the queue
	// and, when online and idle, starts a pass in the background. It never
	// waits for the pass. Returns an error only when payload cannot be encoded.
	Enqueue(ctx context.Context, kind models.ItemKind, payload any) (models.QueueItem, error)

	// ProcessQueue runs one pass over a snapshot of the queue. It returns
	// [ErrOffline] when there is no connectivity and [ErrSyncInProgress] when
	// another pass is running; in both cases nothing is processed.
	ProcessQueue(ctx context.Context) (models.PassResult, error)

	// ForceSync is the manual trigger. Same semantics as ProcessQueue.
	ForceSync(ctx context.Context) (models.PassResult, error)

	// TriggerSync starts a pass in the background when the queue is
	// non-empty, connectivity is available and no pass is running. Reports
	// whether a pass was started.
	TriggerSync() bool

	// SetOnline records a connectivity transition in the sync state.
	SetOnline(online bool)

	// Remove deletes the item with id from the live queue. Removing an
	// unknown id is a no-op and reports false.
	Remove(ctx context.Context, id string) bool

	// Clear empties the queue and persists the empty list. Conflict state is
	// not touched.
	Clear(ctx context.Context)

	// Pending returns a copy of the live queue in FIFO order.
	Pending() []models.QueueItem

	// DeadLetters returns the items dropped without being applied, oldest
	// first.
	DeadLetters() []models.DeadLetter

	// Status exposes the observable sync state.
	Status() StatusReporter

	// Close stops background passes and waits for them to return.
	Close()
}

// StatusReporter is the read side of the sync state consumed by presentation
// layers.
type StatusReporter interface {
	// Snapshot returns the current sync state.
	Snapshot() models.SyncState

	// Progress returns the item currently being processed. ok is false when
	// no progress is being reported.
	Progress() (progress models.SyncProgress, ok bool)

	// Subscribe returns a channel that always holds the most recent state.
	// Slow readers skip intermediate states. cancel closes the channel.
	Subscribe() (states <-chan models.SyncState, cancel func())
}

// ConflictResolver detects divergence between a local and a remote fuel entry
// and reconciles them according to a strategy.
type ConflictResolver interface {
	// DetectConflict reports whether both versions share an id and differ in
	// at least one tracked field.
	DetectConflict(local, remote models.FuelEntry) bool

	// ResolveConflict reconciles local and remote. A nil strategy selects the
	// configured one for the entry. Under the manual strategy the call blocks
	// until ResolveConflictByID supplies a decision or ctx is done.
	ResolveConflict(ctx context.Context, local, remote models.FuelEntry, strategy *models.StrategyType) (models.FuelEntry, error)

	// ResolveConflictByID records a decision for a pending manual conflict
	// and unblocks its waiters. Returns [ErrConflictNotFound] when there is
	// no unresolved case for entryID.
	ResolveConflictByID(entryID string, resolution models.Resolution) error

	// SetStrategy persists strategy for an entry id or a category.
	SetStrategy(ctx context.Context, key string, strategy models.ConflictStrategy) error

	// GetStrategies returns a copy of the strategy table.
	GetStrategies() map[string]models.ConflictStrategy

	// AvailableStrategies lists the supported strategies with descriptions.
	AvailableStrategies() []models.ConflictStrategy

	// PendingConflicts returns the unresolved cases, oldest first.
	PendingConflicts() []models.ConflictCase

	// Conflicts returns every tracked case, including resolved cases still
	// within their grace period.
	Conflicts() []models.ConflictCase

	// ClearConflicts forgets every case. Waiters blocked on an unresolved
	// case return [ErrConflictCleared].
	ClearConflicts()
}

// Applier performs the kind-specific remote operation of a queue item.
type Applier interface {
	Apply(ctx context.Context, item models.QueueItem) error
}

// EntryService is the entry point for local mutations. Every mutation is
// saved locally first and then enqueued for the remote store.
type EntryService interface {
	AddEntry(ctx context.Context, entry models.FuelEntry) (models.FuelEntry, error)
	UpdateEntry(ctx context.Context, id string, patch models.EntryPatch) (models.FuelEntry, error)
	UpdateSettings(ctx context.Context, userID string, settings models.Settings) error
	Settings(ctx context.Context) (models.Settings, error)
	Entries(ctx context.Context, userID string) ([]models.FuelEntry, error)
}

// SyncJob runs the background sync trigger: a fixed interval plus every
// transition to online.
type SyncJob interface {
	// Run blocks until ctx is cancelled.
	Run(ctx context.Context)

	// Start launches Run in a goroutine, stopping a previous run first.
	Start(ctx context.Context)

	// Stop cancels a started job and waits for it to exit.
	Stop()
}
