// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/network"
	"github.com/MKhiriev/go-fuel-sync/internal/notify"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/tracing"
	"github.com/MKhiriev/go-fuel-sync/internal/utils"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// QueueDeps are the collaborators of the queue manager.
type QueueDeps struct {
	Store       store.QueueStore
	DeadLetters store.DeadLetterStore
	Applier     Applier
	Monitor     network.Monitor
	Notifier    notify.Notifier
	// Tracer is optional; nil disables tracing.
	Tracer *tracing.Tracer
}

// itemOutcome is the result of processing one snapshot item.
type itemOutcome int

const (
	outcomeApplied itemOutcome = iota
	outcomeKept
	outcomeDropped
)

type queueManager struct {
	cfg  config.Sync
	deps QueueDeps
	ids  *utils.UUIDGenerator

	status *syncStatus
	logger *logger.Logger

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time

	syncing atomic.Bool

	mu      sync.Mutex
	items   []models.QueueItem
	letters []models.DeadLetter

	bgMu     sync.Mutex
	closed   bool
	bgCtx    context.Context
	bgCancel context.CancelFunc
	bgWG     sync.WaitGroup
}

// NewQueueManager restores the persisted queue and dead-letter log and
// returns a ready manager. Nothing is processed until a trigger fires.
func NewQueueManager(ctx context.Context, cfg config.Sync, deps QueueDeps, logger *logger.Logger) QueueManager {
	return newQueueManager(ctx, cfg, deps, logger)
}

func newQueueManager(ctx context.Context, cfg config.Sync, deps QueueDeps, logger *logger.Logger) *queueManager {
	if deps.Tracer == nil {
		deps.Tracer = tracing.Noop()
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.DefaultMaxRetries
	}

	items := deps.Store.Load(ctx)
	bgCtx, bgCancel := context.WithCancel(context.Background())

	q := &queueManager{
		cfg:    cfg,
		deps:   deps,
		ids:    utils.NewUUIDGenerator(),
		logger: logger,
		sleep:  sleepCtx,
		now:    time.Now,
		items:  items,

		letters:  deps.DeadLetters.Load(ctx),
		bgCtx:    bgCtx,
		bgCancel: bgCancel,
	}
	q.status = newSyncStatus(models.SyncState{
		IsOnline:     deps.Monitor.IsOnline(),
		PendingCount: len(items),
	})

	return q
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *queueManager) Enqueue(ctx context.Context, kind models.ItemKind, payload any) (models.QueueItem, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.QueueItem{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	item := models.QueueItem{
		ID:         q.ids.Generate(),
		Kind:       kind,
		Payload:    raw,
		EnqueuedAt: q.now(),
	}

	pending := q.appendItem(ctx, item)
	q.status.update(func(s *models.SyncState) { s.PendingCount = pending })

	q.logger.Debug().
		Str("func", "queueManager.Enqueue").
		Str("item_id", item.ID).
		Str("kind", string(kind)).
		Int("pending", pending).
		Msg("item enqueued")

	if q.deps.Monitor.IsOnline() && !q.syncing.Load() {
		q.runInBackground()
	}

	return item, nil
}

func (q *queueManager) appendItem(ctx context.Context, item models.QueueItem) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, item)
	q.persistLocked(ctx)
	return len(q.items)
}

func (q *queueManager) TriggerSync() bool {
	if !q.deps.Monitor.IsOnline() || q.syncing.Load() {
		return false
	}

	if q.pendingCount() == 0 {
		return false
	}

	q.runInBackground()
	return true
}

func (q *queueManager) runInBackground() {
	q.bgMu.Lock()
	defer q.bgMu.Unlock()
	if q.closed {
		return
	}

	q.bgWG.Add(1)
	go func() {
		defer q.bgWG.Done()
		_, _ = q.ProcessQueue(q.bgCtx)
	}()
}

func (q *queueManager) ForceSync(ctx context.Context) (models.PassResult, error) {
	return q.ProcessQueue(ctx)
}

func (q *queueManager) ProcessQueue(ctx context.Context) (result models.PassResult, err error) {
	if !q.deps.Monitor.IsOnline() {
		return result, ErrOffline
	}
	if !q.syncing.CompareAndSwap(false, true) {
		return result, ErrSyncInProgress
	}

	snapshot := q.Pending()

	q.status.update(func(s *models.SyncState) {
		s.IsOnline = true
		s.IsSyncing = true
	})
	q.status.setProgress(&models.SyncProgress{Current: 0, Total: len(snapshot), Item: "Starting sync..."})

	passID := q.ids.Generate()
	ctx = utils.WithTraceID(ctx, passID)
	log := q.logger.With().Str("pass_id", passID).Logger()
	ctx, span := q.deps.Tracer.StartPass(ctx, len(snapshot))

	var lastError string
	defer func() {
		if r := recover(); r != nil {
			lastError = fmt.Sprintf("sync pass aborted: %v", r)
			err = fmt.Errorf("sync pass aborted: %v", r)
			log.Error().
				Str("func", "queueManager.ProcessQueue").
				Interface("panic", r).
				Msg("sync pass aborted")
		}
		span.SetResult(result)
		span.End(err)
		q.finishPass(ctx, result, lastError)
	}()

	// targets still waiting on an earlier item; later writes to them wait too
	blocked := make(map[string]struct{})

	for i, item := range snapshot {
		q.status.setProgress(&models.SyncProgress{Current: i + 1, Total: len(snapshot), Item: item.Label()})

		target := targetKey(item)
		if _, ok := blocked[target]; ok && target != "" {
			result.Deferred++
			log.Debug().
				Str("func", "queueManager.ProcessQueue").
				Str("item_id", item.ID).
				Str("target", target).
				Msg("earlier item for target still pending, deferring")
			continue
		}

		outcome, itemErr := q.processItem(ctx, item)
		switch outcome {
		case outcomeApplied:
			result.Processed++
		case outcomeKept:
			result.Failed++
			if target != "" {
				blocked[target] = struct{}{}
			}
		case outcomeDropped:
			result.Failed++
			result.Dropped++
		}
		if itemErr != nil {
			lastError = itemErr.Error()
		}
	}

	log.Info().
		Str("func", "queueManager.ProcessQueue").
		Int("processed", result.Processed).
		Int("failed", result.Failed).
		Int("dropped", result.Dropped).
		Int("deferred", result.Deferred).
		Msg("sync pass finished")

	return result, nil
}

// processItem applies one item with at most one in-pass retry.
//
// On the first failure retryCount is incremented and persisted, the pass
// sleeps BaseDelay*2^(retryCount-1) and tries once more. The item is dropped
// when that retry fails and retryCount reached MaxRetries, when it was
// selected with retryCount already at MaxRetries, or when its kind is
// unknown.
func (q *queueManager) processItem(ctx context.Context, item models.QueueItem) (itemOutcome, error) {
	err := q.apply(ctx, item)
	if err == nil {
		q.removeItem(ctx, item.ID)
		return outcomeApplied, nil
	}
	if errors.Is(err, ErrUnknownItemKind) || item.RetryCount >= q.cfg.MaxRetries {
		return outcomeDropped, q.drop(ctx, item, err)
	}

	item.RetryCount++
	retriedAt := q.now()
	item.LastRetryAt = &retriedAt
	if !q.replaceItem(ctx, item) {
		// removed concurrently, nothing left to retry
		return outcomeKept, err
	}

	delay := q.cfg.BaseDelay * time.Duration(1<<(item.RetryCount-1))
	q.logger.Warn().Err(err).
		Str("func", "queueManager.processItem").
		Str("item_id", item.ID).
		Int("retry_count", item.RetryCount).
		Dur("backoff", delay).
		Msg("apply failed, retrying")

	if sleepErr := q.sleep(ctx, delay); sleepErr != nil {
		return outcomeKept, err
	}

	if err = q.apply(ctx, item); err == nil {
		q.removeItem(ctx, item.ID)
		return outcomeApplied, nil
	}
	if errors.Is(err, ErrUnknownItemKind) || item.RetryCount >= q.cfg.MaxRetries {
		return outcomeDropped, q.drop(ctx, item, err)
	}

	return outcomeKept, err
}

func (q *queueManager) apply(ctx context.Context, item models.QueueItem) error {
	ctx, span := q.deps.Tracer.StartItem(ctx, item)
	err := q.deps.Applier.Apply(ctx, item)
	span.End(err)
	return err
}

// drop removes item from the live queue and records it in the dead-letter
// log. The returned error describes the loss.
func (q *queueManager) drop(ctx context.Context, item models.QueueItem, cause error) error {
	q.removeItem(ctx, item.ID)

	letter := models.DeadLetter{Item: item, Reason: cause.Error(), DroppedAt: q.now()}

	q.appendDeadLetter(ctx, letter)

	q.logger.Error().Err(cause).
		Str("func", "queueManager.drop").
		Str("item_id", item.ID).
		Str("kind", string(item.Kind)).
		Int("retry_count", item.RetryCount).
		Msg("queue item dropped")

	return fmt.Errorf("dropped %s item %s after %d retries: %w", item.Kind, item.ID, item.RetryCount, cause)
}

func (q *queueManager) appendDeadLetter(ctx context.Context, letter models.DeadLetter) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.letters = append(q.letters, letter)
	if limit := q.cfg.DeadLetterLimit; limit > 0 && len(q.letters) > limit {
		q.letters = slices.Clone(q.letters[len(q.letters)-limit:])
	}
	q.deps.DeadLetters.Save(context.WithoutCancel(ctx), slices.Clone(q.letters))
}

func (q *queueManager) finishPass(ctx context.Context, result models.PassResult, lastError string) {
	pending := q.pendingCount()

	now := q.now()
	q.status.update(func(s *models.SyncState) {
		s.IsSyncing = false
		s.PendingCount = pending
		s.LastSyncAt = &now
		s.LastError = lastError
	})
	q.syncing.Store(false)

	final := &models.SyncProgress{
		Current: result.Processed + result.Failed,
		Total:   result.Processed + result.Failed,
		Item:    fmt.Sprintf("Sync complete (%d successful, %d errors)", result.Processed, result.Failed),
	}
	q.status.setProgress(final)
	time.AfterFunc(q.cfg.ProgressClearDelay, func() { q.status.clearProgressIf(final) })

	if result.Processed > 0 {
		q.deps.Notifier.NotifySyncComplete(context.WithoutCancel(ctx), result.Processed)
	}
}

func (q *queueManager) SetOnline(online bool) {
	q.status.update(func(s *models.SyncState) { s.IsOnline = online })
}

func (q *queueManager) Remove(ctx context.Context, id string) bool {
	return q.removeItem(ctx, id)
}

func (q *queueManager) removeItem(ctx context.Context, id string) bool {
	pending, ok := q.deleteItem(ctx, id)
	if !ok {
		return false
	}

	q.status.update(func(s *models.SyncState) { s.PendingCount = pending })
	return true
}

func (q *queueManager) deleteItem(ctx context.Context, id string) (int, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.items, func(it models.QueueItem) bool { return it.ID == id })
	if idx < 0 {
		return len(q.items), false
	}
	q.items = slices.Delete(q.items, idx, idx+1)
	q.persistLocked(ctx)
	return len(q.items), true
}

// replaceItem stores the updated retry state of item in the live queue.
func (q *queueManager) replaceItem(ctx context.Context, item models.QueueItem) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := slices.IndexFunc(q.items, func(it models.QueueItem) bool { return it.ID == item.ID })
	if idx < 0 {
		return false
	}
	q.items[idx] = item
	q.persistLocked(ctx)
	return true
}

// persistLocked saves the live queue. The caller holds q.mu. Saving is not
// tied to ctx cancellation so a stopping pass still records its progress.
func (q *queueManager) persistLocked(ctx context.Context) {
	q.deps.Store.Save(context.WithoutCancel(ctx), slices.Clone(q.items))
}

func (q *queueManager) Clear(ctx context.Context) {
	q.clearItems(ctx)
	q.status.update(func(s *models.SyncState) { s.PendingCount = 0 })
}

func (q *queueManager) clearItems(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = nil
	q.persistLocked(ctx)
}

func (q *queueManager) pendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *queueManager) Pending() []models.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

func (q *queueManager) DeadLetters() []models.DeadLetter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.letters)
}

func (q *queueManager) Status() StatusReporter {
	return q.status
}

func (q *queueManager) Close() {
	q.bgMu.Lock()
	q.closed = true
	q.bgMu.Unlock()

	q.bgCancel()
	q.bgWG.Wait()
}

// targetKey names the remote record an item writes to. Items sharing a key
// are applied in enqueue order. An empty key means the item is unordered.
func targetKey(item models.QueueItem) string {
	switch item.Kind {
	case models.KindCreateEntry:
		var entry models.FuelEntry
		if json.Unmarshal(item.Payload, &entry) == nil && entry.ID != "" {
			return models.FillsCollection + "/" + entry.ID
		}
	case models.KindUpdateEntry:
		var update models.EntryUpdate
		if json.Unmarshal(item.Payload, &update) == nil && update.TargetID != "" {
			return models.FillsCollection + "/" + update.TargetID
		}
	case models.KindUpdateSettings:
		var update models.SettingsUpdate
		if json.Unmarshal(item.Payload, &update) == nil && update.UserID != "" {
			return models.SettingsCollection + "/" + update.UserID
		}
	}
	return ""
}
