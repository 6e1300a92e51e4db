package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/mock"
	"github.com/MKhiriev/go-fuel-sync/internal/network"
	"github.com/MKhiriev/go-fuel-sync/internal/notify"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type applierFunc func(ctx context.Context, item models.QueueItem) error

func (f applierFunc) Apply(ctx context.Context, item models.QueueItem) error { return f(ctx, item) }

func succeed(context.Context, models.QueueItem) error { return nil }

var errRemoteDown = errors.New("remote answered 503")

func testSyncConfig() config.Sync {
	return config.Sync{
		MaxRetries:         3,
		BaseDelay:          time.Second,
		ProgressClearDelay: time.Hour,
		ConflictGraceDelay: 10 * time.Millisecond,
		DeadLetterLimit:    50,
	}
}

type testQueue struct {
	q      *queueManager
	sw     *network.Switch
	kv     store.KeyValueStore
	mu     sync.Mutex
	delays []time.Duration
}

func (tq *testQueue) sleeps() []time.Duration {
	tq.mu.Lock()
	defer tq.mu.Unlock()
	return append([]time.Duration(nil), tq.delays...)
}

func newTestQueue(t *testing.T, cfg config.Sync, applier Applier, notifier notify.Notifier) *testQueue {
	t.Helper()
	return newTestQueueOn(t, store.NewMemoryKeyValueStore(), cfg, applier, notifier)
}

// newTestQueueOn builds an offline queue manager over kv whose backoff sleeps
// are recorded instead of waited for.
func newTestQueueOn(t *testing.T, kv store.KeyValueStore, cfg config.Sync, applier Applier, notifier notify.Notifier) *testQueue {
	t.Helper()

	if notifier == nil {
		ctrl := gomock.NewController(t)
		m := mock.NewMockNotifier(ctrl)
		m.EXPECT().NotifySyncComplete(gomock.Any(), gomock.Any()).AnyTimes()
		notifier = m
	}

	tq := &testQueue{sw: network.NewSwitch(false), kv: kv}
	tq.q = newQueueManager(context.Background(), cfg, QueueDeps{
		Store:       store.NewQueueStore(kv, logger.Nop()),
		DeadLetters: store.NewDeadLetterStore(kv, logger.Nop()),
		Applier:     applier,
		Monitor:     tq.sw,
		Notifier:    notifier,
	}, logger.Nop())
	tq.q.sleep = func(_ context.Context, d time.Duration) error {
		tq.mu.Lock()
		tq.delays = append(tq.delays, d)
		tq.mu.Unlock()
		return nil
	}
	t.Cleanup(tq.q.Close)

	return tq
}

func enqueueEntry(t *testing.T, q *queueManager, id string) models.QueueItem {
	t.Helper()
	item, err := q.Enqueue(context.Background(), models.KindCreateEntry, models.FuelEntry{ID: id})
	require.NoError(t, err)
	return item
}

// ── Enqueue ──────────────────────────────────────────────────────────────────

func TestQueueManager_Enqueue_PersistsAndCounts(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)

	item := enqueueEntry(t, tq.q, "e-1")

	assert.NotEmpty(t, item.ID)
	assert.Equal(t, models.KindCreateEntry, item.Kind)
	assert.Zero(t, item.RetryCount)
	var entry models.FuelEntry
	require.NoError(t, decodePayload(item, &entry))
	assert.Equal(t, "e-1", entry.ID)
	assert.Equal(t, 1, tq.q.Status().Snapshot().PendingCount)

	persisted := store.NewQueueStore(tq.kv, logger.Nop()).Load(context.Background())
	require.Len(t, persisted, 1)
	assert.Equal(t, item.ID, persisted[0].ID)
}

func TestQueueManager_Enqueue_UnencodablePayload(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)

	_, err := tq.q.Enqueue(context.Background(), models.KindCreateEntry, make(chan int))
	require.Error(t, err)
	assert.Empty(t, tq.q.Pending())
}

func TestQueueManager_Enqueue_StartsPassWhenOnline(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	tq.sw.Set(true)

	enqueueEntry(t, tq.q, "e-1")

	assert.Eventually(t, func() bool {
		return len(tq.q.Pending()) == 0 && !tq.q.Status().Snapshot().IsSyncing
	}, time.Second, 5*time.Millisecond)
}

// ── ProcessQueue ─────────────────────────────────────────────────────────────

func TestQueueManager_ProcessQueue_FIFO(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	applier := applierFunc(func(_ context.Context, item models.QueueItem) error {
		var entry models.FuelEntry
		require.NoError(t, decodePayload(item, &entry))
		mu.Lock()
		order = append(order, entry.ID)
		mu.Unlock()
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)

	for _, id := range []string{"a", "b", "c"} {
		enqueueEntry(t, tq.q, id)
	}
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PassResult{Processed: 3}, result)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Empty(t, tq.q.Pending())

	state := tq.q.Status().Snapshot()
	assert.False(t, state.IsSyncing)
	assert.Zero(t, state.PendingCount)
	assert.NotNil(t, state.LastSyncAt)
	assert.Empty(t, state.LastError)
}

func TestQueueManager_ProcessQueue_Offline(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	enqueueEntry(t, tq.q, "a")

	_, err := tq.q.ProcessQueue(context.Background())
	assert.ErrorIs(t, err, ErrOffline)
	assert.Len(t, tq.q.Pending(), 1)
}

func TestQueueManager_ProcessQueue_RetryThenSuccess(t *testing.T) {
	calls := 0
	applier := applierFunc(func(context.Context, models.QueueItem) error {
		calls++
		if calls == 1 {
			return errRemoteDown
		}
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PassResult{Processed: 1}, result)
	assert.Equal(t, []time.Duration{time.Second}, tq.sleeps())
	assert.Empty(t, tq.q.Pending())
}

func TestQueueManager_ProcessQueue_BackoffAndDrop(t *testing.T) {
	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	item := enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)
	ctx := context.Background()

	// pass 1: retry count 0 -> 1, one in-pass retry fails, item is kept
	result, err := tq.q.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Failed: 1}, result)
	require.Len(t, tq.q.Pending(), 1)
	assert.Equal(t, 1, tq.q.Pending()[0].RetryCount)
	assert.NotNil(t, tq.q.Pending()[0].LastRetryAt)
	assert.Equal(t, errRemoteDown.Error(), tq.q.Status().Snapshot().LastError)

	// pass 2: 1 -> 2, kept
	_, err = tq.q.ProcessQueue(ctx)
	require.NoError(t, err)
	require.Len(t, tq.q.Pending(), 1)
	assert.Equal(t, 2, tq.q.Pending()[0].RetryCount)

	// pass 3: 2 -> 3, the retry fails at the limit and the item is dropped
	result, err = tq.q.ProcessQueue(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Failed: 1, Dropped: 1}, result)
	assert.Empty(t, tq.q.Pending())

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, tq.sleeps())

	letters := tq.q.DeadLetters()
	require.Len(t, letters, 1)
	assert.Equal(t, item.ID, letters[0].Item.ID)
	assert.Equal(t, 3, letters[0].Item.RetryCount)
	assert.Contains(t, letters[0].Reason, "503")
	assert.Contains(t, tq.q.Status().Snapshot().LastError, "dropped")
}

func TestQueueManager_ProcessQueue_SelectedAtLimitIsDropped(t *testing.T) {
	kv := store.NewMemoryKeyValueStore()
	store.NewQueueStore(kv, logger.Nop()).Save(context.Background(), []models.QueueItem{
		{ID: "stale", Kind: models.KindCreateEntry, Payload: []byte(`{}`), RetryCount: 3},
	})

	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })
	tq := newTestQueueOn(t, kv, testSyncConfig(), applier, nil)
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PassResult{Failed: 1, Dropped: 1}, result)
	assert.Empty(t, tq.sleeps())
	assert.Empty(t, tq.q.Pending())
}

func TestQueueManager_ProcessQueue_UnknownKindDroppedWithoutRetry(t *testing.T) {
	applier := applierFunc(func(_ context.Context, item models.QueueItem) error {
		return fmt.Errorf("%w: %q", ErrUnknownItemKind, item.Kind)
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	_, err := tq.q.Enqueue(context.Background(), "delete-entry", map[string]string{"id": "x"})
	require.NoError(t, err)
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.PassResult{Failed: 1, Dropped: 1}, result)
	assert.Empty(t, tq.sleeps())
	require.Len(t, tq.q.DeadLetters(), 1)
	assert.Equal(t, models.ItemKind("delete-entry"), tq.q.DeadLetters()[0].Item.Kind)
}

func TestQueueManager_ProcessQueue_NoConcurrentPasses(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	applier := applierFunc(func(context.Context, models.QueueItem) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	done := make(chan models.PassResult)
	go func() {
		result, _ := tq.q.ProcessQueue(context.Background())
		done <- result
	}()
	<-started

	_, err := tq.q.ProcessQueue(context.Background())
	assert.ErrorIs(t, err, ErrSyncInProgress)
	assert.False(t, tq.q.TriggerSync())
	assert.True(t, tq.q.Status().Snapshot().IsSyncing)

	close(release)
	assert.Equal(t, models.PassResult{Processed: 1}, <-done)
	assert.False(t, tq.q.Status().Snapshot().IsSyncing)
}

func TestQueueManager_ProcessQueue_PanicResetsSyncing(t *testing.T) {
	panicking := true
	applier := applierFunc(func(context.Context, models.QueueItem) error {
		if panicking {
			panic("storage exploded")
		}
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	_, err := tq.q.ProcessQueue(context.Background())
	require.Error(t, err)

	state := tq.q.Status().Snapshot()
	assert.False(t, state.IsSyncing)
	assert.Contains(t, state.LastError, "storage exploded")

	panicking = false
	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}

func TestQueueManager_ProcessQueue_BackoffInterruptedByContext(t *testing.T) {
	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })
	tq := newTestQueue(t, testSyncConfig(), applier, nil)
	tq.q.sleep = sleepCtx
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := tq.q.ProcessQueue(ctx)
	require.NoError(t, err)

	assert.Equal(t, models.PassResult{Failed: 1}, result)
	require.Len(t, tq.q.Pending(), 1)
	assert.Equal(t, 1, tq.q.Pending()[0].RetryCount)
}

// ── Notifications and progress ───────────────────────────────────────────────

func TestQueueManager_NotifiesOnSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	notifier.EXPECT().NotifySyncComplete(gomock.Any(), 2).Times(1)

	fail := map[string]bool{}
	applier := applierFunc(func(_ context.Context, item models.QueueItem) error {
		if fail[item.ID] {
			return errRemoteDown
		}
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, notifier)
	enqueueEntry(t, tq.q, "a")
	fail[enqueueEntry(t, tq.q, "b").ID] = true
	enqueueEntry(t, tq.q, "c")
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Processed: 2, Failed: 1}, result)

	progress, ok := tq.q.Status().Progress()
	require.True(t, ok)
	assert.Equal(t, "Sync complete (2 successful, 1 errors)", progress.Item)
	assert.Equal(t, 3, progress.Current)
	assert.Equal(t, 3, progress.Total)
}

func TestQueueManager_NoNotificationWithoutSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)

	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })
	tq := newTestQueue(t, testSyncConfig(), applier, notifier)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	_, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
}

func TestQueueManager_ProgressIsClearedAfterDelay(t *testing.T) {
	cfg := testSyncConfig()
	cfg.ProgressClearDelay = 20 * time.Millisecond
	tq := newTestQueue(t, cfg, applierFunc(succeed), nil)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)

	_, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := tq.q.Status().Progress()
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestQueueManager_ProgressDuringPass(t *testing.T) {
	var seen []models.SyncProgress
	var tq *testQueue
	applier := applierFunc(func(context.Context, models.QueueItem) error {
		p, ok := tq.q.Status().Progress()
		require.True(t, ok)
		seen = append(seen, p)
		return nil
	})
	tq = newTestQueue(t, testSyncConfig(), applier, nil)
	enqueueEntry(t, tq.q, "a")
	_, err := tq.q.Enqueue(context.Background(), models.KindUpdateSettings, models.SettingsUpdate{UserID: "u-1"})
	require.NoError(t, err)
	tq.sw.Set(true)

	_, err = tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []models.SyncProgress{
		{Current: 1, Total: 2, Item: "Syncing fuel entry..."},
		{Current: 2, Total: 2, Item: "Updating settings..."},
	}, seen)
}

// ── Dead letters ─────────────────────────────────────────────────────────────

func TestQueueManager_DeadLetterLimit(t *testing.T) {
	cfg := testSyncConfig()
	cfg.MaxRetries = 1
	cfg.DeadLetterLimit = 2

	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })
	tq := newTestQueue(t, cfg, applier, nil)
	enqueueEntry(t, tq.q, "a")
	second := enqueueEntry(t, tq.q, "b")
	third := enqueueEntry(t, tq.q, "c")
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, result.Dropped)

	letters := tq.q.DeadLetters()
	require.Len(t, letters, 2)
	assert.Equal(t, second.ID, letters[0].Item.ID)
	assert.Equal(t, third.ID, letters[1].Item.ID)

	persisted := store.NewDeadLetterStore(tq.kv, logger.Nop()).Load(context.Background())
	assert.Len(t, persisted, 2)
}

// ── Queue maintenance ────────────────────────────────────────────────────────

func TestQueueManager_RemoveIsIdempotent(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	item := enqueueEntry(t, tq.q, "a")
	enqueueEntry(t, tq.q, "b")

	assert.True(t, tq.q.Remove(context.Background(), item.ID))
	assert.False(t, tq.q.Remove(context.Background(), item.ID))
	assert.False(t, tq.q.Remove(context.Background(), "unknown"))

	assert.Len(t, tq.q.Pending(), 1)
	assert.Equal(t, 1, tq.q.Status().Snapshot().PendingCount)
}

func TestQueueManager_Clear(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	enqueueEntry(t, tq.q, "a")
	enqueueEntry(t, tq.q, "b")

	tq.q.Clear(context.Background())

	assert.Empty(t, tq.q.Pending())
	assert.Zero(t, tq.q.Status().Snapshot().PendingCount)
	assert.Empty(t, store.NewQueueStore(tq.kv, logger.Nop()).Load(context.Background()))
}

func TestQueueManager_RestoresPersistedQueue(t *testing.T) {
	kv := store.NewMemoryKeyValueStore()
	applier := applierFunc(func(context.Context, models.QueueItem) error { return errRemoteDown })

	first := newTestQueueOn(t, kv, testSyncConfig(), applier, nil)
	item := enqueueEntry(t, first.q, "a")
	first.sw.Set(true)
	_, err := first.q.ProcessQueue(context.Background())
	require.NoError(t, err)

	restarted := newTestQueueOn(t, kv, testSyncConfig(), applierFunc(succeed), nil)

	pending := restarted.q.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, item.ID, pending[0].ID)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Equal(t, 1, restarted.q.Status().Snapshot().PendingCount)
}

func TestQueueManager_TriggerSync(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)

	assert.False(t, tq.q.TriggerSync(), "offline")

	tq.sw.Set(true)
	assert.False(t, tq.q.TriggerSync(), "empty queue")

	tq.sw.Set(false)
	enqueueEntry(t, tq.q, "a")
	tq.sw.Set(true)
	assert.True(t, tq.q.TriggerSync())

	assert.Eventually(t, func() bool { return len(tq.q.Pending()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestQueueManager_CloseStopsBackgroundPasses(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	tq.q.Close()

	tq.sw.Set(true)
	enqueueEntry(t, tq.q, "a")

	assert.Never(t, func() bool { return len(tq.q.Pending()) == 0 }, 50*time.Millisecond, 5*time.Millisecond)
}

// ── Per-record ordering ──────────────────────────────────────────────────────

func enqueuePriceUpdate(t *testing.T, q *queueManager, id string, price float64) {
	t.Helper()
	_, err := q.Enqueue(context.Background(), models.KindUpdateEntry, models.EntryUpdate{
		TargetID: id,
		Patch:    models.EntryPatch{Price: float(price)},
	})
	require.NoError(t, err)
}

func TestQueueManager_ProcessQueue_DefersLaterWritesToFailedTarget(t *testing.T) {
	var (
		mu       sync.Mutex
		failures = 2
		applied  []string
	)
	applier := applierFunc(func(_ context.Context, item models.QueueItem) error {
		mu.Lock()
		defer mu.Unlock()

		if item.Kind == models.KindCreateEntry {
			var entry models.FuelEntry
			require.NoError(t, decodePayload(item, &entry))
			applied = append(applied, "create "+entry.ID)
			return nil
		}

		var update models.EntryUpdate
		require.NoError(t, decodePayload(item, &update))
		if failures > 0 {
			failures--
			return errRemoteDown
		}
		applied = append(applied, fmt.Sprintf("update %s price=%.1f", update.TargetID, *update.Patch.Price))
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)

	enqueuePriceUpdate(t, tq.q, "e-1", 3.2)
	enqueuePriceUpdate(t, tq.q, "e-1", 3.5)
	enqueueEntry(t, tq.q, "e-2")
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Processed: 1, Failed: 1, Deferred: 1}, result)
	assert.Equal(t, []string{"create e-2"}, applied)

	pending := tq.q.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, 1, pending[0].RetryCount)
	assert.Zero(t, pending[1].RetryCount, "deferred item is not charged a retry")

	result, err = tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Processed: 2}, result)
	assert.Equal(t, []string{
		"create e-2",
		"update e-1 price=3.2",
		"update e-1 price=3.5",
	}, applied)
	assert.Empty(t, tq.q.Pending())
}

func TestQueueManager_ProcessQueue_DroppedItemDoesNotBlockTarget(t *testing.T) {
	var applied []string
	applier := applierFunc(func(_ context.Context, item models.QueueItem) error {
		if item.Kind == models.ItemKind("legacy") {
			return ErrUnknownItemKind
		}
		applied = append(applied, string(item.Kind))
		return nil
	})
	tq := newTestQueue(t, testSyncConfig(), applier, nil)

	_, err := tq.q.Enqueue(context.Background(), models.ItemKind("legacy"), models.EntryUpdate{TargetID: "e-1"})
	require.NoError(t, err)
	enqueuePriceUpdate(t, tq.q, "e-1", 3.5)
	tq.sw.Set(true)

	result, err := tq.q.ProcessQueue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.PassResult{Processed: 1, Failed: 1, Dropped: 1}, result)
	assert.Equal(t, []string{string(models.KindUpdateEntry)}, applied)
}

func TestTargetKey(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.ItemKind
		payload any
		want    string
	}{
		{"create entry", models.KindCreateEntry, models.FuelEntry{ID: "e-1"}, "fills/e-1"},
		{"update entry", models.KindUpdateEntry, models.EntryUpdate{TargetID: "e-1"}, "fills/e-1"},
		{"settings", models.KindUpdateSettings, models.SettingsUpdate{UserID: "u-1"}, "userSettings/u-1"},
		{"create without id", models.KindCreateEntry, models.FuelEntry{}, ""},
		{"unknown kind", models.ItemKind("legacy"), models.FuelEntry{ID: "e-1"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetKey(queueItem(t, tt.kind, tt.payload)))
		})
	}
}

func TestTargetKey_MalformedPayload(t *testing.T) {
	item := models.QueueItem{Kind: models.KindUpdateEntry, Payload: []byte("{")}
	assert.Empty(t, targetKey(item))
}

// ── Store failures ───────────────────────────────────────────────────────────

// explodingQueueStore panics on every Save after the first okSaves.
type explodingQueueStore struct {
	mu      sync.Mutex
	saves   int
	okSaves int
}

func (s *explodingQueueStore) Load(context.Context) []models.QueueItem { return nil }

func (s *explodingQueueStore) Save(context.Context, []models.QueueItem) {
	s.mu.Lock()
	s.saves++
	n := s.saves
	s.mu.Unlock()

	if n > s.okSaves {
		panic("queue file vanished")
	}
}

func TestQueueManager_ProcessQueue_StorePanicReleasesQueue(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	notifier.EXPECT().NotifySyncComplete(gomock.Any(), gomock.Any()).AnyTimes()

	kv := store.NewMemoryKeyValueStore()
	sw := network.NewSwitch(false)
	q := newQueueManager(context.Background(), testSyncConfig(), QueueDeps{
		Store:       &explodingQueueStore{okSaves: 1},
		DeadLetters: store.NewDeadLetterStore(kv, logger.Nop()),
		Applier:     applierFunc(succeed),
		Monitor:     sw,
		Notifier:    notifier,
	}, logger.Nop())
	t.Cleanup(q.Close)

	enqueueEntry(t, q, "a")
	sw.Set(true)

	done := make(chan error, 1)
	go func() {
		_, err := q.ProcessQueue(context.Background())
		done <- err
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "queue file vanished")
	case <-time.After(time.Second):
		t.Fatal("pass did not finish after store panic")
	}

	state := q.Status().Snapshot()
	assert.False(t, state.IsSyncing)
	assert.Contains(t, state.LastError, "queue file vanished")

	pendingDone := make(chan struct{})
	go func() {
		q.Pending()
		q.DeadLetters()
		close(pendingDone)
	}()
	select {
	case <-pendingDone:
	case <-time.After(time.Second):
		t.Fatal("queue lock still held after store panic")
	}
}

func TestQueueManager_CloseConcurrentWithTriggers(t *testing.T) {
	tq := newTestQueue(t, testSyncConfig(), applierFunc(succeed), nil)
	tq.sw.Set(true)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tq.q.runInBackground()
		}()
	}
	tq.q.Close()
	wg.Wait()

	tq.q.runInBackground()
	tq.q.Close()
}
