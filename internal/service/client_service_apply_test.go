package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-fuel-sync/internal/adapter"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/mock"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

var applyNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func newTestApplier(t *testing.T, ctrl *gomock.Controller) (*remoteApplier, *mock.MockRemoteStore, *mock.MockEntryRepository, *conflictResolver) {
	t.Helper()

	remote := mock.NewMockRemoteStore(ctrl)
	entries := mock.NewMockEntryRepository(ctrl)
	resolver := newTestResolver(t, store.NewMemoryKeyValueStore(), 0)

	a := NewRemoteApplier(remote, entries, resolver, logger.Nop()).(*remoteApplier)
	a.now = func() time.Time { return applyNow }

	return a, remote, entries, resolver
}

func queueItem(t *testing.T, kind models.ItemKind, payload any) models.QueueItem {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.QueueItem{ID: "q-1", Kind: kind, Payload: raw}
}

func float(v float64) *float64 { return &v }

func entryDocument(e models.FuelEntry) models.Document {
	fields, _ := models.ToFields(e)
	return models.Document{ID: e.ID, Collection: models.FillsCollection, Fields: fields, CreatedAt: e.CreatedAt}
}

// ── create-entry ─────────────────────────────────────────────────────────────

func TestRemoteApplier_CreateEntry(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	entry := models.FuelEntry{ID: "e-1", UserID: "u-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35, CreatedAt: conflictDay1}

	remote.EXPECT().Create(gomock.Any(), models.FillsCollection, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ string, fields map[string]any) (string, error) {
			assert.Equal(t, "e-1", fields["id"])
			assert.Equal(t, "u-1", fields["userId"])
			assert.Equal(t, 100.0, fields["odo"])
			assert.Equal(t, 35.0, fields["total"])
			return "e-1", nil
		},
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindCreateEntry, entry)))
}

func TestRemoteApplier_CreateEntry_RemoteError(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	remote.EXPECT().Create(gomock.Any(), models.FillsCollection, gomock.Any()).
		Return("", fmt.Errorf("%w: 503", adapter.ErrUnavailable))

	err := a.Apply(context.Background(), queueItem(t, models.KindCreateEntry, models.FuelEntry{ID: "e-1"}))
	assert.ErrorIs(t, err, ErrRemoteApply)
	assert.ErrorIs(t, err, adapter.ErrUnavailable)
	assert.NotErrorIs(t, err, ErrUnknownItemKind)
}

func TestRemoteApplier_UnknownKind(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, _, _, _ := newTestApplier(t, ctrl)

	err := a.Apply(context.Background(), queueItem(t, "delete-entry", map[string]string{"id": "e-1"}))
	assert.ErrorIs(t, err, ErrUnknownItemKind)
}

func TestRemoteApplier_MalformedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, _, _, _ := newTestApplier(t, ctrl)

	item := models.QueueItem{ID: "q-1", Kind: models.KindCreateEntry, Payload: []byte(`"not an entry"`)}

	assert.ErrorIs(t, a.Apply(context.Background(), item), ErrUnknownItemKind)
}

// ── update-entry ─────────────────────────────────────────────────────────────

func TestRemoteApplier_UpdateEntry_WithoutBase(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Price: float(3.6)}}
	remote.EXPECT().Update(gomock.Any(), models.FillsCollection, "e-1", map[string]any{"price": 3.6}).Return(nil)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update)))
}

func TestRemoteApplier_UpdateEntry_RemoteMatchesBase(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	base := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35, CreatedAt: conflictDay1}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Price: float(3.7), Total: float(37)}, Base: &base}

	gomock.InOrder(
		remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(entryDocument(base), true, nil),
		remote.EXPECT().Update(gomock.Any(), models.FillsCollection, "e-1", map[string]any{"price": 3.7, "total": 37.0}).Return(nil),
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update)))
}

func TestRemoteApplier_UpdateEntry_MissingRemoteCreatesLocal(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	base := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Odometer: float(120)}, Base: &base}

	gomock.InOrder(
		remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(models.Document{}, false, nil),
		remote.EXPECT().Create(gomock.Any(), models.FillsCollection, gomock.Any()).DoAndReturn(
			func(_ context.Context, _ string, fields map[string]any) (string, error) {
				assert.Equal(t, "e-1", fields["id"])
				assert.Equal(t, 120.0, fields["odo"])
				assert.Equal(t, 3.5, fields["price"])
				return "e-1", nil
			},
		),
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update)))
}

func TestRemoteApplier_UpdateEntry_ReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	base := models.FuelEntry{ID: "e-1"}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Odometer: float(1)}, Base: &base}
	remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(models.Document{}, false, adapter.ErrUnavailable)

	err := a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update))
	assert.ErrorIs(t, err, ErrRemoteApply)
}

func TestRemoteApplier_UpdateEntry_ConflictMerged(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, entries, resolver := newTestApplier(t, ctrl)
	require.NoError(t, resolver.SetStrategy(context.Background(), models.CategoryFuelEntry, models.ConflictStrategy{Type: models.StrategyMerge}))

	base := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35, CreatedAt: conflictDay1}
	remoteEntry := models.FuelEntry{ID: "e-1", Odometer: 105, Price: 3.6, Amount: 10, Total: 36, CreatedAt: conflictDay2}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Price: float(3.7), Total: float(37)}, Base: &base}

	gomock.InOrder(
		remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(entryDocument(remoteEntry), true, nil),
		entries.EXPECT().SaveEntry(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e models.FuelEntry) error {
				assert.Equal(t, "e-1", e.ID)
				assert.Equal(t, 105.0, e.Odometer)
				assert.Equal(t, 3.6, e.Price)
				assert.InDelta(t, 36.0, e.Total, 1e-9)
				require.NotNil(t, e.UpdatedAt)
				assert.Equal(t, applyNow, *e.UpdatedAt)
				return nil
			},
		),
		remote.EXPECT().Update(gomock.Any(), models.FillsCollection, "e-1", gomock.Any()).DoAndReturn(
			func(_ context.Context, _, _ string, patch map[string]any) error {
				assert.Equal(t, 105.0, patch["odo"])
				assert.Equal(t, 3.6, patch["price"])
				assert.Equal(t, 10.0, patch["amount"])
				return nil
			},
		),
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update)))
}

func TestRemoteApplier_UpdateEntry_RemoteChangedButAgrees(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	base := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35}
	// another device already wrote the same values
	remoteEntry := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.7, Amount: 10, Total: 37}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Price: float(3.7), Total: float(37)}, Base: &base}

	gomock.InOrder(
		remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(entryDocument(remoteEntry), true, nil),
		remote.EXPECT().Update(gomock.Any(), models.FillsCollection, "e-1", gomock.Any()).Return(nil),
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateEntry, update)))
}

func TestRemoteApplier_UpdateEntry_ConflictCleared(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, resolver := newTestApplier(t, ctrl)

	base := models.FuelEntry{ID: "e-1", Odometer: 100, Price: 3.5, Amount: 10, Total: 35}
	remoteEntry := models.FuelEntry{ID: "e-1", Odometer: 105, Price: 3.6, Amount: 10, Total: 36}
	update := models.EntryUpdate{TargetID: "e-1", Patch: models.EntryPatch{Price: float(3.7)}, Base: &base}

	remote.EXPECT().Read(gomock.Any(), models.FillsCollection, "e-1").Return(entryDocument(remoteEntry), true, nil)

	item := queueItem(t, models.KindUpdateEntry, update)
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Apply(context.Background(), item)
	}()

	waitForPending(t, resolver, "e-1")
	resolver.ClearConflicts()

	err := <-errCh
	assert.ErrorIs(t, err, ErrConflictCleared)
	assert.NotErrorIs(t, err, ErrUnknownItemKind)
}

// ── update-settings ──────────────────────────────────────────────────────────

func TestRemoteApplier_UpdateSettings(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	update := models.SettingsUpdate{UserID: "u-1", Settings: models.Settings{Currency: "EUR", Units: "metric"}}
	remote.EXPECT().Update(gomock.Any(), models.SettingsCollection, "u-1",
		map[string]any{"currency": "EUR", "units": "metric"}).Return(nil)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateSettings, update)))
}

func TestRemoteApplier_UpdateSettings_CreatesOnFirstWrite(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	update := models.SettingsUpdate{UserID: "u-1", Settings: models.Settings{Currency: "USD", Units: "imperial"}}

	gomock.InOrder(
		remote.EXPECT().Update(gomock.Any(), models.SettingsCollection, "u-1", gomock.Any()).
			Return(fmt.Errorf("%w: 404", adapter.ErrNotFound)),
		remote.EXPECT().Create(gomock.Any(), models.SettingsCollection,
			map[string]any{"id": "u-1", "currency": "USD", "units": "imperial"}).Return("u-1", nil),
	)

	require.NoError(t, a.Apply(context.Background(), queueItem(t, models.KindUpdateSettings, update)))
}

func TestRemoteApplier_UpdateSettings_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	a, remote, _, _ := newTestApplier(t, ctrl)

	remote.EXPECT().Update(gomock.Any(), models.SettingsCollection, "u-1", gomock.Any()).Return(adapter.ErrInternalServerError)

	err := a.Apply(context.Background(), queueItem(t, models.KindUpdateSettings, models.SettingsUpdate{UserID: "u-1"}))
	assert.ErrorIs(t, err, ErrRemoteApply)
	assert.ErrorIs(t, err, adapter.ErrInternalServerError)
}
