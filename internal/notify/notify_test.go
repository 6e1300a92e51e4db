package notify

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

type staticSettings models.NotificationSettings

func (s staticSettings) GetNotificationSettings(context.Context) models.NotificationSettings {
	return models.NotificationSettings(s)
}

type stubEntries struct {
	entry models.FuelEntry
	err   error
	calls int
}

func (s *stubEntries) LatestEntry(context.Context, string) (models.FuelEntry, error) {
	s.calls++
	return s.entry, s.err
}

type recordingNotifier struct {
	reminders []models.Reminder
	synced    []int
}

func (r *recordingNotifier) NotifySyncComplete(_ context.Context, n int) {
	r.synced = append(r.synced, n)
}
func (r *recordingNotifier) NotifyReminder(_ context.Context, rem models.Reminder) {
	r.reminders = append(r.reminders, rem)
}

type panickingNotifier struct{}

func (panickingNotifier) NotifySyncComplete(context.Context, int)         { panic("boom") }
func (panickingNotifier) NotifyReminder(context.Context, models.Reminder) { panic("boom") }

func bufferLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return &logger.Logger{Logger: zerolog.New(&buf)}, &buf
}

// ── LogNotifier ──────────────────────────────────────────────────────────────

func TestLogNotifier_SyncComplete(t *testing.T) {
	log, buf := bufferLogger()
	n := NewLogNotifier(staticSettings(models.DefaultNotificationSettings()), log)

	n.NotifySyncComplete(context.Background(), 3)

	assert.Contains(t, buf.String(), `"event":"sync-complete"`)
	assert.Contains(t, buf.String(), `"success_count":3`)
}

func TestLogNotifier_RespectsSettings(t *testing.T) {
	log, buf := bufferLogger()
	n := NewLogNotifier(staticSettings(models.NotificationSettings{}), log)

	n.NotifySyncComplete(context.Background(), 1)
	n.NotifyReminder(context.Background(), models.Reminder{Days: 9})

	assert.Empty(t, buf.String())
}

func TestLogNotifier_Reminder(t *testing.T) {
	log, buf := bufferLogger()
	n := NewLogNotifier(staticSettings(models.DefaultNotificationSettings()), log)

	n.NotifyReminder(context.Background(), models.Reminder{UserID: "u-1", Days: 8})

	assert.Contains(t, buf.String(), `"event":"fuel-reminder"`)
	assert.Contains(t, buf.String(), `"days":8`)
}

func TestGuard_RecoversPanics(t *testing.T) {
	log, buf := bufferLogger()
	g := Guard(panickingNotifier{}, log)

	assert.NotPanics(t, func() {
		g.NotifySyncComplete(context.Background(), 1)
		g.NotifyReminder(context.Background(), models.Reminder{})
	})
	assert.Contains(t, buf.String(), "notifier panicked")
}

func TestGuard_Forwards(t *testing.T) {
	rec := &recordingNotifier{}
	Guard(rec, logger.Nop()).NotifySyncComplete(context.Background(), 2)
	assert.Equal(t, []int{2}, rec.synced)
}

// ── ReminderScheduler ────────────────────────────────────────────────────────

func newTestScheduler(entries LatestEntrySource, settings models.NotificationSettings, now time.Time) (*ReminderScheduler, *recordingNotifier) {
	rec := &recordingNotifier{}
	s := NewReminderScheduler("@every 1h", "u-1", entries, staticSettings(settings), rec, logger.Nop())
	s.now = func() time.Time { return now }
	return s, rec
}

func TestReminderScheduler_FiresAfterReminderDays(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	last := now.Add(-8 * 24 * time.Hour)
	s, rec := newTestScheduler(&stubEntries{entry: models.FuelEntry{CreatedAt: last}}, models.DefaultNotificationSettings(), now)

	require.True(t, s.Check(context.Background()))
	require.Len(t, rec.reminders, 1)
	assert.Equal(t, 8, rec.reminders[0].Days)
	assert.Equal(t, "u-1", rec.reminders[0].UserID)
	assert.Equal(t, last, rec.reminders[0].LastEntryAt)
}

func TestReminderScheduler_RecentEntry(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	s, rec := newTestScheduler(&stubEntries{entry: models.FuelEntry{CreatedAt: now.Add(-6 * 24 * time.Hour)}}, models.DefaultNotificationSettings(), now)

	assert.False(t, s.Check(context.Background()))
	assert.Empty(t, rec.reminders)
}

func TestReminderScheduler_NoEntries(t *testing.T) {
	s, rec := newTestScheduler(&stubEntries{err: store.ErrEntryNotFound}, models.DefaultNotificationSettings(), time.Now())

	assert.False(t, s.Check(context.Background()))
	assert.Empty(t, rec.reminders)
}

func TestReminderScheduler_LoadError(t *testing.T) {
	s, _ := newTestScheduler(&stubEntries{err: errors.New("disk")}, models.DefaultNotificationSettings(), time.Now())

	assert.False(t, s.Check(context.Background()))
}

func TestReminderScheduler_DisabledSkipsLookup(t *testing.T) {
	entries := &stubEntries{}
	s, _ := newTestScheduler(entries, models.NotificationSettings{ReminderDays: 7}, time.Now())

	assert.False(t, s.Check(context.Background()))
	assert.Zero(t, entries.calls)
}

func TestReminderScheduler_Throttled(t *testing.T) {
	now := time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
	entries := &stubEntries{entry: models.FuelEntry{CreatedAt: now.Add(-30 * 24 * time.Hour)}}
	s, rec := newTestScheduler(entries, models.DefaultNotificationSettings(), now)

	assert.True(t, s.Check(context.Background()))

	s.now = func() time.Time { return now.Add(10 * time.Minute) }
	assert.False(t, s.Check(context.Background()))

	s.now = func() time.Time { return now.Add(CheckThrottle) }
	assert.True(t, s.Check(context.Background()))

	assert.Len(t, rec.reminders, 2)
	assert.Equal(t, 2, entries.calls)
}

func TestReminderScheduler_RunStopsOnCancel(t *testing.T) {
	entries := &stubEntries{err: store.ErrEntryNotFound}
	s, _ := newTestScheduler(entries, models.DefaultNotificationSettings(), time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return !s.lastCheck.IsZero()
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestReminderScheduler_InvalidSchedule(t *testing.T) {
	s := NewReminderScheduler("not a schedule", "u-1", &stubEntries{}, staticSettings{}, &recordingNotifier{}, logger.Nop())

	done := make(chan struct{})
	go func() {
		s.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run should return on an invalid schedule")
	}
}
