// Package notify is the fire-and-forget notification sink of the sync client.
//
// The core calls a [Notifier] and never looks at the outcome: [Guard] wraps
// any implementation so that a panic inside it is logged instead of
// propagating into a queue pass.
package notify

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/models"
)

//go:generate mockgen -source=notifier.go -destination=../mock/notifier_mock.go -package=mock

// Notifier receives user-facing events.
type Notifier interface {
	NotifySyncComplete(ctx context.Context, successCount int)
	NotifyReminder(ctx context.Context, reminder models.Reminder)
}

// SettingsSource supplies the current notification toggles.
type SettingsSource interface {
	GetNotificationSettings(ctx context.Context) models.NotificationSettings
}

// LogNotifier emits notifications as structured log events.
type LogNotifier struct {
	settings SettingsSource
	logger   *logger.Logger
}

func NewLogNotifier(settings SettingsSource, logger *logger.Logger) *LogNotifier {
	return &LogNotifier{settings: settings, logger: logger}
}

func (n *LogNotifier) NotifySyncComplete(ctx context.Context, successCount int) {
	if !n.settings.GetNotificationSettings(ctx).SyncNotifications {
		return
	}

	n.logger.Info().
		Str("func", "LogNotifier.NotifySyncComplete").
		Str("event", "sync-complete").
		Int("success_count", successCount).
		Msgf("%d item(s) synced", successCount)
}

func (n *LogNotifier) NotifyReminder(ctx context.Context, reminder models.Reminder) {
	if !n.settings.GetNotificationSettings(ctx).FuelReminders {
		return
	}

	n.logger.Info().
		Str("func", "LogNotifier.NotifyReminder").
		Str("event", "fuel-reminder").
		Str("user_id", reminder.UserID).
		Time("last_entry_at", reminder.LastEntryAt).
		Int("days", reminder.Days).
		Msgf("no fill-up logged for %d day(s)", reminder.Days)
}

type guarded struct {
	next   Notifier
	logger *logger.Logger
}

// Guard wraps next so that its panics are recovered and logged.
func Guard(next Notifier, logger *logger.Logger) Notifier {
	return &guarded{next: next, logger: logger}
}

func (g *guarded) NotifySyncComplete(ctx context.Context, successCount int) {
	defer g.recover("guarded.NotifySyncComplete")
	g.next.NotifySyncComplete(ctx, successCount)
}

func (g *guarded) NotifyReminder(ctx context.Context, reminder models.Reminder) {
	defer g.recover("guarded.NotifyReminder")
	g.next.NotifyReminder(ctx, reminder)
}

func (g *guarded) recover(fn string) {
	if r := recover(); r != nil {
		g.logger.Error().
			Str("func", fn).
			Interface("panic", r).
			Msg("notifier panicked")
	}
}
