package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/models"
)

// CheckThrottle is the minimum time between two reminder checks.
const CheckThrottle = 30 * time.Minute

// LatestEntrySource returns the most recent fill-up of a user.
type LatestEntrySource interface {
	LatestEntry(ctx context.Context, userID string) (models.FuelEntry, error)
}

// ReminderScheduler fires a fuel reminder when the latest fill-up is older
// than the configured number of days.
type ReminderScheduler struct {
	schedule string
	userID   string
	entries  LatestEntrySource
	settings SettingsSource
	notifier Notifier
	logger   *logger.Logger
	now      func() time.Time

	mu        sync.Mutex
	lastCheck time.Time
}

// NewReminderScheduler creates a scheduler running checks on schedule, a
// robfig/cron spec such as "@every 1h" or "0 9 * * *".
func NewReminderScheduler(
	schedule string,
	userID string,
	entries LatestEntrySource,
	settings SettingsSource,
	notifier Notifier,
	logger *logger.Logger,
) *ReminderScheduler {
	return &ReminderScheduler{
		schedule: schedule,
		userID:   userID,
		entries:  entries,
		settings: settings,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Run checks once, then on every scheduled tick until ctx is cancelled.
func (s *ReminderScheduler) Run(ctx context.Context) {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() { s.Check(ctx) })
	if err != nil {
		s.logger.Error().Err(err).
			Str("func", "ReminderScheduler.Run").
			Str("schedule", s.schedule).
			Msg("failed to schedule reminder checks")
		return
	}

	s.Check(ctx)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
}

// Check runs one reminder check and reports whether a reminder fired.
// Checks closer than [CheckThrottle] to the previous one are skipped.
func (s *ReminderScheduler) Check(ctx context.Context) bool {
	now := s.now()

	s.mu.Lock()
	if !s.lastCheck.IsZero() && now.Sub(s.lastCheck) < CheckThrottle {
		s.mu.Unlock()
		return false
	}
	s.lastCheck = now
	s.mu.Unlock()

	settings := s.settings.GetNotificationSettings(ctx)
	if !settings.FuelReminders {
		return false
	}

	latest, err := s.entries.LatestEntry(ctx, s.userID)
	if err != nil {
		if !errors.Is(err, store.ErrEntryNotFound) {
			s.logger.Error().Err(err).
				Str("func", "ReminderScheduler.Check").
				Msg("failed to load latest entry")
		}
		return false
	}

	days := int(now.Sub(latest.CreatedAt) / (24 * time.Hour))
	if days < settings.ReminderDays {
		return false
	}

	s.notifier.NotifyReminder(ctx, models.Reminder{
		UserID:      s.userID,
		LastEntryAt: latest.CreatedAt,
		Days:        days,
	})
	return true
}
