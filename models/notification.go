package models

import "time"

// NotificationSettings toggles the events the notification sink emits.
type NotificationSettings struct {
	FuelReminders     bool `json:"fuelReminders"`
	SyncNotifications bool `json:"syncNotifications"`
	// ReminderDays is how many days after the latest entry a reminder fires.
	ReminderDays int `json:"reminderDays"`
}

// DefaultNotificationSettings returns the settings used when nothing was
// persisted yet.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		FuelReminders:     true,
		SyncNotifications: true,
		ReminderDays:      7,
	}
}

// Reminder asks the user to log a fill-up.
type Reminder struct {
	UserID      string    `json:"userId"`
	LastEntryAt time.Time `json:"lastEntryAt"`
	Days        int       `json:"days"`
}
