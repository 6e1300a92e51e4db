package config

import "time"

const (
	DefaultSyncInterval       = 30 * time.Second
	DefaultProbeInterval      = 10 * time.Second
	DefaultReminderSchedule   = "@every 1h"
	DefaultMaxRetries         = 3
	DefaultBaseDelay          = 5 * time.Second
	DefaultProgressClearDelay = 3 * time.Second
	DefaultConflictGraceDelay = time.Second
	DefaultDeadLetterLimit    = 50
	DefaultRequestTimeout     = 15 * time.Second
)

// defaultConfig is merged last, so it only fills fields no other source set.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		Server: Server{
			RequestTimeout: DefaultRequestTimeout,
		},
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
		},
		Workers: Workers{
			SyncInterval:     DefaultSyncInterval,
			ProbeInterval:    DefaultProbeInterval,
			ReminderSchedule: DefaultReminderSchedule,
		},
		Sync: Sync{
			MaxRetries:         DefaultMaxRetries,
			BaseDelay:          DefaultBaseDelay,
			ProgressClearDelay: DefaultProgressClearDelay,
			ConflictGraceDelay: DefaultConflictGraceDelay,
			DeadLetterLimit:    DefaultDeadLetterLimit,
		},
		Tracing: Tracing{
			Exporter: "none",
		},
	}
}
