// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// sync client and the document store server. It is populated by merging
// environment variables, command-line flags, an optional JSON file and the
// built-in defaults.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	App App `envPrefix:"APP_"`

	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address of the remote document store.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the address the client uses to reach the remote store.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	Workers Workers `envPrefix:"WORKERS_"`

	// Sync holds the retry/backoff policy of the queue and the conflict
	// resolver timings.
	Sync Sync `envPrefix:"SYNC_"`

	Tracing Tracing `envPrefix:"TRACING_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level settings.
type App struct {
	// HashKey is the HMAC key used to sign request bodies (HashSHA256 header).
	// Signing is disabled when empty.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// UserID identifies the device owner; fuel entries and settings are
	// stored under it.
	// Env: APP_USER_ID
	UserID string `env:"USER_ID"`

	// Version is the semantic version reported by the server.
	// Env: APP_VERSION
	Version string `env:"VERSION"`
}

// Storage groups persistence settings.
type Storage struct {
	DB DB `envPrefix:"DB_"`

	// KVFile, when set, makes the client keep its key-value state (queue,
	// strategy table, settings) in a JSON file instead of SQLite.
	// Env: STORAGE_KV_FILE
	KVFile string `env:"KV_FILE"`
}

// DB holds database connection settings. The client expects a SQLite file
// path, the server a PostgreSQL DSN.
type DB struct {
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Server holds inbound transport settings of the document store server.
type Server struct {
	// HTTPAddress is the listen address in "host:port" format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Adapter holds outbound transport settings of the client.
type Adapter struct {
	// HTTPAddress is the base address of the remote document store.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds every remote call so a hanging request cannot
	// stall a pass forever.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds background worker settings.
type Workers struct {
	// SyncInterval is how often the sync job checks for pending items.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is how often connectivity is probed.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// ReminderSchedule is a cron spec for fuel reminder checks.
	// Env: WORKERS_REMINDER_SCHEDULE
	ReminderSchedule string `env:"REMINDER_SCHEDULE"`
}

// Sync holds the queue retry policy and resolver timings.
type Sync struct {
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// BaseDelay is the first backoff step; the n-th retry waits
	// BaseDelay * 2^(n-1).
	// Env: SYNC_BASE_DELAY
	BaseDelay time.Duration `env:"BASE_DELAY"`

	// Env: SYNC_PROGRESS_CLEAR_DELAY
	ProgressClearDelay time.Duration `env:"PROGRESS_CLEAR_DELAY"`

	// ConflictGraceDelay is how long a resolved conflict stays observable.
	// Env: SYNC_CONFLICT_GRACE_DELAY
	ConflictGraceDelay time.Duration `env:"CONFLICT_GRACE_DELAY"`

	// Env: SYNC_DEAD_LETTER_LIMIT
	DeadLetterLimit int `env:"DEAD_LETTER_LIMIT"`
}

// Tracing holds OpenTelemetry settings.
type Tracing struct {
	// Env: TRACING_ENABLED
	Enabled bool `env:"ENABLED"`

	// Exporter is "stdout" or "none".
	// Env: TRACING_EXPORTER
	Exporter string `env:"EXPORTER"`
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// sources. Sources are merged with mergo without overriding, so for every
// field the first non-zero value wins in this order:
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//  4. Built-in defaults
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags(args).
		withJSON().
		withDefaults().
		build()
}
