// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"github.com/robfig/cron/v3"
)

// validate checks the invariants shared by both runtimes. Role-specific
// requirements live in [ClientConfig.validate] and [ServerConfig.validate].
func (cfg *StructuredConfig) validate() error {
	if cfg.Sync.MaxRetries < 0 || cfg.Sync.BaseDelay < 0 || cfg.Sync.DeadLetterLimit < 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Workers.SyncInterval < 0 || cfg.Workers.ProbeInterval < 0 {
		return ErrInvalidWorkerConfigs
	}

	return validateTracing(cfg.Tracing)
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Workers.SyncInterval <= 0 || cfg.Workers.ProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if _, err := cron.ParseStandard(cfg.Workers.ReminderSchedule); err != nil {
		return ErrInvalidWorkerConfigs
	}

	if cfg.Sync.MaxRetries < 1 || cfg.Sync.BaseDelay <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.App.UserID == "" {
		return ErrInvalidAppConfigs
	}

	return validateTracing(cfg.Tracing)
}

func (cfg *ServerConfig) validate() error {
	if cfg.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.Server.HTTPAddress == "" || cfg.Server.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	return validateTracing(cfg.Tracing)
}

func validateTracing(t Tracing) error {
	switch t.Exporter {
	case "", "none", "stdout":
		return nil
	default:
		return ErrInvalidTracingConfigs
	}
}
