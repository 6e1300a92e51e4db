package service

import (
	"context"

	"github.com/MKhiriev/go-fuel-sync/internal/adapter"
	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/network"
	"github.com/MKhiriev/go-fuel-sync/internal/notify"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/tracing"
)

// ClientServices is the composed sync client. Each component is constructed
// once and owns its own state.
type ClientServices struct {
	Queue        QueueManager
	Resolver     ConflictResolver
	EntryService EntryService
	SyncJob      SyncJob
}

func NewClientServices(
	ctx context.Context,
	cfg config.Sync,
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	monitor network.Monitor,
	notifier notify.Notifier,
	tracer *tracing.Tracer,
	workers config.Workers,
	logger *logger.Logger,
) *ClientServices {
	resolver := NewConflictResolver(ctx, storages.Strategies, cfg.ConflictGraceDelay, logger)
	applier := NewRemoteApplier(remote, storages.Entries, resolver, logger)

	queue := NewQueueManager(ctx, cfg, QueueDeps{
		Store:       storages.Queue,
		DeadLetters: storages.DeadLetters,
		Applier:     applier,
		Monitor:     monitor,
		Notifier:    notify.Guard(notifier, logger),
		Tracer:      tracer,
	}, logger)

	return &ClientServices{
		Queue:        queue,
		Resolver:     resolver,
		EntryService: NewEntryService(storages.Entries, storages.Settings, queue, logger),
		SyncJob:      NewSyncJob(queue, monitor, workers.SyncInterval, logger),
	}
}
