package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/adapter"
	"github.com/MKhiriev/go-fuel-sync/internal/config"
	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/network"
	"github.com/MKhiriev/go-fuel-sync/internal/notify"
	"github.com/MKhiriev/go-fuel-sync/internal/service"
	"github.com/MKhiriev/go-fuel-sync/internal/store"
	"github.com/MKhiriev/go-fuel-sync/internal/tracing"
	"github.com/MKhiriev/go-fuel-sync/internal/workers"
)

const tracerShutdownTimeout = 5 * time.Second

// App is the sync client process: local storages, the sync services and the
// background workers that drive them.
type App struct {
	services *service.ClientServices
	storages *store.ClientStorages
	tracer   *tracing.Tracer
	workers  *workers.Workers

	cancel context.CancelFunc
	logger *logger.Logger
}

// NewApp opens local storage, connects the remote adapter and wires the
// services. The returned App owns every resource it opened; call Close when
// Run returns.
func NewApp(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (*App, error) {
	remote, err := adapter.NewHTTPRemoteStore(cfg.Adapter, cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("create remote adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	tracer, err := tracing.New(cfg.Tracing, "go-fuel-sync-client", nil)
	if err != nil {
		_ = storages.Close()
		return nil, fmt.Errorf("create tracer: %w", err)
	}

	return newApp(ctx, cfg, storages, remote, tracer, logger), nil
}

func newApp(
	ctx context.Context,
	cfg *config.ClientConfig,
	storages *store.ClientStorages,
	remote adapter.RemoteStore,
	tracer *tracing.Tracer,
	logger *logger.Logger,
) *App {
	ctx, cancel := context.WithCancel(ctx)

	prober := network.NewProber(remote, cfg.Workers.ProbeInterval, logger)
	notifier := notify.NewLogNotifier(storages.Settings, logger)

	services := service.NewClientServices(ctx, cfg.Sync, storages, remote, prober, notifier, tracer, cfg.Workers, logger)

	reminders := notify.NewReminderScheduler(
		cfg.Workers.ReminderSchedule,
		cfg.App.UserID,
		storages.Entries,
		storages.Settings,
		notify.Guard(notifier, logger),
		logger,
	)

	return &App{
		services: services,
		storages: storages,
		tracer:   tracer,
		workers:  workers.NewWorkers(prober, services.SyncJob, reminders),
		cancel:   cancel,
		logger:   logger,
	}
}

// Services exposes the wired sync services.
func (a *App) Services() *service.ClientServices {
	return a.services
}

// Run starts the background workers and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info().
		Int("pending", len(a.services.Queue.Pending())).
		Msg("sync client started")

	a.workers.Run(ctx)

	a.logger.Info().Msg("sync client stopped")
	return nil
}

// Close stops background passes and releases storage and tracing. The
// persisted queue survives and is restored on the next start.
func (a *App) Close() error {
	a.cancel()
	a.services.Queue.Close()
	a.services.Resolver.ClearConflicts()

	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()

	return errors.Join(
		a.tracer.Shutdown(ctx),
		a.storages.Close(),
	)
}
