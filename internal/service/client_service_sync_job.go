package service

import (
	"context"
	"sync"
	"time"

	"github.com/MKhiriev/go-fuel-sync/internal/logger"
	"github.com/MKhiriev/go-fuel-sync/internal/network"
)

type syncJob struct {
	queue    QueueManager
	monitor  network.Monitor
	interval time.Duration

	logger *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncJob creates the background trigger of the queue manager. If interval
// is zero or negative it defaults to 30 seconds.
func NewSyncJob(queue QueueManager, monitor network.Monitor, interval time.Duration, logger *logger.Logger) SyncJob {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &syncJob{queue: queue, monitor: monitor, interval: interval, logger: logger}
}

// Run implements SyncJob. It triggers a pass on every tick and on every
// transition to online, and mirrors connectivity into the sync state.
func (j *syncJob) Run(ctx context.Context) {
	unsubscribe := j.monitor.Subscribe(func(online bool) {
		j.queue.SetOnline(online)
		if online && j.queue.TriggerSync() {
			j.logger.Debug().Str("func", "syncJob.Run").Msg("sync started after reconnect")
		}
	})
	defer unsubscribe()

	j.queue.SetOnline(j.monitor.IsOnline())
	j.queue.TriggerSync()

	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.queue.TriggerSync()
		}
	}
}

// Start implements SyncJob. It stops any previously running job, then
// launches Run in a background goroutine.
func (j *syncJob) Start(ctx context.Context) {
	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		j.Run(jobCtx)
	}()
}

// Stop implements SyncJob. It cancels the background goroutine's context and
// blocks until the goroutine has fully exited. Safe to call when the job is not
// running.
func (j *syncJob) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
