package workers

import (
	"context"
	"sync"
)

type Workers struct {
	workers []Worker
}

func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Add appends a worker. It must be called before Run.
func (w *Workers) Add(worker Worker) {
	w.workers = append(w.workers, worker)
}

// Run starts every worker in its own goroutine and waits for all of them
// to return.
func (w *Workers) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, worker := range w.workers {
		wg.Add(1)
		go func(worker Worker) {
			defer wg.Done()
			worker.Run(ctx)
		}(worker)
	}
	wg.Wait()
}
