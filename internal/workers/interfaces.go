// Package workers provides abstractions for managing and running
// background workers in the application.
// It defines the Worker interface and a Workers aggregate that runs
// several workers side by side.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
//
// Run blocks until ctx is cancelled or the worker has nothing left to do.
//
// Example implementation:
//
//	type MyWorker struct{}
//
//	func (w *MyWorker) Run(ctx context.Context) {
//	    <-ctx.Done()
//	}
type Worker interface {
	Run(ctx context.Context)
}

// WorkerFunc adapts a plain function to [Worker].
type WorkerFunc func(ctx context.Context)

// Run calls f(ctx).
func (f WorkerFunc) Run(ctx context.Context) {
	f(ctx)
}
