package tourney

import (
	"context"
	"sync"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"
)

// spawnSemaphoreCapacity bounds concurrent child-process spawns across all
// workers, independent of worker concurrency, to protect against spawn
// storms across many cores (spec.md §4.7; original_source/app/src/engine/usi_engine.cpp
// CountingSemaphore).
const spawnSemaphoreCapacity = 16

// WorkerPool runs a fixed number of concurrent workers pulling pairings
// from a Scheduler until it is exhausted or the shared stop flag is set
// (spec.md §4.7).
type WorkerPool struct {
	Concurrency int

	spawnSem *semaphore.Weighted
	stop     *atomic.Bool
}

// NewWorkerPool creates a pool of the given worker concurrency. stop, if
// non-nil, is shared with a Scheduler and/or a Ctrl-C handler.
func NewWorkerPool(concurrency int, stop *atomic.Bool) *WorkerPool {
	if concurrency <= 0 {
		concurrency = 1
	}
	if stop == nil {
		stop = atomic.NewBool(false)
	}
	return &WorkerPool{
		Concurrency: concurrency,
		spawnSem:    semaphore.NewWeighted(spawnSemaphoreCapacity),
		stop:        stop,
	}
}

// AcquireSpawnSlot blocks until a process-spawn slot is available or ctx is
// cancelled. Callers should acquire this immediately before starting a
// child engine process and release it once the handshake completes (or
// fails).
func (w *WorkerPool) AcquireSpawnSlot(ctx context.Context) error {
	return w.spawnSem.Acquire(ctx, 1)
}

// ReleaseSpawnSlot releases a slot acquired with AcquireSpawnSlot.
func (w *WorkerPool) ReleaseSpawnSlot() {
	w.spawnSem.Release(1)
}

// Stop sets the shared stop flag.
func (w *WorkerPool) Stop() {
	w.stop.Store(true)
}

// Stopped reports whether the shared stop flag is set.
func (w *WorkerPool) Stopped() bool {
	return w.stop.Load()
}

// Run drives run over every pairing the scheduler yields, spreading work
// across Concurrency goroutines, until the scheduler is exhausted or the
// stop flag is set. It blocks until all in-flight calls to run return
// (spec.md §4.7: "in-flight matches play to completion unless an engine
// fails").
func (w *WorkerPool) Run(ctx context.Context, sched *Scheduler, run func(ctx context.Context, p Pairing)) {
	var wg sync.WaitGroup
	for i := 0; i < w.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if w.stop.Load() {
					return
				}
				p, ok := sched.NextPairing()
				if !ok {
					return
				}
				run(ctx, p)
			}
		}()
	}
	wg.Wait()
}
