package tourney_test

import (
	"context"
	"sync"
	"testing"

	"github.com/herohde/banzuke/pkg/tourney"
	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsEveryPairing(t *testing.T) {
	pairings := tourney.GeneratePairings(tourney.RoundRobin, 6, 1, 1, 1)
	sched := tourney.NewScheduler(pairings, nil)
	pool := tourney.NewWorkerPool(4, nil)

	var mu sync.Mutex
	var seen int

	pool.Run(context.Background(), sched, func(ctx context.Context, p tourney.Pairing) {
		mu.Lock()
		seen++
		mu.Unlock()
	})

	assert.Equal(t, len(pairings), seen)
}

func TestWorkerPoolSpawnSlotBounded(t *testing.T) {
	pool := tourney.NewWorkerPool(1, nil)
	ctx := context.Background()

	for i := 0; i < 16; i++ {
		require := pool.AcquireSpawnSlot(ctx)
		assert.NoError(t, require)
	}
	defer func() {
		for i := 0; i < 16; i++ {
			pool.ReleaseSpawnSlot()
		}
	}()

	acquired := make(chan struct{})
	go func() {
		_ = pool.AcquireSpawnSlot(ctx)
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("17th acquire should have blocked while 16 slots are held")
	default:
	}
	pool.ReleaseSpawnSlot()
	<-acquired
}
