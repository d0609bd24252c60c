package tourney_test

import (
	"testing"

	"github.com/herohde/banzuke/pkg/tourney"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerDrainsInOrder(t *testing.T) {
	pairings := tourney.GeneratePairings(tourney.RoundRobin, 3, 1, 1, 1)
	sched := tourney.NewScheduler(pairings, nil)

	require.Equal(t, 3, sched.Total())
	for i := 0; i < 3; i++ {
		_, ok := sched.NextPairing()
		require.True(t, ok)
	}
	_, ok := sched.NextPairing()
	assert.False(t, ok)
}

func TestSchedulerStopStopsEarly(t *testing.T) {
	pairings := tourney.GeneratePairings(tourney.RoundRobin, 4, 1, 1, 1)
	sched := tourney.NewScheduler(pairings, nil)

	_, ok := sched.NextPairing()
	require.True(t, ok)

	sched.Stop()
	_, ok = sched.NextPairing()
	assert.False(t, ok)
}
