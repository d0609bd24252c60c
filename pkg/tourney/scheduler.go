package tourney

import (
	"sync"

	"go.uber.org/atomic"
)

// Scheduler hands out a fixed, precomputed pairing list one at a time,
// stopping early if the global stop flag is set (spec.md §4.6, §5).
// Grounded on original_source/app/src/matchmaking/tournament/roundrobin/roundrobin.hpp's
// game_gen_mutex_-guarded next-pairing cursor.
type Scheduler struct {
	mu       sync.Mutex
	pairings []Pairing
	next     int

	stop *atomic.Bool
}

// NewScheduler wraps a precomputed pairing list. stop, if non-nil, is
// shared with the WorkerPool (and typically a Ctrl-C handler); if nil, a
// private flag is used and the scheduler never stops early.
func NewScheduler(pairings []Pairing, stop *atomic.Bool) *Scheduler {
	if stop == nil {
		stop = atomic.NewBool(false)
	}
	return &Scheduler{pairings: pairings, stop: stop}
}

// NextPairing returns the next pairing, or false if the stream is
// exhausted or the stop flag is set.
func (s *Scheduler) NextPairing() (Pairing, bool) {
	if s.stop.Load() {
		return Pairing{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.pairings) {
		return Pairing{}, false
	}
	p := s.pairings[s.next]
	s.next++
	return p, true
}

// Total returns the full pairing count.
func (s *Scheduler) Total() int { return len(s.pairings) }

// Remaining returns how many pairings have not yet been handed out.
func (s *Scheduler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pairings) - s.next
}

// Stop sets the shared stop flag, causing all further NextPairing calls to
// return false.
func (s *Scheduler) Stop() {
	s.stop.Store(true)
}
