// Package stats aggregates per-pair game results into trinomial and
// pentanomial counts, Elo/nElo estimates, and an SPRT stopping decision
// (spec.md §4.8).
package stats

import (
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// GameResult is one game's outcome from a named engine's perspective.
type GameResult int

const (
	Win GameResult = iota
	DrawResult
	Loss
)

// Counts is a snapshot of one Stats leaf: trinomial (Wins, Draws, Losses)
// and pentanomial (LL, LD, WLDD, WD, WW) totals (spec.md §3).
type Counts struct {
	Wins, Draws, Losses int
	LL, LD, WLDD, WD, WW int
}

// Games returns the trinomial total.
func (c Counts) Games() int { return c.Wins + c.Draws + c.Losses }

// Pairs returns the pentanomial total.
func (c Counts) Pairs() int { return c.LL + c.LD + c.WLDD + c.WD + c.WW }

// Add returns the commutative, associative sum of two Counts (spec.md
// invariant 4: scoreboard merges are order-independent).
func (c Counts) Add(o Counts) Counts {
	return Counts{
		Wins: c.Wins + o.Wins, Draws: c.Draws + o.Draws, Losses: c.Losses + o.Losses,
		LL: c.LL + o.LL, LD: c.LD + o.LD, WLDD: c.WLDD + o.WLDD, WD: c.WD + o.WD, WW: c.WW + o.WW,
	}
}

// Stats is a mutex-guarded, additively-mergeable accumulator for one
// engine/opponent pair. A map structure alone does not make a compound
// read-modify-write atomic, so each leaf carries its own lock.
type Stats struct {
	mu     sync.Mutex
	counts Counts
}

// AddGame records one game's trinomial result.
func (s *Stats) AddGame(r GameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r {
	case Win:
		s.counts.Wins++
	case DrawResult:
		s.counts.Draws++
	case Loss:
		s.counts.Losses++
	}
}

// AddPair records one completed game pair's pentanomial category, derived
// from the pair's two results (spec.md §4.8: map (r1,r2) in {W,D,L}² to one
// of LL, LD, WL+DD, WD, WW).
func (s *Stats) AddPair(r1, r2 GameResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch pairScore(r1) + pairScore(r2) {
	case 0:
		s.counts.LL++
	case 1:
		s.counts.LD++
	case 2:
		s.counts.WLDD++
	case 3:
		s.counts.WD++
	case 4:
		s.counts.WW++
	}
}

// pairScore maps a result to a doubled score (Loss=0, Draw=1, Win=2) so the
// sum of two results is an integer in [0,4], one per pentanomial bucket.
func pairScore(r GameResult) int {
	switch r {
	case Win:
		return 2
	case DrawResult:
		return 1
	default:
		return 0
	}
}

// Snapshot returns an atomic copy of the current counts.
func (s *Stats) Snapshot() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Merge additively folds other into s.
func (s *Stats) Merge(other Counts) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts = s.counts.Add(other)
}

// Scoreboard maps engine_name -> opponent_name -> Stats, guarded by
// concurrent maps at both levels (spec.md §3). Grounded on
// bgpfix-bgpfix/pipe/pipe.go's use of puzpuzpuz/xsync for a
// concurrently-read/written registry.
type Scoreboard struct {
	engines *xsync.MapOf[string, *xsync.MapOf[string, *Stats]]
}

// NewScoreboard creates an empty Scoreboard.
func NewScoreboard() *Scoreboard {
	return &Scoreboard{engines: xsync.NewMapOf[string, *xsync.MapOf[string, *Stats]]()}
}

// entry returns (creating if absent) the Stats leaf for engine vs opponent.
func (sb *Scoreboard) entry(engine, opponent string) *Stats {
	opponents, _ := sb.engines.LoadOrCompute(engine, func() *xsync.MapOf[string, *Stats] {
		return xsync.NewMapOf[string, *Stats]()
	})
	st, _ := opponents.LoadOrCompute(opponent, func() *Stats {
		return &Stats{}
	})
	return st
}

// MergeGame records one game's trinomial result for engine against
// opponent.
func (sb *Scoreboard) MergeGame(engine, opponent string, r GameResult) {
	sb.entry(engine, opponent).AddGame(r)
}

// MergePair records one completed game pair's pentanomial category for
// engine against opponent, from engine's perspective across both games.
func (sb *Scoreboard) MergePair(engine, opponent string, r1, r2 GameResult) {
	sb.entry(engine, opponent).AddPair(r1, r2)
}

// Snapshot returns an atomic copy of engine's accumulated counts against
// opponent, or the zero value if no games have been recorded.
func (sb *Scoreboard) Snapshot(engine, opponent string) Counts {
	opponents, ok := sb.engines.Load(engine)
	if !ok {
		return Counts{}
	}
	st, ok := opponents.Load(opponent)
	if !ok {
		return Counts{}
	}
	return st.Snapshot()
}

// Aggregate sums engine's counts across every opponent it has played.
func (sb *Scoreboard) Aggregate(engine string) Counts {
	opponents, ok := sb.engines.Load(engine)
	if !ok {
		return Counts{}
	}
	var total Counts
	opponents.Range(func(_ string, st *Stats) bool {
		total = total.Add(st.Snapshot())
		return true
	})
	return total
}
