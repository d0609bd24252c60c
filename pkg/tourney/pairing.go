// Package tourney generates pairings across a round-robin or gauntlet
// tournament and runs them under a bounded-concurrency worker pool
// (spec.md §4.6, §4.7).
package tourney

// Pairing is one scheduled game (spec.md §3).
type Pairing struct {
	RoundID      int
	GameInRound  int
	EngineAIdx   int
	EngineBIdx   int
	OpeningIdx   int
	SwapColours  bool
}

// Mode selects the pairing generation strategy (spec.md §4.6).
type Mode int

const (
	RoundRobin Mode = iota
	Gauntlet
)

// roundRobinPairSlots enumerates every unordered pair-slot (i, j) with
// i < j exactly once, in lexicographic order. This is the pair-slot list for
// a single "round" as defined by spec.md (one pass over all N·(N−1)/2
// pairs), not a chess-style one-game-per-pair round.
func roundRobinPairSlots(n int) [][2]int {
	var slots [][2]int
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			slots = append(slots, [2]int{i, j})
		}
	}
	return slots
}

// gauntletPairSlots pairs engine 0 (the seed) against every other engine.
func gauntletPairSlots(n int) [][2]int {
	var slots [][2]int
	for k := 1; k < n; k++ {
		slots = append(slots, [2]int{0, k})
	}
	return slots
}

// GeneratePairings builds the full, fixed pairing list for a tournament
// (spec.md §4.6). games must be 1 or 2; games=2 doubles every pair-slot
// into a colour-swapped pair sharing one opening index (spec.md's "Pair
// symmetry" invariant). openings is cycled round-robin across pair-slots
// in generation order.
func GeneratePairings(mode Mode, numEngines, rounds, games, numOpenings int) []Pairing {
	var slots [][2]int
	switch mode {
	case Gauntlet:
		slots = gauntletPairSlots(numEngines)
	default:
		slots = roundRobinPairSlots(numEngines)
	}

	var out []Pairing
	openingCounter := 0
	gameInRound := 0
	for round := 0; round < rounds; round++ {
		gameInRound = 0
		for _, slot := range slots {
			openingIdx := 0
			if numOpenings > 0 {
				openingIdx = openingCounter % numOpenings
			}
			openingCounter++

			out = append(out, Pairing{
				RoundID:     round,
				GameInRound: gameInRound,
				EngineAIdx:  slot[0],
				EngineBIdx:  slot[1],
				OpeningIdx:  openingIdx,
				SwapColours: false,
			})
			gameInRound++

			if games >= 2 {
				out = append(out, Pairing{
					RoundID:     round,
					GameInRound: gameInRound,
					EngineAIdx:  slot[0],
					EngineBIdx:  slot[1],
					OpeningIdx:  openingIdx,
					SwapColours: true,
				})
				gameInRound++
			}
		}
	}
	return out
}
