// Package game holds the minimal, rules-agnostic vocabulary shared by the
// process, usi, timecontrol, match and tourney packages. Board representation
// and move legality live outside this module (§1: consumed as a black box);
// this package only fixes the handful of concepts every other package needs
// to agree on: which side is to move.
package game

// Side is the side to move. The protocol tokens (wtime/btime, winc/binc)
// are named for chess, but the same two-sided clock model applies to USI
// (sente/gote) per spec.md's "USI; equivalently UCI for chess variants".
type Side uint8

const (
	White Side = iota
	Black
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}
