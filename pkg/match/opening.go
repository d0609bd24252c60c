// Package match plays one game between two usi.Sessions and reduces it to
// a MatchResult (spec.md §4.5).
package match

import (
	"time"

	"github.com/herohde/banzuke/pkg/game"
)

// Opening is one starting position and a fixed premove sequence supplied by
// the opening book. Both paired games in a pair start from the same Opening
// with colours swapped (spec.md §3).
type Opening struct {
	StartFEN string
	Premoves []string
}

// Outcome is a game result from White's perspective (spec.md §3
// white_outcome).
type Outcome int

const (
	None Outcome = iota
	WhiteWin
	BlackWin
	Draw
)

func (o Outcome) String() string {
	switch o {
	case WhiteWin:
		return "win"
	case BlackWin:
		return "loss"
	case Draw:
		return "draw"
	default:
		return "none"
	}
}

// outcomeForLoser converts "loser" into the WhiteOutcome value: the other
// side has won.
func outcomeForLoser(loser game.Side) Outcome {
	if loser == game.White {
		return BlackWin
	}
	return WhiteWin
}

// Termination classifies how a game ended (spec.md §3 termination).
type Termination int

const (
	Normal Termination = iota
	Adjudication
	Disconnect
	Stall
	Timeout
	IllegalMove
	Interrupt
)

func (t Termination) String() string {
	switch t {
	case Normal:
		return "normal"
	case Adjudication:
		return "adjudication"
	case Disconnect:
		return "disconnect"
	case Stall:
		return "stall"
	case Timeout:
		return "timeout"
	case IllegalMove:
		return "illegal_move"
	case Interrupt:
		return "interrupt"
	default:
		return "unknown"
	}
}

// MoveRecord is one half-move (spec.md §3), augmented with the side that
// made it (SPEC_FULL.md §3 addition, needed by the Adjudicator).
type MoveRecord struct {
	Side    game.Side
	USIText string
	Legal   bool

	ScoreKind string
	Score     int

	Depth, SelDepth       int
	Nodes, NPS, HashFull  int
	ElapsedMillis         int64
	TimeLeftAfterMillis   int64
	PVLines               []string
}

// MatchResult is the outcome of one played game (spec.md §3).
type MatchResult struct {
	WhiteOutcome Outcome
	Termination  Termination
	ReasonText   string
	Moves        []MoveRecord
	StartTime    time.Time
	EndTime      time.Time

	// FinalFEN is the last position reached, as reported by the rules
	// oracle (SPEC_FULL.md §3 addition: needed by the EPD writer, spec.md
	// §6.3, which persists "the final position's EPD").
	FinalFEN string
}
