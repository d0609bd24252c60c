// Package rules holds Rules oracles pluggable into match.MatchEngine.
// Board representation and move legality are explicitly out of scope for
// this module (spec.md §1); a real deployment plugs in a shogi/chess
// rules library. Permissive is the reference null oracle used when no
// such library is configured: it accepts any well-formed move token and
// never calls a position terminal on its own, leaving the Adjudicator
// (resign/draw/maxmoves/tablebase) as the only way a game ends.
package rules

import (
	"fmt"
	"regexp"

	"github.com/herohde/banzuke/pkg/match"
)

// moveToken accepts USI-style square/drop tokens loosely enough to cover
// both shogi ("7g7f", "P*5e") and chess ("e2e4", "a7a8q") notations,
// without attempting to validate them against any concrete position.
var moveToken = regexp.MustCompile(`^[A-Za-z*0-9]{3,6}$`)

// Permissive is a Rules oracle that performs only syntactic validation. It
// is the default when no rules library is wired in: every well-formed
// move is accepted, positions are never self-terminal, and Apply reports
// the starting position unchanged since no board state is tracked.
//
// This keeps a tournament runnable end to end without requiring a rules
// implementation, at the cost of delegating all game-ending logic to the
// Adjudicator (resign, draw, maxmoves) and any configured tablebase.
type Permissive struct{}

func (Permissive) IsLegal(startFEN string, applied []string, move string) bool {
	return moveToken.MatchString(move)
}

func (Permissive) Apply(startFEN string, applied []string, move string) (string, error) {
	if !moveToken.MatchString(move) {
		return "", fmt.Errorf("rules: malformed move %q", move)
	}
	return startFEN, nil
}

func (Permissive) Terminal(startFEN string, applied []string) (match.Outcome, bool) {
	return match.None, false
}

var _ match.Rules = Permissive{}
