package match

import (
	"github.com/herohde/banzuke/pkg/game"
)

// ResignConfig configures resign adjudication (spec.md §4.5 step 9),
// grounded on original_source/app/src/types/resign_adjudication.hpp.
type ResignConfig struct {
	Enabled   bool
	Score     int
	MoveCount int
	TwoSided  bool
}

// DrawConfig configures draw-by-score adjudication, following the same
// shape as ResignConfig (original_source names no equivalent struct; this
// mirrors its sibling resign_adjudication.hpp/max_moves_adjudication.hpp
// field layout).
type DrawConfig struct {
	Enabled   bool
	Score     int
	MoveCount int
	MinMoves  int
}

// MaxMovesAdjudication's configured outcome (default Draw), grounded on
// original_source/app/src/types/max_moves_adjudication.hpp.
type MaxMovesConfig struct {
	Enabled   bool
	MoveCount int
	Outcome   Outcome
}

// mateMagnitude is the effective cp-scale magnitude assigned to a reported
// mate score so it compares sensibly against resign/draw cp thresholds: a
// mate score always dominates any plausible cp bound.
const mateMagnitude = 100000

func effectiveScore(m MoveRecord) int {
	if m.ScoreKind == "mate" {
		if m.Score < 0 {
			return -mateMagnitude
		}
		return mateMagnitude
	}
	return m.Score
}

// lastBySide returns the last n MoveRecords made by side s, most recent
// last. Returns false if fewer than n are available.
func lastBySide(history []MoveRecord, s game.Side, n int) ([]MoveRecord, bool) {
	var out []MoveRecord
	for i := len(history) - 1; i >= 0 && len(out) < n; i-- {
		if history[i].Side == s {
			out = append([]MoveRecord{history[i]}, out...)
		}
	}
	return out, len(out) == n
}

// CheckResign implements spec.md §4.5 step 9's resign rule: the side that
// just moved resigns if its own last resign.move_count evaluations have
// all been at or below -resign.score, and (if twosided) the opponent's
// matching window of evaluations has all been at or above +resign.score.
func CheckResign(history []MoveRecord, cfg ResignConfig) (loser game.Side, ok bool) {
	if !cfg.Enabled || len(history) == 0 || cfg.MoveCount <= 0 {
		return 0, false
	}
	mover := history[len(history)-1].Side

	moverWindow, enough := lastBySide(history, mover, cfg.MoveCount)
	if !enough {
		return 0, false
	}
	for _, m := range moverWindow {
		if effectiveScore(m) > -cfg.Score {
			return 0, false
		}
	}

	if cfg.TwoSided {
		oppWindow, enough := lastBySide(history, mover.Opponent(), cfg.MoveCount)
		if !enough {
			return 0, false
		}
		for _, m := range oppWindow {
			if effectiveScore(m) < cfg.Score {
				return 0, false
			}
		}
	}
	return mover, true
}

// CheckDraw implements spec.md §4.5 step 9's draw rule: after
// draw.min_moves half-moves, if the last draw.move_count plies (either
// side) all reported scores within [-draw.score, +draw.score], the game is
// drawn.
func CheckDraw(history []MoveRecord, cfg DrawConfig) bool {
	if !cfg.Enabled || cfg.MoveCount <= 0 || len(history) < cfg.MinMoves {
		return false
	}
	if len(history) < cfg.MoveCount {
		return false
	}
	window := history[len(history)-cfg.MoveCount:]
	for _, m := range window {
		s := effectiveScore(m)
		if s < -cfg.Score || s > cfg.Score {
			return false
		}
	}
	return true
}

// CheckMaxMoves implements spec.md §4.5 step 9's max-moves rule.
func CheckMaxMoves(plies int, cfg MaxMovesConfig) (Outcome, bool) {
	if !cfg.Enabled || cfg.MoveCount <= 0 || plies < cfg.MoveCount {
		return None, false
	}
	outcome := cfg.Outcome
	if outcome == None {
		outcome = Draw
	}
	return outcome, true
}
