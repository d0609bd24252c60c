package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/herohde/banzuke/pkg/game"
	"github.com/herohde/banzuke/pkg/process"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/herohde/banzuke/pkg/usi"
	"github.com/seekerror/logw"
)

// AdjudicationConfig bundles the three score-based adjudicators plus an
// optional tablebase probe (spec.md §4.5 step 9).
type AdjudicationConfig struct {
	Resign     ResignConfig
	Draw       DrawConfig
	MaxMoves   MaxMovesConfig
	Tablebase  TablebaseProbe
}

// MatchEngine plays one game between two usi.Sessions (spec.md §4.5).
type MatchEngine struct {
	Rules        Rules
	Adjudication AdjudicationConfig

	StartupTimeout time.Duration
	NewGameTimeout time.Duration
}

// NewMatchEngine constructs a MatchEngine with the given rules oracle and
// adjudication configuration.
func NewMatchEngine(rules Rules, adj AdjudicationConfig, startupTimeout, newGameTimeout time.Duration) *MatchEngine {
	return &MatchEngine{Rules: rules, Adjudication: adj, StartupTimeout: startupTimeout, NewGameTimeout: newGameTimeout}
}

// Play runs the full state machine of spec.md §4.5: handshake (if not
// already initialized), new-game, option application, opening premoves,
// then the TO_MOVE loop until the game ends, returning a MatchResult.
//
// white and black are the sessions playing those colours for this
// particular game (the Scheduler is responsible for colour-swapping across
// a pair); whiteTC/blackTC are freshly created per-game budgets.
func (m *MatchEngine) Play(ctx context.Context, opening Opening, white, black *usi.Session, whiteTC, blackTC *timecontrol.Budget) *MatchResult {
	start := time.Now()

	if res := m.handshake(ctx, white, black); res != nil {
		res.StartTime, res.EndTime = start, time.Now()
		return res
	}
	if res := m.newGame(ctx, white, black); res != nil {
		res.StartTime, res.EndTime = start, time.Now()
		return res
	}

	white.ApplyOptions(ctx, white.Config().OrderedOptions())
	black.ApplyOptions(ctx, black.Config().OrderedOptions())

	applied := append([]string{}, opening.Premoves...)
	stm := game.White
	if len(opening.Premoves)%2 == 1 {
		stm = game.Black
	}

	var history []MoveRecord
	currentFEN := opening.StartFEN

	sessionFor := func(s game.Side) *usi.Session {
		if s == game.White {
			return white
		}
		return black
	}
	tcFor := func(s game.Side) *timecontrol.Budget {
		if s == game.White {
			return whiteTC
		}
		return blackTC
	}

	for {
		s := sessionFor(stm)
		tcS := tcFor(stm)
		tcO := tcFor(stm.Opponent())

		if err := s.Position(ctx, opening.StartFEN, applied); err != nil {
			return report(start, history, Disconnect, outcomeForLoser(stm), err.Error(), currentFEN)
		}

		tStart := time.Now()
		if err := s.Go(ctx, tcS, tcO, stm); err != nil {
			return report(start, history, Disconnect, outcomeForLoser(stm), err.Error(), currentFEN)
		}

		move, _, status, err := s.AwaitBestMove(ctx, tcS.TimeoutThreshold())
		if err != nil {
			switch {
			case errors.Is(err, usi.ErrTimeout) || status == process.Timeout:
				return report(start, history, Timeout, outcomeForLoser(stm), err.Error(), currentFEN)
			case errors.Is(err, usi.ErrProcessDied) || status == process.ProcessDied:
				return report(start, history, Disconnect, outcomeForLoser(stm), err.Error(), currentFEN)
			case errors.Is(err, usi.ErrProtocolViolation):
				return report(start, history, Stall, outcomeForLoser(stm), err.Error(), currentFEN)
			default:
				return report(start, history, Disconnect, outcomeForLoser(stm), err.Error(), currentFEN)
			}
		}
		if status == process.Timeout {
			return report(start, history, Timeout, outcomeForLoser(stm), "no bestmove within time budget", currentFEN)
		}
		if status == process.ProcessDied {
			return report(start, history, Disconnect, outcomeForLoser(stm), "engine process died", currentFEN)
		}

		elapsed := time.Since(tStart)
		ok := tcS.Update(elapsed)
		if !ok {
			return report(start, history, Timeout, outcomeForLoser(stm), fmt.Sprintf("%v exceeded its time budget", stm), currentFEN)
		}

		info, _ := s.LastInfoLine()
		rec := MoveRecord{
			Side:                stm,
			USIText:             move,
			ScoreKind:           info.ScoreKind,
			Score:               info.Score,
			Depth:               info.Depth,
			SelDepth:            info.SelDepth,
			Nodes:               info.Nodes,
			NPS:                 info.NPS,
			HashFull:            info.HashFull,
			ElapsedMillis:       elapsed.Milliseconds(),
			TimeLeftAfterMillis: tcS.TimeLeft().Milliseconds(),
		}

		if !m.Rules.IsLegal(opening.StartFEN, applied, move) {
			rec.Legal = false
			history = append(history, rec)
			return report(start, history, IllegalMove, outcomeForLoser(stm), fmt.Sprintf("illegal move %q by %v", move, stm), currentFEN)
		}
		rec.Legal = true

		newFEN, err := m.Rules.Apply(opening.StartFEN, applied, move)
		if err != nil {
			return report(start, history, IllegalMove, outcomeForLoser(stm), err.Error(), currentFEN)
		}
		applied = append(applied, move)
		currentFEN = newFEN
		history = append(history, rec)

		logw.Debugf(ctx, "match: %v played %v (score=%v%v, depth=%v)", stm, move, rec.ScoreKind, rec.Score, rec.Depth)

		if loser, hit := CheckResign(history, m.Adjudication.Resign); hit {
			return report(start, history, Adjudication, outcomeForLoser(loser), fmt.Sprintf("%v resigns", loser), currentFEN)
		}
		if CheckDraw(history, m.Adjudication.Draw) {
			return report(start, history, Adjudication, Draw, "draw by score agreement", currentFEN)
		}
		if outcome, hit := CheckMaxMoves(len(applied), m.Adjudication.MaxMoves); hit {
			return report(start, history, Adjudication, outcome, "max moves reached", currentFEN)
		}
		if m.Adjudication.Tablebase != nil {
			if outcome, hit := m.Adjudication.Tablebase.Probe(newFEN, nil); hit {
				return report(start, history, Adjudication, outcome, "tablebase adjudication", currentFEN)
			}
		}

		if outcome, ok := m.Rules.Terminal(opening.StartFEN, applied); ok {
			return report(start, history, Normal, outcome, "", currentFEN)
		}

		stm = stm.Opponent()
	}
}

func (m *MatchEngine) handshake(ctx context.Context, white, black *usi.Session) *MatchResult {
	type sided struct {
		side game.Side
		s    *usi.Session
	}
	for _, sd := range []sided{{game.White, white}, {game.Black, black}} {
		if sd.s.Initialized() {
			continue
		}
		if err := sd.s.Start(ctx, m.StartupTimeout); err != nil {
			return report(time.Time{}, nil, Disconnect, outcomeForLoser(sd.side), err.Error(), "")
		}
	}
	return nil
}

func (m *MatchEngine) newGame(ctx context.Context, white, black *usi.Session) *MatchResult {
	if err := white.NewGame(ctx, m.NewGameTimeout); err != nil {
		return report(time.Time{}, nil, Disconnect, outcomeForLoser(game.White), err.Error(), "")
	}
	if err := black.NewGame(ctx, m.NewGameTimeout); err != nil {
		return report(time.Time{}, nil, Disconnect, outcomeForLoser(game.Black), err.Error(), "")
	}
	return nil
}

func report(start time.Time, history []MoveRecord, term Termination, outcome Outcome, reason, finalFEN string) *MatchResult {
	return &MatchResult{
		WhiteOutcome: outcome,
		Termination:  term,
		ReasonText:   reason,
		Moves:        history,
		StartTime:    start,
		EndTime:      time.Now(),
		FinalFEN:     finalFEN,
	}
}
