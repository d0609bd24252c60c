// Package output reports tournament progress in one of two human-facing
// text formats, plus a structured event stream for machine consumption
// (SPEC_FULL.md §4.10).
package output

import (
	"fmt"
	"io"
	"sync"

	"github.com/herohde/banzuke/pkg/match"
	"github.com/herohde/banzuke/pkg/stats"
	"github.com/rs/zerolog"
)

// Format selects the human-facing progress line style (spec.md §6.2
// "output" config key).
type Format int

const (
	FastShogi Format = iota
	CuteChess
)

// Event is one reportable tournament occurrence (spec.md §9: "a small
// capability interface (report(event), diff()/error()/los()/n_elo())").
type Event struct {
	Kind string // "game_finished", "sprt_update", "config_loaded"

	GameIndex    int
	White, Black string
	Result       *match.MatchResult

	Elo      *stats.EloEstimate
	LLR      float64
	Decision stats.Decision

	Message string
}

const (
	GameFinished = "game_finished"
	SPRTUpdate   = "sprt_update"
	ConfigLoaded = "config_loaded"
)

// Sink writes progress to w in the configured Format, and every event as a
// structured zerolog entry (grounded on
// bgpfix-bgpfix/pipe/options.go's Options.Logger *zerolog.Logger pattern).
// Reports are serialised: spec.md §5 requires each report to be emitted
// "under output_mutex as a single atomic line group" since workers report
// concurrently.
type Sink struct {
	mu     sync.Mutex
	w      io.Writer
	format Format
	logger zerolog.Logger
}

// NewSink creates a Sink writing human-facing lines to w and structured
// events through logger.
func NewSink(w io.Writer, format Format, logger zerolog.Logger) *Sink {
	return &Sink{w: w, format: format, logger: logger}
}

// Report renders ev in the configured text format and emits it as a
// structured log entry, atomically with respect to other Report calls.
func (s *Sink) Report(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case GameFinished:
		s.reportGame(ev)
	case SPRTUpdate:
		s.reportSPRT(ev)
	case ConfigLoaded:
		fmt.Fprintf(s.w, "config loaded: %s\n", ev.Message)
	}
	s.logEvent(ev)
}

func (s *Sink) reportGame(ev Event) {
	if ev.Result == nil {
		return
	}
	switch s.format {
	case CuteChess:
		fmt.Fprintf(s.w, "Finished game %d (%s vs %s): %s {%s}\n",
			ev.GameIndex, ev.White, ev.Black, resultWord(ev.Result.WhiteOutcome), ev.Result.Termination)
	default: // FastShogi
		fmt.Fprintf(s.w, "game %d: %s-%s  result=%s  termination=%s  plies=%d\n",
			ev.GameIndex, ev.White, ev.Black, resultWord(ev.Result.WhiteOutcome), ev.Result.Termination, len(ev.Result.Moves))
	}
}

func (s *Sink) reportSPRT(ev Event) {
	if ev.Elo == nil {
		return
	}
	switch s.format {
	case CuteChess:
		fmt.Fprintf(s.w, "Elo: %.2f +/- %.2f, LLR: %.3f (%s)\n",
			ev.Elo.Diff, (ev.Elo.CIHigh-ev.Elo.CILow)/2, ev.LLR, ev.Decision)
	default:
		fmt.Fprintf(s.w, "elo=%.2f [%.2f, %.2f] nelo=%.2f llr=%.3f decision=%s\n",
			ev.Elo.Diff, ev.Elo.CILow, ev.Elo.CIHigh, ev.Elo.NElo, ev.LLR, ev.Decision)
	}
}

func (s *Sink) logEvent(ev Event) {
	l := s.logger.Info().Str("kind", ev.Kind)
	if ev.Result != nil {
		l = l.Str("white", ev.White).Str("black", ev.Black).
			Str("termination", ev.Result.Termination.String()).
			Int("plies", len(ev.Result.Moves))
	}
	if ev.Elo != nil {
		l = l.Float64("elo", ev.Elo.Diff).Float64("llr", ev.LLR).Str("decision", ev.Decision.String())
	}
	l.Msg(ev.Message)
}

func resultWord(o match.Outcome) string {
	switch o {
	case match.WhiteWin:
		return "1-0"
	case match.BlackWin:
		return "0-1"
	case match.Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}
