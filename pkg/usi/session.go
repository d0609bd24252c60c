// Package usi drives one engine child process through the USI/UCI
// handshake and game protocol (spec.md §4.2). It is the GUI/tournament-
// manager side of the protocol: morlock (the teacher) implements the
// engine side (pkg/engine/uci), so the direction of every command here is
// inverted relative to it — Session sends "usi"/"isready"/"position"/"go"
// and parses "id"/"option"/"usiok"/"readyok"/"info"/"bestmove".
package usi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/herohde/banzuke/pkg/game"
	"github.com/herohde/banzuke/pkg/process"
	"github.com/herohde/banzuke/pkg/timecontrol"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Error kinds (spec.md §7), matched with errors.Is against the sentinels
// below, or errors.As against *process.SpawnError.
var (
	ErrTimeout            = errors.New("usi: timeout")
	ErrProcessDied        = errors.New("usi: process died")
	ErrProtocolViolation  = errors.New("usi: protocol violation")
)

const ringSize = 512

// Session is one running engine instance: one child process, an option
// registry populated at handshake, and a bounded ring of recent output
// (spec.md §3).
type Session struct {
	cfg    EngineConfig
	driver *process.Driver
	ring   *process.Ring

	registry *Registry
	idName   string
	idAuthor string

	initialized atomic.Bool
	active      atomic.Bool // at most one outstanding "go"
}

// NewSession creates an unstarted session for the given engine config.
func NewSession(cfg EngineConfig) *Session {
	return &Session{
		cfg:      cfg,
		driver:   process.New(cfg.Name),
		ring:     process.NewRing(ringSize),
		registry: NewRegistry(),
	}
}

// Config returns the engine configuration this session was created from.
func (s *Session) Config() EngineConfig { return s.cfg }

// Registry returns the option registry populated at handshake.
func (s *Session) Registry() *Registry { return s.registry }

// Initialized reports whether the handshake has succeeded.
func (s *Session) Initialized() bool { return s.initialized.Load() }

// Name returns the engine's declared "id name", or its configured name if
// the handshake has not completed.
func (s *Session) Name() string {
	if s.idName != "" {
		return s.idName
	}
	return s.cfg.Name
}

// Start spawns the child, sends "usi", and collects id/option declarations
// until "usiok" within startupTimeout.
func (s *Session) Start(ctx context.Context, startupTimeout time.Duration) error {
	if _, err := s.driver.Init(ctx, s.cfg.WorkingDir, s.cfg.Path, s.cfg.Args, s.cfg.AffinityMask); err != nil {
		return err
	}

	if err := s.driver.WriteInput(ctx, "usi"); err != nil {
		return err
	}

	status, line, err := s.driver.ReadOutput(ctx, s.ring, "usiok", startupTimeout)
	if err != nil {
		return err
	}
	if status == process.Timeout {
		return fmt.Errorf("%w: %v did not reply usiok within %v", ErrTimeout, s.cfg.Name, startupTimeout)
	}
	if status == process.ProcessDied {
		return fmt.Errorf("%w: %v", ErrProcessDied, s.cfg.Name)
	}
	_ = line

	for _, l := range s.ring.Lines() {
		s.parseHandshakeLine(l.Text)
	}

	s.initialized.Store(true)
	logw.Infof(ctx, "usi %v: initialized, name=%q author=%q options=%v", s.cfg.Name, s.idName, s.idAuthor, s.registry.Names())
	return nil
}

func (s *Session) parseHandshakeLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "id":
		if len(fields) >= 3 {
			switch fields[1] {
			case "name":
				s.idName = strings.Join(fields[2:], " ")
			case "author":
				s.idAuthor = strings.Join(fields[2:], " ")
			}
		}
	case "option":
		if opt, err := ParseOptionLine(line); err == nil {
			s.registry.Add(opt)
		}
	}
}

// IsReady sends "isready" and awaits "readyok" within threshold.
func (s *Session) IsReady(ctx context.Context, threshold time.Duration) error {
	if s.driver.Alive() != process.OK {
		return fmt.Errorf("%w: %v", ErrProcessDied, s.cfg.Name)
	}
	if err := s.driver.WriteInput(ctx, "isready"); err != nil {
		return err
	}
	status, _, err := s.driver.ReadOutput(ctx, s.ring, "readyok", threshold)
	if err != nil {
		return err
	}
	switch status {
	case process.Timeout:
		return fmt.Errorf("%w: %v did not reply readyok within %v", ErrTimeout, s.cfg.Name, threshold)
	case process.ProcessDied:
		return fmt.Errorf("%w: %v", ErrProcessDied, s.cfg.Name)
	}
	return nil
}

// NewGame sends "usinewgame" then waits for readiness within
// newGameTimeout (a distinct, separately configurable threshold from the
// startup handshake; cmd/banzuke exposes it as -newgame_timeout). A zero
// timeout waits for readyok without a deadline.
func (s *Session) NewGame(ctx context.Context, newGameTimeout time.Duration) error {
	if err := s.driver.WriteInput(ctx, "usinewgame"); err != nil {
		return err
	}
	return s.IsReady(ctx, newGameTimeout)
}

// ApplyOptions sends setoption for each configured override, in the order
// defined by EngineConfig.OrderedOptions (Threads first). Unknown/invalid
// options are logged and skipped, not treated as fatal (spec.md §4.2).
func (s *Session) ApplyOptions(ctx context.Context, overrides []OptionOverride) {
	for _, o := range overrides {
		if err := s.SetOption(ctx, o.Name, o.Value); err != nil {
			logw.Infof(ctx, "usi %v: setoption %v: %v (ignored)", s.cfg.Name, o.Name, err)
		}
	}
}

// SetOption validates value against the registry and sends "setoption".
// Buttons omit the " value <V>" token.
func (s *Session) SetOption(ctx context.Context, name, value string) error {
	if opt, ok := s.registry.Get(name); ok {
		if !opt.IsValid(value) {
			return fmt.Errorf("usi: invalid value %q for option %q", value, name)
		}
	}

	var line string
	if opt, ok := s.registry.Get(name); ok && opt.Type == Button {
		line = fmt.Sprintf("setoption name %v", name)
	} else {
		line = fmt.Sprintf("setoption name %v value %v", name, value)
	}
	if err := s.driver.WriteInput(ctx, line); err != nil {
		return err
	}
	_ = s.registry.SetValue(name, value)
	return nil
}

// Position emits a canonical "position" line for the given starting FEN
// and move history.
func (s *Session) Position(ctx context.Context, startFEN string, moves []string) error {
	var b strings.Builder
	b.WriteString("position ")
	if startFEN == "" || startFEN == "startpos" {
		b.WriteString("startpos")
	} else {
		b.WriteString("fen ")
		b.WriteString(startFEN)
	}
	if len(moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(moves, " "))
	}
	return s.driver.WriteInput(ctx, b.String())
}

// Go emits "go" with the exact token ordering of spec.md §6.1, derived
// from the fastshogi UsiEngine::go implementation this spec was distilled
// from (original_source/app/src/engine/usi_engine.cpp).
func (s *Session) Go(ctx context.Context, ourTC, theirTC *timecontrol.Budget, stm game.Side) error {
	if !s.active.CAS(false, true) {
		return fmt.Errorf("usi: %v already has an outstanding go", s.cfg.Name)
	}

	line := BuildGoLine(s.cfg.Limit, ourTC, theirTC, stm)
	return s.driver.WriteInput(ctx, line)
}

// BuildGoLine assembles the "go" command text without sending it; exported
// for S4/S5-style unit testing of token order in isolation from a live
// process.
func BuildGoLine(limit ResourceLimit, ourTC, theirTC *timecontrol.Budget, stm game.Side) string {
	var b strings.Builder
	b.WriteString("go")

	if limit.Nodes > 0 {
		fmt.Fprintf(&b, " nodes %d", limit.Nodes)
	}
	if limit.Depth > 0 {
		fmt.Fprintf(&b, " depth %d", limit.Depth)
	}

	if ourTC.IsFixed() {
		fmt.Fprintf(&b, " movetime %d", ourTC.Limits().FixedTime.Milliseconds())
		return b.String()
	}

	white, black := ourTC, theirTC
	if stm == game.Black {
		white, black = theirTC, ourTC
	}

	if ourTC.Limits().Time > 0 || ourTC.Limits().Increment > 0 {
		if white.Limits().Time > 0 || white.Limits().Increment > 0 {
			fmt.Fprintf(&b, " wtime %d", white.TimeLeft().Milliseconds())
		}
		if black.Limits().Time > 0 || black.Limits().Increment > 0 {
			fmt.Fprintf(&b, " btime %d", black.TimeLeft().Milliseconds())
		}
	}
	if ourTC.Limits().Increment > 0 {
		if white.Limits().Increment > 0 {
			fmt.Fprintf(&b, " winc %d", white.Limits().Increment.Milliseconds())
		}
		if black.Limits().Increment > 0 {
			fmt.Fprintf(&b, " binc %d", black.Limits().Increment.Milliseconds())
		}
	}
	return b.String()
}

// ReadUntil delegates to the underlying driver, appending into the
// session's own ring.
func (s *Session) ReadUntil(ctx context.Context, terminator string, threshold time.Duration) (process.Status, *process.Line, error) {
	return s.driver.ReadOutput(ctx, s.ring, terminator, threshold)
}

// AwaitBestMove reads until "bestmove" and extracts the move and ponder
// move. Clears the outstanding-go flag on return.
func (s *Session) AwaitBestMove(ctx context.Context, deadline time.Duration) (move, ponder string, status process.Status, err error) {
	defer s.active.Store(false)

	status, line, err := s.ReadUntil(ctx, "bestmove", deadline)
	if err != nil || status != process.OK {
		return "", "", status, err
	}
	move, ponder, ok := BestMove(line.Text)
	if !ok {
		return "", "", status, fmt.Errorf("%w: no move token after bestmove: %q", ErrProtocolViolation, line.Text)
	}
	return move, ponder, status, nil
}

// LastInfoLine scans the session's captured output ring for the most
// recent usable info line (spec.md §4.2).
func (s *Session) LastInfoLine() (InfoLine, bool) {
	return LastInfoLine(s.ring.Lines())
}

// Quit sends "quit" best-effort and is idempotent.
func (s *Session) Quit(ctx context.Context) {
	_ = s.driver.WriteInput(ctx, "quit")
}

// Kill guarantees the child is terminated, on every exit path including
// failure (spec.md §5, §9 RAII for child processes).
func (s *Session) Kill() {
	s.driver.Kill()
}

// Alive is a non-blocking liveness probe.
func (s *Session) Alive() process.Status {
	return s.driver.Alive()
}

// ResetRing clears captured output between games when a session is reused.
func (s *Session) ResetRing() {
	s.ring.Reset()
}
