// Package process supervises a child engine process and frames its
// line-oriented stdio protocol with deadlines. It is deliberately built on
// the standard library's os/exec: no library in the retrieved corpus offers
// child-process stdio framing with read deadlines (see DESIGN.md), whereas
// every other ambient and domain concern in this module reaches for a
// third-party package the way the corpus does.
package process

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"go.uber.org/atomic"
)

// Status is the outcome of a Driver operation.
type Status int

const (
	OK Status = iota
	Timeout
	ProcessDied
	Error
)

func (s Status) String() string {
	switch s {
	case OK:
		return "OK"
	case Timeout:
		return "Timeout"
	case ProcessDied:
		return "ProcessDied"
	default:
		return "Error"
	}
}

// Stream identifies which child stream a captured Line came from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Line is one captured line of child output, tagged with its source stream
// and capture time.
type Line struct {
	Text   string
	Stream Stream
	At     time.Time
}

// ErrBrokenPipe is returned by WriteInput when the child has closed stdin.
var ErrBrokenPipe = fmt.Errorf("process: broken pipe")

// SpawnError wraps a failure to exec the child.
type SpawnError struct {
	Label string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("process %v: spawn failed: %v", e.Label, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Driver owns one child process's pipe pair and provides ordered,
// line-framed I/O with deadlines. Single-owner: a Driver is not safe for
// concurrent ReadOutput calls from multiple goroutines (WriteInput calls are
// serialised), matching the one-worker-per-game model in spec.md §5.
type Driver struct {
	label string

	cmd   *exec.Cmd
	stdin io.WriteCloser

	lines chan Line
	dead  iox.AsyncCloser
	deadErr error

	start time.Time
	alive atomic.Bool

	writeMu sync.Mutex
}

// New creates an unstarted Driver, identified by label in log output.
func New(label string) *Driver {
	return &Driver{label: label}
}

// Label returns the driver's identifying label.
func (d *Driver) Label() string { return d.label }

// Init spawns the child with redirected stdin/stdout/stderr and starts
// background pump goroutines that merge stdout and stderr (tagged) into an
// internal channel consumed by ReadOutput. If affinityMask is non-zero, the
// child is pinned to the CPUs it selects once spawned (spec.md §3
// EngineConfig.AffinityMask); a failure to pin is logged and ignored, since
// affinity is a scheduling hint, not a correctness requirement.
func (d *Driver) Init(ctx context.Context, cwd, cmdPath string, args []string, affinityMask uint64) (Status, error) {
	cmd := exec.Command(cmdPath, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Error, &SpawnError{Label: d.label, Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Error, &SpawnError{Label: d.label, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Error, &SpawnError{Label: d.label, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return Error, &SpawnError{Label: d.label, Err: err}
	}

	d.cmd = cmd
	d.stdin = stdin
	d.start = time.Now()
	d.lines = make(chan Line, 512)
	d.dead = iox.NewAsyncCloser()
	d.alive.Store(true)

	if affinityMask != 0 {
		if err := setAffinity(cmd.Process.Pid, affinityMask); err != nil {
			logw.Infof(ctx, "process %v: affinity mask %#x: %v (ignored)", d.label, affinityMask, err)
		}
	}

	go d.pump(ctx, stdout, Stdout)
	go d.pump(ctx, stderr, Stderr)
	go d.reap(ctx)

	logw.Infof(ctx, "process %v: spawned pid=%v cmd=%v %v", d.label, cmd.Process.Pid, cmdPath, strings.Join(args, " "))
	return OK, nil
}

func (d *Driver) pump(ctx context.Context, r io.Reader, stream Stream) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		l := Line{Text: scanner.Text(), Stream: stream, At: time.Now()}
		logw.Debugf(ctx, "process %v: << [%v] %v", d.label, stream, l.Text)
		select {
		case d.lines <- l:
		case <-d.dead.Closed():
			return
		}
	}
}

func (d *Driver) reap(ctx context.Context) {
	err := d.cmd.Wait()
	d.alive.Store(false)
	d.deadErr = err
	d.dead.Close()
	logw.Infof(ctx, "process %v: exited: %v", d.label, err)
}

// WriteInput appends a trailing newline if absent and writes the line to the
// child's stdin atomically with respect to other WriteInput calls.
func (d *Driver) WriteInput(ctx context.Context, line string) error {
	d.writeMu.Lock()
	defer d.writeMu.Unlock()

	if !d.alive.Load() {
		return ErrBrokenPipe
	}
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}

	logw.Debugf(ctx, "process %v: >> %v", d.label, strings.TrimSuffix(line, "\n"))
	if _, err := io.WriteString(d.stdin, line); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokenPipe, err)
	}
	return nil
}

// ReadOutput reads lines from stdout and stderr until a line's first
// whitespace-delimited token equals terminator, the deadline expires, or the
// child exits. Every line read, regardless of match, is appended to sink.
// Returns the terminator line on OK.
func (d *Driver) ReadOutput(ctx context.Context, sink *Ring, terminator string, deadline time.Duration) (Status, *Line, error) {
	var timer *time.Timer
	var timerC <-chan time.Time
	if deadline > 0 {
		timer = time.NewTimer(deadline)
		defer timer.Stop()
		timerC = timer.C
	}

	for {
		select {
		case l, ok := <-d.lines:
			if !ok {
				return d.drainAfterDeath(sink)
			}
			sink.Append(l)
			if isTerminator(l.Text, terminator) {
				return OK, &l, nil
			}

		case <-d.dead.Closed():
			// Drain any lines still buffered before reporting death.
			return d.drainAfterDeath(sink)

		case <-timerC:
			return Timeout, nil, nil

		case <-ctx.Done():
			return Error, nil, ctx.Err()
		}
	}
}

func (d *Driver) drainAfterDeath(sink *Ring) (Status, *Line, error) {
	for {
		select {
		case l, ok := <-d.lines:
			if !ok {
				return ProcessDied, nil, nil
			}
			sink.Append(l)
		default:
			return ProcessDied, nil, nil
		}
	}
}

// isTerminator reports whether line's first whitespace token equals term,
// per spec.md §6.1: "A line is considered the handshake/ping/search
// terminator when it begins with the expected terminator token."
func isTerminator(line, term string) bool {
	fields := strings.Fields(line)
	return len(fields) > 0 && fields[0] == term
}

// Alive is a non-blocking liveness probe.
func (d *Driver) Alive() Status {
	if d.alive.Load() {
		return OK
	}
	return ProcessDied
}

// Kill guarantees the child is terminated. Idempotent, safe to call after
// the process has already exited.
func (d *Driver) Kill() {
	if d.cmd == nil || d.cmd.Process == nil {
		return
	}
	if d.alive.Load() {
		_ = d.cmd.Process.Kill()
	}
}

// Uptime returns the time since Init.
func (d *Driver) Uptime() time.Duration {
	if d.start.IsZero() {
		return 0
	}
	return time.Since(d.start)
}
