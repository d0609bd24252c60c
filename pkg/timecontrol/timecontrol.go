// Package timecontrol implements per-side clock accounting for one game
// (spec.md §4.3).
package timecontrol

import (
	"fmt"
	"time"
)

// Limits configures a Budget: either fixed-per-move time, or a starting
// time with optional increment. Zero values for all three mean no time
// limit (a nodes- or depth-only search).
type Limits struct {
	Time      time.Duration
	Increment time.Duration
	FixedTime time.Duration
	Margin    time.Duration
}

func (l Limits) String() string {
	if l.FixedTime > 0 {
		return fmt.Sprintf("movetime=%v margin=%v", l.FixedTime, l.Margin)
	}
	return fmt.Sprintf("time=%v inc=%v margin=%v", l.Time, l.Increment, l.Margin)
}

// Budget tracks one side's clock across a game. time_left may go negative
// after a flag; the flag is sticky for the rest of the game (spec.md §3).
type Budget struct {
	limits   Limits
	timeLeft time.Duration
	flagged  bool
}

// New creates a Budget with time_left initialised to limits.Time.
func New(limits Limits) *Budget {
	return &Budget{limits: limits, timeLeft: limits.Time}
}

func (b *Budget) noLimit() bool {
	return b.limits.FixedTime == 0 && b.limits.Time == 0 && b.limits.Increment == 0
}

// Update accounts for elapsed time spent making the last move and reports
// whether the side stayed within budget. The formula follows the S1/S2
// concrete scenarios: in timed/increment mode the margin is folded into
// time_left on every call,
// not just added at comparison time, which is what makes successive
// updates with a non-zero margin behave as scenario S1 specifies.
func (b *Budget) Update(elapsed time.Duration) bool {
	switch {
	case b.noLimit():
		b.timeLeft = 0
		return true

	case b.limits.FixedTime > 0:
		ok := elapsed <= b.limits.FixedTime+b.limits.Margin
		b.timeLeft = b.limits.FixedTime
		if !ok {
			b.flagged = true
		}
		return ok

	default:
		ok := elapsed <= b.timeLeft+b.limits.Margin
		b.timeLeft = b.timeLeft - elapsed + b.limits.Increment + b.limits.Margin
		if !ok {
			b.flagged = true
		}
		return ok
	}
}

// TimeoutThreshold is the deadline to feed the next read_until(bestmove)
// call: time_left + margin (fixed_time + margin in fixed mode). Zero means
// no limit (nodes/depth-only search): the caller should not impose a wall
// clock deadline beyond whatever safety ceiling it otherwise uses.
func (b *Budget) TimeoutThreshold() time.Duration {
	switch {
	case b.noLimit():
		return 0
	case b.limits.FixedTime > 0:
		return b.limits.FixedTime + b.limits.Margin
	default:
		return b.timeLeft + b.limits.Margin
	}
}

// TimeLeft returns the current time_left value. Do not rely on this after
// Flagged() is true: it may have gone negative or, in fixed-time mode,
// silently reset to the per-move budget (spec.md §9, open question).
func (b *Budget) TimeLeft() time.Duration { return b.timeLeft }

// Flagged reports whether this side has ever exceeded its budget.
func (b *Budget) Flagged() bool { return b.flagged }

// Limits returns the configured limits.
func (b *Budget) Limits() Limits { return b.limits }

// IsFixed reports fixed-per-move mode.
func (b *Budget) IsFixed() bool { return b.limits.FixedTime > 0 }

// IsTimed reports a wall-clock time budget (with or without increment).
func (b *Budget) IsTimed() bool { return !b.noLimit() && b.limits.FixedTime == 0 }
