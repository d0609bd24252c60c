package usi

import "fmt"

// OptionOverride is a configured (name, value) pair to apply before a game.
type OptionOverride struct {
	Name  string
	Value string
}

// ResourceLimit is one of: nodes, depth, movetime, or time+increment. Only
// one mode is meaningful at a time; Nodes/Depth are orthogonal additions
// layered onto whichever time mode is active (spec.md §6.1: "go" may emit
// nodes and depth alongside the chosen time tokens).
type ResourceLimit struct {
	Nodes   uint64
	Depth   uint
	MoveTimeMillis int64
	TimeMillis      int64
	IncrementMillis int64
}

// EngineConfig is an engine's immutable identity, shared by all sessions of
// that engine (spec.md §3).
type EngineConfig struct {
	Name       string
	Path       string
	WorkingDir string
	Args       []string

	Options []OptionOverride
	Limit   ResourceLimit

	// AffinityMask, if non-zero, is a bitmask of CPUs the child process
	// should be pinned to. Enumerating available CPUs is out of scope
	// (spec.md §1); this field only plumbs a caller-supplied mask through
	// to process start.
	AffinityMask uint64
}

func (c EngineConfig) String() string {
	return fmt.Sprintf("%v(%v %v)", c.Name, c.Path, c.Args)
}

// OrderedOptions returns c.Options with "Threads" moved to the front, if
// present, per spec.md §4.2's option set-up ordering rule: some engines
// lazily allocate NUMA-aware thread pools on the first option that touches
// thread count.
func (c EngineConfig) OrderedOptions() []OptionOverride {
	out := make([]OptionOverride, 0, len(c.Options))
	var threads *OptionOverride
	for i, o := range c.Options {
		if o.Name == "Threads" && threads == nil {
			cp := c.Options[i]
			threads = &cp
			continue
		}
		out = append(out, o)
	}
	if threads != nil {
		out = append([]OptionOverride{*threads}, out...)
	}
	return out
}
