//go:build !linux

package process

import "fmt"

// setAffinity is unsupported outside Linux; sched_setaffinity has no
// portable equivalent (spec.md §1: CPU enumeration is out of scope, and a
// scheduling hint that only works on one platform isn't worth faking
// elsewhere).
func setAffinity(pid int, mask uint64) error {
	return fmt.Errorf("process: CPU affinity unsupported on this platform")
}
