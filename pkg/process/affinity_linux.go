//go:build linux

package process

import "golang.org/x/sys/unix"

// setAffinity pins pid to the CPUs selected by mask's set bits.
func setAffinity(pid int, mask uint64) error {
	var set unix.CPUSet
	for cpu := 0; cpu < 64; cpu++ {
		if mask&(1<<uint(cpu)) != 0 {
			set.Set(cpu)
		}
	}
	return unix.SchedSetaffinity(pid, &set)
}
