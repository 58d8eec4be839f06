//go:build linux

package wcall

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// pinSlot restricts the calling OS thread to CPU slot % NumCPU.
// The goroutine must already be locked to its thread.
func pinSlot(slot int) error {
	cpu := slot % runtime.NumCPU()
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("wcall: pin slot %d to cpu %d: %w", slot, cpu, err)
	}
	return nil
}
