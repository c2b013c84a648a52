//go:build linux
// +build linux

// File: rt/sched_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation: sched_getattr(2) on the calling thread.

package rt

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// callingThreadIsRealTime queries the scheduling attributes of the
// calling thread (pid 0) and reports SCHED_FIFO and SCHED_RR as
// real-time policies.
func callingThreadIsRealTime() (bool, error) {
	attr, err := unix.SchedGetAttr(0, 0)
	if err != nil {
		return false, fmt.Errorf("rt: could not retrieve thread scheduling attributes: %w", err)
	}
	return attr.Policy == unix.SCHED_FIFO || attr.Policy == unix.SCHED_RR, nil
}
