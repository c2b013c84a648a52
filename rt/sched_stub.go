//go:build !linux
// +build !linux

// File: rt/sched_stub.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without a queryable per-thread scheduling
// policy: never reports a real-time thread.

package rt

func callingThreadIsRealTime() (bool, error) {
	return false, nil
}
