// File: rt/sched.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral API for probing the calling thread's scheduling
// policy. Platform-specific implementations live in separate files
// (sched_linux.go, sched_stub.go) guarded by build tags.

package rt

// CallingThreadIsRealTime reports whether the calling OS thread runs
// under a fixed-priority preemptive (real-time) scheduling policy.
//
// The probe performs a system call and is itself not real-time safe;
// callers run it at most once per activation. On platforms without a
// queryable policy it reports false.
func CallingThreadIsRealTime() (bool, error) {
	return callingThreadIsRealTime()
}
