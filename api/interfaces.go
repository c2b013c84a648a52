// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package api

// VarSpace is the host-owned registry of named, dynamically typed
// variable buffers.
//
// Lookup must be non-blocking and side-effect-free: the bridge calls it
// from a cycle-synchronous real-time path once per bridged variable per
// cycle. An implementation that blocks or allocates degrades the
// bridge's real-time guarantee.
type VarSpace interface {
	// Lookup returns a fresh descriptor for the named variable, or
	// ErrNotFound if no variable of that name exists.
	Lookup(name string) (ValueDescriptor, error)

	// EnumerateNames writes all current variable names, space
	// separated, into dst and returns the number of bytes written.
	// Returns ErrBufferTooSmall when dst cannot hold the full list
	// (the caller retries with a larger buffer) and ErrInvalidHandle
	// when the space itself is unusable.
	EnumerateNames(dst []byte) (int, error)
}

// Transport declares named, typed, fixed-channel-count outbound sample
// streams. Declaring a stream allocates a transport-level resource;
// failures are fatal to the declaring configuration build.
type Transport interface {
	DeclareStream(info StreamInfo) (Outlet, error)
}

// Outlet is one declared outbound stream.
type Outlet interface {
	// Push forwards one sample: a flat array of
	// Info().ChannelCount scalars of Info().Format, as raw
	// host-endian bytes. The slice aliases live host memory and is
	// valid only for the duration of the call; implementations must
	// copy before queuing.
	Push(sample []byte) error

	// Info returns the declaration-time stream metadata.
	Info() StreamInfo

	// Close releases the transport-level stream resource. Close may
	// block or allocate and must never be called from the real-time
	// path.
	Close() error
}
