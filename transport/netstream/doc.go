// Package netstream
// Author: momentics <momentics@gmail.com>
//
// Reference outbound sample-stream transport over a single TCP (or any
// net.Conn) connection to a collector. Stream declaration, samples and
// stream closure are multiplexed as length-prefixed binary messages;
// sample payloads are raw host-endian scalars while all framing fields
// are big-endian, leaving byte-order conversion to the receiver.
//
// Pushes are queued and written by a background goroutine, so Push
// itself never blocks on the network. Declaration and closure are the
// only operations expected on a relaxed-timing path anyway; the bridge
// core guarantees they never happen on the real-time path.
package netstream
