// Package bridge
// Author: momentics <momentics@gmail.com>
//
// Bridge core: republishes snapshots of selected variable-space buffers
// to outbound sample streams once per processing cycle.
//
// Two execution contexts share a Controller. The configuration path
// (any thread, relaxed timing) builds complete immutable configurations
// and publishes them through a single atomic pointer. The real-time
// path (one thread, cycle-synchronous) reads the pointer once per tick
// and uses that snapshot for the whole cycle; it never blocks on the
// writer and never observes a partially built configuration. Superseded
// configurations are reclaimed on the configuration path only, since
// closing outbound streams may block or allocate.
package bridge
