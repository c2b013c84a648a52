// Package adapter
// Author: momentics <momentics@gmail.com>
//
// Per-variable stream adapters bridging one bound host buffer to one
// outbound sample stream. One adapter variant per scalar type, with a
// dedicated variant for complex buffers, which the transport cannot
// represent natively and which are therefore flattened to interleaved
// real/imaginary channel pairs.
//
// Adapters are owned exclusively by one bridge configuration. Type tag
// and channel count are fixed for an adapter's lifetime; any host-side
// change to either requires destroying and replacing the adapter.
package adapter
