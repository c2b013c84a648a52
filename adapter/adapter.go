// File: adapter/adapter.go
// Author: momentics <momentics@gmail.com>
//
// Stream adapter variants. Each adapter serializes the host buffer
// currently bound at its address as one flat sample and forwards it to
// its outbound stream.

package adapter

import (
	"unsafe"

	"github.com/momentics/varstream/api"
)

// Adapter bridges one named host variable to one outbound stream.
type Adapter interface {
	// Push serializes the buffer currently bound at the adapter's
	// address and forwards it as one sample. The caller guarantees
	// the binding is current (reconciliation runs immediately before
	// every push); a stale address is a precondition violation.
	Push() error

	// Rebind repoints the adapter at a new buffer address without
	// touching the outbound stream. Valid only while element type and
	// count are unchanged.
	Rebind(addr unsafe.Pointer)

	// Address returns the currently bound buffer address.
	Address() unsafe.Pointer

	// ChannelCount returns the fixed outbound channel count.
	ChannelCount() int

	// Tag returns the fixed host type tag.
	Tag() api.TypeTag

	// Name returns the bridged variable name.
	Name() string

	// Close releases the outbound stream resource. Never called on
	// the real-time path.
	Close() error
}

// Scalar constrains the element types served by the generic adapter.
type Scalar interface {
	~int32 | ~float32 | ~float64
}

// scalarAdapter serves all non-complex variants. The sample is a raw
// byte view of the bound buffer: channelCount scalars of type T.
type scalarAdapter[T Scalar] struct {
	name     string
	tag      api.TypeTag
	addr     unsafe.Pointer
	channels int
	outlet   api.Outlet
}

func (a *scalarAdapter[T]) Push() error {
	var zero T
	n := a.channels * int(unsafe.Sizeof(zero))
	return a.outlet.Push(unsafe.Slice((*byte)(a.addr), n))
}

func (a *scalarAdapter[T]) Rebind(addr unsafe.Pointer) { a.addr = addr }
func (a *scalarAdapter[T]) Address() unsafe.Pointer    { return a.addr }
func (a *scalarAdapter[T]) ChannelCount() int          { return a.channels }
func (a *scalarAdapter[T]) Tag() api.TypeTag           { return a.tag }
func (a *scalarAdapter[T]) Name() string               { return a.name }
func (a *scalarAdapter[T]) Close() error               { return a.outlet.Close() }

// complexAdapter serves complex64 buffers. A complex64 is laid out as
// a float32 real part followed by a float32 imaginary part, so the raw
// byte view of the buffer is already the required interleaved channel
// order [re0, im0, re1, im1, ...]; no reshuffling happens on push.
type complexAdapter struct {
	name     string
	addr     unsafe.Pointer
	channels int // 2 * element count
	outlet   api.Outlet
}

func (a *complexAdapter) Push() error {
	const scalarSize = int(unsafe.Sizeof(float32(0)))
	return a.outlet.Push(unsafe.Slice((*byte)(a.addr), a.channels*scalarSize))
}

func (a *complexAdapter) Rebind(addr unsafe.Pointer) { a.addr = addr }
func (a *complexAdapter) Address() unsafe.Pointer    { return a.addr }
func (a *complexAdapter) ChannelCount() int          { return a.channels }
func (a *complexAdapter) Tag() api.TypeTag           { return api.TagComplex }
func (a *complexAdapter) Name() string               { return a.name }
func (a *complexAdapter) Close() error               { return a.outlet.Close() }
