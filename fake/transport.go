// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides a recording transport with predictable, controllable behavior.

package fake

import (
	"sync"
	"unsafe"

	"github.com/momentics/varstream/api"
)

// Transport is a recording fake of api.Transport.
type Transport struct {
	mu         sync.Mutex
	outlets    []*Outlet
	declareErr error
	pushErr    error
}

// NewTransport creates a new fake transport.
func NewTransport() *Transport {
	return &Transport{}
}

// FailDeclare makes every subsequent DeclareStream return err.
func (t *Transport) FailDeclare(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.declareErr = err
}

// FailPush makes every subsequent Push on every outlet return err.
func (t *Transport) FailPush(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pushErr = err
}

// DeclareStream implements api.Transport.
func (t *Transport) DeclareStream(info api.StreamInfo) (api.Outlet, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.declareErr != nil {
		return nil, t.declareErr
	}
	o := &Outlet{transport: t, info: info}
	t.outlets = append(t.outlets, o)
	return o, nil
}

// Outlets returns every outlet ever declared, in declaration order,
// including closed ones.
func (t *Transport) Outlets() []*Outlet {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Outlet(nil), t.outlets...)
}

// Outlet returns the most recently declared open outlet with the given
// stream name, or nil.
func (t *Transport) Outlet(name string) *Outlet {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.outlets) - 1; i >= 0; i-- {
		if t.outlets[i].info.Name == name && !t.outlets[i].closed {
			return t.outlets[i]
		}
	}
	return nil
}

// DeclareCount returns how many streams were declared in total.
func (t *Transport) DeclareCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.outlets)
}

// Outlet is a recording fake of api.Outlet. Pushed samples are copied
// and retained for inspection.
type Outlet struct {
	transport *Transport
	info      api.StreamInfo
	samples   [][]byte
	closed    bool
}

// Push implements api.Outlet.
func (o *Outlet) Push(sample []byte) error {
	o.transport.mu.Lock()
	defer o.transport.mu.Unlock()
	if o.closed {
		return api.ErrStreamClosed
	}
	if err := o.transport.pushErr; err != nil {
		return err
	}
	c := make([]byte, len(sample))
	copy(c, sample)
	o.samples = append(o.samples, c)
	return nil
}

// Info implements api.Outlet.
func (o *Outlet) Info() api.StreamInfo { return o.info }

// Close implements api.Outlet.
func (o *Outlet) Close() error {
	o.transport.mu.Lock()
	defer o.transport.mu.Unlock()
	o.closed = true
	return nil
}

// Closed reports whether Close was called.
func (o *Outlet) Closed() bool {
	o.transport.mu.Lock()
	defer o.transport.mu.Unlock()
	return o.closed
}

// Samples returns copies of all pushed samples in push order.
func (o *Outlet) Samples() [][]byte {
	o.transport.mu.Lock()
	defer o.transport.mu.Unlock()
	return append([][]byte(nil), o.samples...)
}

// PushCount returns the number of samples pushed so far.
func (o *Outlet) PushCount() int {
	o.transport.mu.Lock()
	defer o.transport.mu.Unlock()
	return len(o.samples)
}

// Int32s decodes a raw sample as host-endian int32 scalars.
func Int32s(sample []byte) []int32 {
	return decode[int32](sample)
}

// Float32s decodes a raw sample as host-endian float32 scalars.
func Float32s(sample []byte) []float32 {
	return decode[float32](sample)
}

// Float64s decodes a raw sample as host-endian float64 scalars.
func Float64s(sample []byte) []float64 {
	return decode[float64](sample)
}

func decode[T int32 | float32 | float64](sample []byte) []T {
	var zero T
	n := len(sample) / int(unsafe.Sizeof(zero))
	if n == 0 {
		return nil
	}
	out := make([]T, n)
	copy(out, unsafe.Slice((*T)(unsafe.Pointer(&sample[0])), n))
	return out
}
