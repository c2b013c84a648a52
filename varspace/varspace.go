// File: varspace/varspace.go
// Author: momentics <momentics@gmail.com>
//
// Reference in-memory implementation of the api.VarSpace contract: a
// host-owned registry of named, dynamically typed variable buffers. The
// host side rebinds, retypes, and resizes variables at will; the bridge
// observes the churn through fresh descriptors on every lookup.

package varspace

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/momentics/varstream/api"
)

type entry struct {
	desc api.ValueDescriptor
	// ref keeps the backing slice reachable while the descriptor's
	// raw address is bound by an adapter.
	ref any
}

// Space is an in-memory variable registry.
//
// Lookup takes a read lock only; the bridge's real-time guarantee holds
// as long as host-side mutation is rare relative to the cycle rate.
type Space struct {
	mu     sync.RWMutex
	vars   map[string]entry
	order  []string
	closed bool
}

// New creates an empty variable space.
func New() *Space {
	return &Space{vars: make(map[string]entry)}
}

// BindInt32 binds name to an int32 buffer.
func (s *Space) BindInt32(name string, buf []int32) error {
	return bind(s, name, api.TagInt32, buf)
}

// BindFloat32 binds name to a float32 buffer.
func (s *Space) BindFloat32(name string, buf []float32) error {
	return bind(s, name, api.TagFloat32, buf)
}

// BindFloat64 binds name to a float64 buffer.
func (s *Space) BindFloat64(name string, buf []float64) error {
	return bind(s, name, api.TagFloat64, buf)
}

// BindReal binds name to a real-valued buffer. Element layout equals
// BindFloat32; only the type tag differs.
func (s *Space) BindReal(name string, buf []float32) error {
	return bind(s, name, api.TagReal, buf)
}

// BindComplex binds name to a complex64 buffer.
func (s *Space) BindComplex(name string, buf []complex64) error {
	return bind(s, name, api.TagComplex, buf)
}

func bind[T int32 | float32 | float64 | complex64](s *Space, name string, tag api.TypeTag, buf []T) error {
	if len(buf) == 0 {
		return fmt.Errorf("%w: variable %q must have at least one element", api.ErrUnsupportedType, name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return api.ErrInvalidHandle
	}
	if _, ok := s.vars[name]; !ok {
		s.order = append(s.order, name)
	}
	s.vars[name] = entry{
		desc: api.ValueDescriptor{
			Tag:      tag,
			Elements: len(buf),
			Data:     unsafe.Pointer(&buf[0]),
		},
		ref: buf,
	}
	return nil
}

// Unbind removes name from the space.
func (s *Space) Unbind(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vars[name]; !ok {
		return
	}
	delete(s.vars, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Lookup implements api.VarSpace.
func (s *Space) Lookup(name string) (api.ValueDescriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return api.ValueDescriptor{}, api.ErrInvalidHandle
	}
	e, ok := s.vars[name]
	if !ok {
		return api.ValueDescriptor{}, fmt.Errorf("%w: %q", api.ErrNotFound, name)
	}
	return e.desc, nil
}

// EnumerateNames implements api.VarSpace. Names are written space
// separated in binding order.
func (s *Space) EnumerateNames(dst []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, api.ErrInvalidHandle
	}
	need := 0
	for i, name := range s.order {
		if i > 0 {
			need++
		}
		need += len(name)
	}
	if need > len(dst) {
		return 0, api.ErrBufferTooSmall
	}
	n := 0
	for i, name := range s.order {
		if i > 0 {
			dst[n] = ' '
			n++
		}
		n += copy(dst[n:], name)
	}
	return n, nil
}

// Close invalidates the space. Subsequent operations fail with
// api.ErrInvalidHandle.
func (s *Space) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.vars = nil
	s.order = nil
}
