// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Value descriptors and type tags for the host-owned variable space.

package api

import "unsafe"

// TypeTag identifies the element type of a host variable buffer.
// The set is closed: adapters dispatch over exactly these five tags and
// anything else is ErrUnsupportedType.
type TypeTag uint8

const (
	// TagInt32 is a buffer of 32-bit signed integers.
	TagInt32 TypeTag = iota
	// TagFloat32 is a buffer of 32-bit floats.
	TagFloat32
	// TagFloat64 is a buffer of 64-bit floats.
	TagFloat64
	// TagReal is a buffer of the host's real-valued sample type.
	// Wire encoding is identical to TagFloat32 but the stream type label
	// differs so receivers can distinguish semantic origin.
	TagReal
	// TagComplex is a buffer of complex64 values. Outbound streams carry
	// them as interleaved float32 pairs [re0, im0, re1, im1, ...].
	TagComplex
)

// String returns the stream type label for the tag. Labels are distinct
// per tag even where wire encoding coincides.
func (t TypeTag) String() string {
	switch t {
	case TagInt32:
		return "int32"
	case TagFloat32:
		return "float32"
	case TagFloat64:
		return "float64"
	case TagReal:
		return "real32"
	case TagComplex:
		return "complex64"
	}
	return "unknown"
}

// Valid reports whether the tag is one of the five enumerated values.
func (t TypeTag) Valid() bool {
	return t <= TagComplex
}

// ChannelCount returns the outbound channel count implied by the tag for
// a buffer of elements entries: 2*elements for TagComplex, elements
// otherwise.
func (t TypeTag) ChannelCount(elements int) int {
	if t == TagComplex {
		return 2 * elements
	}
	return elements
}

// SampleFormat identifies the scalar width of one outbound channel.
type SampleFormat uint8

const (
	FormatInt32 SampleFormat = iota
	FormatFloat32
	FormatFloat64
)

// Size returns the width of one scalar of the format in bytes.
func (f SampleFormat) Size() int {
	if f == FormatFloat64 {
		return 8
	}
	return 4
}

// String returns a short name for the format.
func (f SampleFormat) String() string {
	switch f {
	case FormatInt32:
		return "i32"
	case FormatFloat32:
		return "f32"
	case FormatFloat64:
		return "f64"
	}
	return "unknown"
}

// ValueDescriptor is a snapshot of one host variable at one lookup: its
// element type, element count, and current buffer address. Descriptors
// are produced fresh on every lookup and must not be cached beyond one
// use; the host may retype, resize, or move the buffer at any time.
type ValueDescriptor struct {
	Tag      TypeTag
	Elements int
	Data     unsafe.Pointer
}

// StreamInfo describes one outbound sample stream at declaration time.
// All fields are fixed for the lifetime of the stream.
type StreamInfo struct {
	// Name of the stream; equals the bridged variable name.
	Name string
	// TypeLabel is the semantic origin label, one per TypeTag.
	TypeLabel string
	// ChannelCount is the number of scalars per sample.
	ChannelCount int
	// Format is the scalar width of each channel.
	Format SampleFormat
	// SampleRate is the nominal rate of pushed samples in Hz.
	SampleRate float64
	// SourceID is the user-supplied stable identity, empty for
	// content-derived identity.
	SourceID string
}
