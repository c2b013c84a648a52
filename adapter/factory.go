// File: adapter/factory.go
// Author: momentics <momentics@gmail.com>
//
// Adapter factory: maps a host type tag to a concrete adapter variant
// and declares the matching outbound stream. This is the only place
// adapters are created.

package adapter

import (
	"fmt"

	"github.com/momentics/varstream/api"
)

// Build constructs the adapter variant for the descriptor's type tag
// and declares its outbound stream on tr.
//
// Returns api.ErrUnsupportedType for tags outside the enumerated set
// and for degenerate descriptors (zero elements, nil address), which
// no adapter variant can serve.
func Build(tr api.Transport, name string, desc api.ValueDescriptor, sampleRate float64, sourceID string) (Adapter, error) {
	if desc.Elements <= 0 || desc.Data == nil {
		return nil, fmt.Errorf("%w: variable %q has no usable buffer (%d elements)",
			api.ErrUnsupportedType, name, desc.Elements)
	}
	switch desc.Tag {
	case api.TagInt32:
		return newScalar[int32](tr, name, desc, api.FormatInt32, sampleRate, sourceID)
	case api.TagFloat32:
		return newScalar[float32](tr, name, desc, api.FormatFloat32, sampleRate, sourceID)
	case api.TagFloat64:
		return newScalar[float64](tr, name, desc, api.FormatFloat64, sampleRate, sourceID)
	case api.TagReal:
		return newScalar[float32](tr, name, desc, api.FormatFloat32, sampleRate, sourceID)
	case api.TagComplex:
		return newComplex(tr, name, desc, sampleRate, sourceID)
	}
	return nil, fmt.Errorf("%w: variable %q has unknown type tag %d",
		api.ErrUnsupportedType, name, desc.Tag)
}

func newScalar[T Scalar](tr api.Transport, name string, desc api.ValueDescriptor, format api.SampleFormat, sampleRate float64, sourceID string) (Adapter, error) {
	outlet, err := tr.DeclareStream(api.StreamInfo{
		Name:         name,
		TypeLabel:    desc.Tag.String(),
		ChannelCount: desc.Elements,
		Format:       format,
		SampleRate:   sampleRate,
		SourceID:     sourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("declare stream %q: %w", name, err)
	}
	return &scalarAdapter[T]{
		name:     name,
		tag:      desc.Tag,
		addr:     desc.Data,
		channels: desc.Elements,
		outlet:   outlet,
	}, nil
}

func newComplex(tr api.Transport, name string, desc api.ValueDescriptor, sampleRate float64, sourceID string) (Adapter, error) {
	outlet, err := tr.DeclareStream(api.StreamInfo{
		Name:         name,
		TypeLabel:    api.TagComplex.String(),
		ChannelCount: 2 * desc.Elements,
		Format:       api.FormatFloat32,
		SampleRate:   sampleRate,
		SourceID:     sourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("declare stream %q: %w", name, err)
	}
	return &complexAdapter{
		name:     name,
		addr:     desc.Data,
		channels: 2 * desc.Elements,
		outlet:   outlet,
	}, nil
}
