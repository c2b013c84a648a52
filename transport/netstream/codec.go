// File: transport/netstream/codec.go
// Package netstream wire codec with message size enforcement.
// Author: momentics <momentics@gmail.com>
//
// Message layout: type (1 byte), stream id (4 bytes BE), payload length
// (4 bytes BE), payload. Declaration payloads carry the full stream
// metadata; sample payloads are raw host-endian scalars.

package netstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/google/uuid"

	"github.com/momentics/varstream/api"
)

// Message types multiplexed on one connection.
const (
	MsgDeclare byte = 1
	MsgSample  byte = 2
	MsgClose   byte = 3
)

// Preamble opens every connection so a collector can reject strangers
// early.
var Preamble = []byte("VSTRM01\n")

// MaxMessagePayload defines the maximum allowed payload size for a
// single message. This limit protects against excessively large
// messages that could exhaust memory on the collector.
const MaxMessagePayload = 1 << 20 // 1 MiB

const msgHeaderSize = 1 + 4 + 4

// Message is one framed unit on the wire.
type Message struct {
	Type     byte
	StreamID uint32
	Payload  []byte
}

// EncodeMessage serializes m, enforcing the payload size limit.
func EncodeMessage(m *Message) ([]byte, error) {
	if len(m.Payload) > MaxMessagePayload {
		return nil, errors.New("message payload exceeds maximum allowed size")
	}
	buf := make([]byte, msgHeaderSize+len(m.Payload))
	buf[0] = m.Type
	binary.BigEndian.PutUint32(buf[1:], m.StreamID)
	binary.BigEndian.PutUint32(buf[5:], uint32(len(m.Payload)))
	copy(buf[msgHeaderSize:], m.Payload)
	return buf, nil
}

// DecodeMessage reads one framed message from r, enforcing the payload
// size limit.
func DecodeMessage(r io.Reader) (*Message, error) {
	var hdr [msgHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(hdr[5:])
	if length > MaxMessagePayload {
		return nil, errors.New("message payload exceeds maximum allowed size")
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return &Message{
		Type:     hdr[0],
		StreamID: binary.BigEndian.Uint32(hdr[1:]),
		Payload:  payload,
	}, nil
}

// Declaration is the metadata payload of a MsgDeclare message.
type Declaration struct {
	UID  uuid.UUID
	Info api.StreamInfo
}

// EncodeDeclaration serializes a stream declaration payload.
func EncodeDeclaration(d *Declaration) ([]byte, error) {
	for _, s := range []string{d.Info.Name, d.Info.TypeLabel, d.Info.SourceID} {
		if len(s) > math.MaxUint16 {
			return nil, errors.New("declaration string exceeds maximum length")
		}
	}
	buf := make([]byte, 0, 64)
	buf = append(buf, d.UID[:]...)
	buf = appendString(buf, d.Info.Name)
	buf = appendString(buf, d.Info.TypeLabel)
	buf = appendString(buf, d.Info.SourceID)
	buf = binary.BigEndian.AppendUint32(buf, uint32(d.Info.ChannelCount))
	buf = append(buf, byte(d.Info.Format))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(d.Info.SampleRate))
	return buf, nil
}

// DecodeDeclaration parses a stream declaration payload.
func DecodeDeclaration(payload []byte) (*Declaration, error) {
	d := &Declaration{}
	if len(payload) < len(d.UID) {
		return nil, errors.New("declaration truncated")
	}
	copy(d.UID[:], payload)
	rest := payload[len(d.UID):]
	var err error
	if d.Info.Name, rest, err = readString(rest); err != nil {
		return nil, err
	}
	if d.Info.TypeLabel, rest, err = readString(rest); err != nil {
		return nil, err
	}
	if d.Info.SourceID, rest, err = readString(rest); err != nil {
		return nil, err
	}
	if len(rest) < 4+1+8 {
		return nil, errors.New("declaration truncated")
	}
	d.Info.ChannelCount = int(binary.BigEndian.Uint32(rest))
	d.Info.Format = api.SampleFormat(rest[4])
	d.Info.SampleRate = math.Float64frombits(binary.BigEndian.Uint64(rest[5:]))
	return d, nil
}

func appendString(buf []byte, s string) []byte {
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func readString(buf []byte) (string, []byte, error) {
	if len(buf) < 2 {
		return "", nil, errors.New("declaration truncated")
	}
	n := int(binary.BigEndian.Uint16(buf))
	buf = buf[2:]
	if len(buf) < n {
		return "", nil, fmt.Errorf("declaration string truncated (%d of %d bytes)", len(buf), n)
	}
	return string(buf[:n]), buf[n:], nil
}
