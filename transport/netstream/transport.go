// File: transport/netstream/transport.go
// Author: momentics <momentics@gmail.com>
//
// Connection-level transport: declares streams, queues encoded
// messages, and writes them from a single background goroutine.

package netstream

import (
	"bufio"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/eapache/queue"
	"github.com/google/uuid"

	"github.com/momentics/varstream/api"
)

// Transport multiplexes outbound sample streams onto one connection.
// It implements api.Transport.
type Transport struct {
	conn net.Conn
	bw   *bufio.Writer
	log  *slog.Logger

	mu       sync.Mutex
	outbox   *queue.Queue // encoded []byte messages
	writeErr error
	closed   bool
	nextID   uint32

	// wmu serializes drain: the writer goroutine and Close both flush.
	wmu sync.Mutex

	wake chan struct{}
	done chan struct{}
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the transport logger.
func WithLogger(log *slog.Logger) Option {
	return func(t *Transport) { t.log = log }
}

// Dial connects to a collector at addr and starts the writer.
func Dial(addr string, opts ...Option) (*Transport, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("netstream: dial %s: %w", addr, err)
	}
	return NewTransport(conn, opts...), nil
}

// NewTransport wraps an established connection. The transport takes
// ownership of conn.
func NewTransport(conn net.Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:   conn,
		bw:     bufio.NewWriter(conn),
		log:    slog.Default(),
		outbox: queue.New(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.enqueue(append([]byte(nil), Preamble...))
	go t.writeLoop()
	return t
}

// DeclareStream implements api.Transport. The declaration message is
// queued immediately; samples for the stream follow on the same
// connection in push order.
func (t *Transport) DeclareStream(info api.StreamInfo) (api.Outlet, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, api.ErrStreamClosed
	}
	if err := t.writeErr; err != nil {
		t.mu.Unlock()
		return nil, connectionFailed(err).WithContext("stream", info.Name)
	}
	t.nextID++
	id := t.nextID
	t.mu.Unlock()

	payload, err := EncodeDeclaration(&Declaration{UID: streamUID(info), Info: info})
	if err != nil {
		return nil, fmt.Errorf("netstream: declare %q: %w", info.Name, err)
	}
	msg, err := EncodeMessage(&Message{Type: MsgDeclare, StreamID: id, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("netstream: declare %q: %w", info.Name, err)
	}
	t.enqueue(msg)
	t.log.Debug("stream declared",
		"name", info.Name,
		"type", info.TypeLabel,
		"channels", info.ChannelCount,
		"rate", info.SampleRate)
	return &Outlet{transport: t, id: id, info: info}, nil
}

// Close flushes pending messages and closes the connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()
	close(t.done)
	t.drain()
	return t.conn.Close()
}

func (t *Transport) enqueue(msg []byte) {
	t.mu.Lock()
	t.outbox.Add(msg)
	t.mu.Unlock()
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

func (t *Transport) writeLoop() {
	for {
		select {
		case <-t.wake:
			t.drain()
		case <-t.done:
			return
		}
	}
}

// drain writes and flushes everything queued so far. The first write
// error is sticky and surfaces on subsequent pushes and declarations.
func (t *Transport) drain() {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	for {
		t.mu.Lock()
		if t.outbox.Length() == 0 {
			err := t.bw.Flush()
			if err != nil && t.writeErr == nil {
				t.writeErr = err
			}
			t.mu.Unlock()
			return
		}
		msg := t.outbox.Remove().([]byte)
		t.mu.Unlock()

		if _, err := t.bw.Write(msg); err != nil {
			t.mu.Lock()
			if t.writeErr == nil {
				t.writeErr = err
			}
			t.mu.Unlock()
			return
		}
	}
}

// connectionFailed wraps the sticky write error as a structured
// transport error; the connection is unusable from the first failure
// onward.
func connectionFailed(cause error) *api.Error {
	return api.NewError(api.ErrCodeTransport, "netstream: connection failed").
		WithContext("cause", cause.Error())
}

// streamUID derives the stream identity. With a source id the identity
// is stable across restarts, enabling receiver-side session recovery.
// Without one it is derived from the full stream metadata, so any
// change to channel count, data type, or rate breaks recovery.
func streamUID(info api.StreamInfo) uuid.UUID {
	if info.SourceID == "" {
		seed := fmt.Sprintf("%s|%s|%d|%s|%g",
			info.Name, info.TypeLabel, info.ChannelCount, info.Format, info.SampleRate)
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(seed))
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(info.SourceID+"|"+info.Name))
}

// Outlet is one declared stream on a Transport. It implements
// api.Outlet.
type Outlet struct {
	transport *Transport
	id        uint32
	info      api.StreamInfo

	mu     sync.Mutex
	closed bool
}

// Push implements api.Outlet. The sample bytes alias live host memory
// and are copied into the framed message before queuing.
func (o *Outlet) Push(sample []byte) error {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if closed {
		return api.ErrStreamClosed
	}
	t := o.transport
	t.mu.Lock()
	err := t.writeErr
	t.mu.Unlock()
	if err != nil {
		return connectionFailed(err).WithContext("stream", o.info.Name)
	}
	msg, err := EncodeMessage(&Message{Type: MsgSample, StreamID: o.id, Payload: sample})
	if err != nil {
		return err
	}
	t.enqueue(msg)
	return nil
}

// Info implements api.Outlet.
func (o *Outlet) Info() api.StreamInfo { return o.info }

// Close implements api.Outlet, announcing the end of the stream to the
// collector. The connection stays open for other streams.
func (o *Outlet) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()
	msg, err := EncodeMessage(&Message{Type: MsgClose, StreamID: o.id})
	if err != nil {
		return err
	}
	o.transport.enqueue(msg)
	return nil
}
