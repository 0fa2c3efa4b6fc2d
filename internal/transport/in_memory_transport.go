// file: internal/transport/in_memory_transport.go
package transport

import (
	"context"
	"io"
	"sync"
)

// InMemoryTransport is one end of a connected pair, used by tests.
type InMemoryTransport struct {
	incoming <-chan []byte
	outgoing chan<- []byte

	done     chan struct{}
	peerDone <-chan struct{}
	once     sync.Once
}

// InMemoryTransportPair holds both ends of an in-memory connection.
type InMemoryTransportPair struct {
	ClientTransport *InMemoryTransport
	ServerTransport *InMemoryTransport
}

// NewInMemoryTransportPair returns a connected client/server pair.
func NewInMemoryTransportPair() *InMemoryTransportPair {
	clientToServer := make(chan []byte, 100)
	serverToClient := make(chan []byte, 100)
	clientDone := make(chan struct{})
	serverDone := make(chan struct{})

	return &InMemoryTransportPair{
		ClientTransport: &InMemoryTransport{
			incoming: serverToClient,
			outgoing: clientToServer,
			done:     clientDone,
			peerDone: serverDone,
		},
		ServerTransport: &InMemoryTransport{
			incoming: clientToServer,
			outgoing: serverToClient,
			done:     serverDone,
			peerDone: clientDone,
		},
	}
}

// ReadMessage implements Transport. Frames already sent by the peer are
// delivered before its close is reported.
func (t *InMemoryTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	select {
	case msg := <-t.incoming:
		return msg, nil
	default:
	}
	select {
	case msg := <-t.incoming:
		return msg, nil
	case <-t.done:
		return nil, NewClosedError("read", nil)
	case <-t.peerDone:
		select {
		case msg := <-t.incoming:
			return msg, nil
		default:
			return nil, NewClosedError("read", io.EOF)
		}
	case <-ctx.Done():
		return nil, NewCanceledError("read", ctx.Err())
	}
}

// WriteMessage implements Transport.
func (t *InMemoryTransport) WriteMessage(ctx context.Context, message []byte) error {
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message)
	}
	select {
	case <-t.done:
		return NewClosedError("write", nil)
	default:
	}
	msg := append([]byte(nil), message...)
	select {
	case t.outgoing <- msg:
		return nil
	case <-t.done:
		return NewClosedError("write", nil)
	case <-t.peerDone:
		return NewClosedError("write", io.EOF)
	case <-ctx.Done():
		return NewCanceledError("write", ctx.Err())
	}
}

// Close implements Transport. It is idempotent.
func (t *InMemoryTransport) Close() error {
	t.once.Do(func() { close(t.done) })
	return nil
}

// Close closes both ends.
func (p *InMemoryTransportPair) Close() {
	_ = p.ClientTransport.Close()
	_ = p.ServerTransport.Close()
}
