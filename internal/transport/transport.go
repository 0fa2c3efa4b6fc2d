// Package transport moves newline-delimited JSON frames between the server
// and its client.
// file: internal/transport/transport.go
package transport

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"sync"

	"github.com/dkoosis/mcpforge/internal/logging"
)

// MaxMessageSize is the largest frame accepted in either direction.
const MaxMessageSize = 1024 * 1024 // 1 MiB.

// Transport reads and writes whole frames. ReadMessage is called from a
// single goroutine; WriteMessage may be called concurrently.
type Transport interface {
	// ReadMessage returns the next frame without its trailing newline.
	// Frames are not parsed.
	ReadMessage(ctx context.Context) ([]byte, error)
	// WriteMessage sends one frame. message must not contain a newline.
	WriteMessage(ctx context.Context, message []byte) error
	// Close releases the transport. Blocked reads return a closed error.
	Close() error
}

var (
	_ Transport = (*NDJSONTransport)(nil)
	_ Transport = (*InMemoryTransport)(nil)
)

type readResult struct {
	data []byte
	err  error
}

// NDJSONTransport implements Transport over a byte stream.
type NDJSONTransport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer
	logger logging.Logger

	writeLock sync.Mutex
	closeLock sync.RWMutex
	closed    bool

	// pending holds a read abandoned by a canceled context, so that the next
	// call collects its result instead of racing it on the reader.
	pending chan readResult
}

// NewNDJSONTransport creates a transport reading from reader and writing to
// writer. closer, if not nil, is closed by Close.
func NewNDJSONTransport(reader io.Reader, writer io.Writer, closer io.Closer, logger logging.Logger) *NDJSONTransport {
	return &NDJSONTransport{
		reader: bufio.NewReader(reader),
		writer: writer,
		closer: closer,
		logger: logging.OrNoop(logger).WithField("component", "ndjson_transport"),
	}
}

// NewStdioTransport creates a transport over the process's stdin and stdout.
func NewStdioTransport(logger logging.Logger) *NDJSONTransport {
	return NewNDJSONTransport(os.Stdin, os.Stdout, nil, logger)
}

func (t *NDJSONTransport) isClosed() bool {
	t.closeLock.RLock()
	defer t.closeLock.RUnlock()
	return t.closed
}

// ReadMessage implements Transport. Empty lines are skipped. An oversized
// frame is consumed up to its newline and reported as a size error.
func (t *NDJSONTransport) ReadMessage(ctx context.Context) ([]byte, error) {
	if t.isClosed() {
		return nil, NewClosedError("read", nil)
	}

	ch := t.pending
	t.pending = nil
	if ch == nil {
		ch = make(chan readResult, 1)
		go func() { ch <- t.readFrame() }()
	}

	select {
	case <-ctx.Done():
		t.pending = ch
		return nil, NewCanceledError("read", ctx.Err())
	case res := <-ch:
		if res.err == nil {
			t.logger.Debug("Received frame.", "size", len(res.data))
		}
		return res.data, res.err
	}
}

func (t *NDJSONTransport) readFrame() readResult {
	for {
		var buf bytes.Buffer
		oversized := false
		size := 0
		for {
			chunk, isPrefix, err := t.reader.ReadLine()
			if err != nil {
				if err == io.EOF {
					return readResult{err: NewClosedError("read", io.EOF)}
				}
				return readResult{err: NewError("failed to read message line", err)}
			}
			size += len(chunk)
			if !oversized {
				if size > MaxMessageSize {
					oversized = true
				} else {
					buf.Write(chunk)
				}
			}
			if !isPrefix {
				break
			}
		}
		if oversized {
			return readResult{err: NewMessageSizeError(size, MaxMessageSize, buf.Bytes())}
		}
		line := bytes.TrimSpace(buf.Bytes())
		if len(line) == 0 {
			continue
		}
		return readResult{data: append([]byte(nil), line...)}
	}
}

// WriteMessage implements Transport. Writes are serialized so frames never
// interleave.
func (t *NDJSONTransport) WriteMessage(ctx context.Context, message []byte) error {
	if t.isClosed() {
		return NewClosedError("write", nil)
	}
	if len(message) > MaxMessageSize {
		return NewMessageSizeError(len(message), MaxMessageSize, message)
	}
	if err := ctx.Err(); err != nil {
		return NewCanceledError("write", err)
	}

	buf := make([]byte, len(message)+1)
	copy(buf, message)
	buf[len(message)] = '\n'

	t.writeLock.Lock()
	defer t.writeLock.Unlock()
	n, err := t.writer.Write(buf)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	if err != nil {
		t.logger.Error("Failed to write frame.", "error", err)
		return NewError("failed to write message", err)
	}
	t.logger.Debug("Wrote frame.", "size", len(message))
	return nil
}

// Close implements Transport.
func (t *NDJSONTransport) Close() error {
	t.closeLock.Lock()
	defer t.closeLock.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.logger.Info("Closing NDJSON transport.")
	if t.closer != nil {
		if err := t.closer.Close(); err != nil {
			return NewError("failed to close underlying stream", err)
		}
	}
	return nil
}
