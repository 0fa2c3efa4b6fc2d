// file: internal/transport/transport_errors.go
package transport

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies transport errors.
type ErrorKind int

const (
	// ErrorKindGeneric is an I/O failure of the underlying stream.
	ErrorKindGeneric ErrorKind = iota
	// ErrorKindMessageSize is a frame over MaxMessageSize. The frame has been
	// discarded and the stream is still usable.
	ErrorKindMessageSize
	// ErrorKindClosed means the transport or its peer has closed.
	ErrorKindClosed
	// ErrorKindCanceled means the context ended before the operation did.
	ErrorKindCanceled
)

// Error is returned by every Transport operation.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error

	// Size and MaxSize are set for ErrorKindMessageSize.
	Size    int
	MaxSize int
	// Preview holds the first bytes of an offending frame.
	Preview string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport: %s: %v", e.Message, e.Cause)
	}
	return "transport: " + e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a generic transport error.
func NewError(message string, cause error) *Error {
	e := &Error{Kind: ErrorKindGeneric, Message: message}
	if cause != nil {
		e.Cause = errors.WithStack(cause)
	}
	return e
}

// NewMessageSizeError reports an oversized frame.
func NewMessageSizeError(size, maxSize int, fragment []byte) *Error {
	return &Error{
		Kind:    ErrorKindMessageSize,
		Message: fmt.Sprintf("message size %d exceeds maximum allowed size %d", size, maxSize),
		Size:    size,
		MaxSize: maxSize,
		Preview: preview(fragment),
	}
}

// NewClosedError reports an operation on a closed transport. A peer that
// hung up is reported with io.EOF as the cause.
func NewClosedError(operation string, cause error) *Error {
	return &Error{
		Kind:    ErrorKindClosed,
		Message: fmt.Sprintf("cannot %s: transport closed", operation),
		Cause:   cause,
	}
}

// NewCanceledError reports a context that ended during operation.
func NewCanceledError(operation string, cause error) *Error {
	return &Error{
		Kind:    ErrorKindCanceled,
		Message: operation + " canceled",
		Cause:   cause,
	}
}

// KindOf returns the transport kind of err, or ErrorKindGeneric when err
// carries no *Error.
func KindOf(err error) ErrorKind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ErrorKindGeneric
}

// IsClosed reports whether err means the stream has ended.
func IsClosed(err error) bool {
	return KindOf(err) == ErrorKindClosed || errors.Is(err, io.EOF)
}

// IsMessageSize reports whether err is an oversized frame.
func IsMessageSize(err error) bool {
	return KindOf(err) == ErrorKindMessageSize
}

func preview(b []byte) string {
	const n = 100
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
