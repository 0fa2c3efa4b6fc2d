// file: internal/jsonrpc/session.go
package jsonrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/fsm"
	"github.com/dkoosis/mcpforge/internal/logging"
	"github.com/dkoosis/mcpforge/internal/mcp/envelope"
	"github.com/dkoosis/mcpforge/internal/mcp/mcperrors"
	"github.com/dkoosis/mcpforge/internal/mcp/router"
	"github.com/dkoosis/mcpforge/internal/mcp/state"
	"github.com/dkoosis/mcpforge/internal/metrics"
	"github.com/dkoosis/mcpforge/internal/transport"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Session serves one client connection.
type Session struct {
	id        string
	transport transport.Transport
	router    router.Router
	machine   *state.SessionMachine
	metrics   *metrics.Collector
	logger    logging.Logger

	writeMu sync.Mutex
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Session) { s.logger = logging.OrNoop(l) }
}

// WithMetrics records per-method request counts.
func WithMetrics(c *metrics.Collector) Option {
	return func(s *Session) { s.metrics = c }
}

// NewSession creates a session over t routing through r.
func NewSession(t transport.Transport, r router.Router, opts ...Option) (*Session, error) {
	if t == nil || r == nil {
		return nil, errors.New("jsonrpc: transport and router are required")
	}
	s := &Session{
		id:        uuid.NewString(),
		transport: t,
		router:    r,
		logger:    logging.GetNoopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithField("component", "jsonrpc_session").WithField("session_id", s.id)

	machine, err := state.NewSessionMachine(s.logger)
	if err != nil {
		return nil, err
	}
	s.machine = machine
	return s, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() fsm.State {
	return s.machine.CurrentState()
}

// Serve reads frames until the client exits, the transport closes, or ctx
// ends. Lifecycle methods and notifications are handled in arrival order on
// the read loop; every other request runs on its own goroutine. Serve
// returns after all in-flight requests have been answered.
func (s *Session) Serve(ctx context.Context) error {
	s.logger.Info("Session started.")
	g, gctx := errgroup.WithContext(ctx)

	var readErr error
	for {
		frame, err := s.transport.ReadMessage(gctx)
		if err != nil {
			if transport.IsMessageSize(err) {
				s.logger.Warn("Oversized frame discarded.", "error", err)
				s.metrics.RecordRequest("invalid", false)
				s.send(gctx, unknownID, nil, &envelope.RPCError{
					Code:    mcperrors.CodeInvalidRequest,
					Message: "Message too large",
					Data:    map[string]interface{}{"limit": transport.MaxMessageSize},
				})
				continue
			}
			readErr = err
			break
		}
		if s.handleFrame(gctx, g, frame) {
			break
		}
	}

	waitErr := g.Wait()

	switch {
	case readErr == nil:
		s.logger.Info("Session ended by client exit.")
		return waitErr
	case transport.IsClosed(readErr):
		s.fail(ctx)
		s.logger.Info("Client closed the connection.")
		return waitErr
	case ctx.Err() != nil:
		s.fail(context.WithoutCancel(ctx))
		s.logger.Info("Session canceled.")
		return ctx.Err()
	default:
		s.fail(ctx)
		s.logger.Error("Transport failed.", "error", fmt.Sprintf("%+v", readErr))
		return errors.Wrap(readErr, "jsonrpc: read failed")
	}
}

// fail moves the lifecycle to shutdown after a transport problem.
func (s *Session) fail(ctx context.Context) {
	if state.IsTerminal(s.machine.CurrentState()) {
		return
	}
	if err := s.machine.Transition(ctx, state.EventTransportError, nil); err != nil {
		s.logger.Warn("Failed to record transport error.", "error", err)
	}
}

// handleFrame processes one frame and reports whether the session is over.
func (s *Session) handleFrame(ctx context.Context, g *errgroup.Group, frame []byte) bool {
	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		s.logger.Warn("Unparsable frame.", "error", err, "size", len(frame))
		s.metrics.RecordRequest("invalid", false)
		s.send(ctx, unknownID, nil, &envelope.RPCError{
			Code:    mcperrors.CodeParseError,
			Message: mcperrors.UserFacingMessage(mcperrors.CodeParseError),
		})
		return false
	}

	if msg.IsResponse() {
		s.logger.Debug("Ignoring response from client.", "id", string(msg.ID))
		return false
	}
	if msg.JSONRPC != Version || msg.Method == "" {
		s.metrics.RecordRequest("invalid", false)
		id := msg.ID
		if id == nil {
			id = unknownID
		}
		s.send(ctx, id, nil, &envelope.RPCError{
			Code:    mcperrors.CodeInvalidRequest,
			Message: mcperrors.UserFacingMessage(mcperrors.CodeInvalidRequest),
		})
		return false
	}

	notification := msg.IsNotification()
	log := s.logger.WithField("method", msg.Method)

	if !s.router.Has(msg.Method) {
		s.metrics.RecordRequest(msg.Method, false)
		if notification {
			log.Debug("Ignoring notification for unknown method.")
			return false
		}
		s.send(ctx, msg.ID, nil, router.MethodNotFound(msg.Method))
		return false
	}

	if err := s.machine.ValidateMethod(msg.Method); err != nil {
		s.metrics.RecordRequest(msg.Method, false)
		if notification {
			log.Warn("Dropping out-of-sequence notification.", "error", err)
			return false
		}
		s.send(ctx, msg.ID, nil, sequenceError(err))
		return false
	}

	if notification || state.EventForMethod(msg.Method) != "" {
		s.handle(ctx, log, &msg)
		return state.IsTerminal(s.machine.CurrentState())
	}

	g.Go(func() error {
		s.handle(ctx, log, &msg)
		return nil
	})
	return false
}

// handle routes one message and writes the response, if any.
func (s *Session) handle(ctx context.Context, log logging.Logger, msg *Message) {
	notification := msg.IsNotification()
	start := time.Now()

	result, err := s.router.Route(ctx, msg.Method, msg.Params, notification)
	if err == nil {
		if advErr := s.machine.Advance(ctx, msg.Method); advErr != nil {
			log.Warn("Lifecycle transition failed.", "error", advErr)
		}
	}
	s.metrics.RecordRequest(msg.Method, err == nil)
	log.Debug("Handled message.", "duration", time.Since(start), "success", err == nil)

	if notification {
		if err != nil {
			log.Warn("Notification handler failed.", "error", err)
		}
		return
	}
	if err != nil {
		s.send(ctx, msg.ID, nil, s.toRPCError(log, err))
		return
	}
	s.send(ctx, msg.ID, result, nil)
}

// toRPCError converts a route error to its wire form. Unclassified errors
// are logged with their stack and reported generically.
func (s *Session) toRPCError(log logging.Logger, err error) *envelope.RPCError {
	var rpcErr *envelope.RPCError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	if _, ok := mcperrors.AsFailure(err); !ok {
		log.Error("Unclassified handler error.", "error", fmt.Sprintf("%+v", err))
	}
	return envelope.FromError(err).Error
}

func sequenceError(err error) *envelope.RPCError {
	out := &envelope.RPCError{
		Code:    mcperrors.CodeRequestSequence,
		Message: err.Error(),
	}
	var seq *state.SequenceError
	if errors.As(err, &seq) {
		out.Data = map[string]interface{}{"method": seq.Method, "state": string(seq.State)}
	}
	return out
}

// send writes one response. Write failures are logged; the client is gone
// or the context ended, and there is nobody left to tell.
func (s *Session) send(ctx context.Context, id json.RawMessage, result interface{}, rpcErr *envelope.RPCError) {
	resp := Response{JSONRPC: Version, ID: id, Error: rpcErr}
	if rpcErr == nil {
		data, err := json.Marshal(result)
		if err != nil {
			s.logger.Error("Failed to marshal result.", "error", err)
			resp.Error = &envelope.RPCError{
				Code:    mcperrors.CodeInternalError,
				Message: mcperrors.UserFacingMessage(mcperrors.CodeInternalError),
			}
		} else {
			resp.Result = data
		}
	}
	frame, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("Failed to marshal response.", "error", err)
		return
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.transport.WriteMessage(ctx, frame); err != nil {
		s.logger.Warn("Failed to write response.", "error", err)
	}
}
