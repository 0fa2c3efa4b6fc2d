// Package state defines the session lifecycle machine and the per-call
// machine used by the dispatcher, both built on internal/fsm.
// file: internal/mcp/state/session.go
package state

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/fsm"
	"github.com/dkoosis/mcpforge/internal/logging"
)

// Session states.
const (
	StateUninitialized fsm.State = "uninitialized" // Connected, no initialize request yet.
	StateInitializing  fsm.State = "initializing"  // Initialize answered, awaiting notifications/initialized.
	StateInitialized   fsm.State = "initialized"   // Handshake complete.
	StateShuttingDown  fsm.State = "shuttingDown"  // Shutdown received, awaiting exit.
	StateShutdown      fsm.State = "shutdown"      // Exit received or transport failed.
)

// Session events, one per lifecycle method plus transport failure.
const (
	EventInitializeRequest fsm.Event = "rcvd_initialize_request"
	EventClientInitialized fsm.Event = "rcvd_client_initialized_notif"
	EventShutdownRequest   fsm.Event = "rcvd_shutdown_request"
	EventExitNotification  fsm.Event = "rcvd_exit_notification"
	EventTransportError    fsm.Event = "transport_error"
)

// IsTerminal reports whether no further transitions are expected from s.
func IsTerminal(s fsm.State) bool {
	return s == StateShutdown
}

// EventForMethod maps a lifecycle method to its event. Other methods map to "".
func EventForMethod(method string) fsm.Event {
	switch method {
	case "initialize":
		return EventInitializeRequest
	case "notifications/initialized":
		return EventClientInitialized
	case "shutdown":
		return EventShutdownRequest
	case "exit":
		return EventExitNotification
	}
	return ""
}

// SequenceError reports a method received in a state that does not allow it.
type SequenceError struct {
	Method string
	State  fsm.State
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("method '%s' not allowed in state '%s'", e.Method, e.State)
}

// SessionMachine tracks one client connection through the protocol lifecycle.
type SessionMachine struct {
	fsm.FSM
	logger logging.Logger
}

// NewSessionMachine builds the lifecycle machine in StateUninitialized.
func NewSessionMachine(logger logging.Logger) (*SessionMachine, error) {
	log := logging.OrNoop(logger).WithField("component", "session_state")

	m := fsm.NewFSM(StateUninitialized, log).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateUninitialized},
			Event: EventInitializeRequest,
			To:    StateInitializing,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateInitializing},
			Event: EventClientInitialized,
			To:    StateInitialized,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateInitialized},
			Event: EventShutdownRequest,
			To:    StateShuttingDown,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateInitialized, StateShuttingDown},
			Event: EventExitNotification,
			To:    StateShutdown,
		}).
		AddTransition(fsm.Transition{
			From:  []fsm.State{StateUninitialized, StateInitializing, StateInitialized, StateShuttingDown},
			Event: EventTransportError,
			To:    StateShutdown,
		})

	if err := m.Build(); err != nil {
		return nil, errors.Wrap(err, "failed to build session state machine")
	}
	return &SessionMachine{FSM: m, logger: log}, nil
}

// ValidateMethod checks whether method may be handled in the current state.
// Lifecycle methods must have a defined transition; ping is allowed until
// shutdown; every other method requires a completed handshake.
func (m *SessionMachine) ValidateMethod(method string) error {
	current := m.CurrentState()

	if event := EventForMethod(method); event != "" {
		if m.CanTransition(event) {
			return nil
		}
		m.logger.Warn("Out-of-sequence lifecycle method.", "method", method, "state", current)
		return &SequenceError{Method: method, State: current}
	}

	switch {
	case method == "ping" && !IsTerminal(current):
		return nil
	case current == StateInitialized:
		return nil
	}
	m.logger.Warn("Method received before initialization completed.", "method", method, "state", current)
	return &SequenceError{Method: method, State: current}
}

// Advance fires the lifecycle event for method, if it has one.
func (m *SessionMachine) Advance(ctx context.Context, method string) error {
	event := EventForMethod(method)
	if event == "" {
		return nil
	}
	return m.Transition(ctx, event, nil)
}
