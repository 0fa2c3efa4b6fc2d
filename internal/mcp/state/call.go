// file: internal/mcp/state/call.go
package state

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/fsm"
	"github.com/dkoosis/mcpforge/internal/logging"
)

// Per-call states. Each tool call walks received -> validated|rejected ->
// dispatched -> responded; rejected calls skip dispatch.
const (
	CallReceived   fsm.State = "received"
	CallValidated  fsm.State = "validated"
	CallRejected   fsm.State = "rejected"
	CallDispatched fsm.State = "dispatched"
	CallResponded  fsm.State = "responded"
)

// Per-call events.
const (
	EventAccept   fsm.Event = "accept"
	EventReject   fsm.Event = "reject"
	EventDispatch fsm.Event = "dispatch"
	EventRespond  fsm.Event = "respond"
)

// CallMachine records the progress of a single tool call. It is not shared
// between calls.
type CallMachine struct {
	fsm.FSM
}

// NewCallMachine builds a machine in CallReceived.
func NewCallMachine(logger logging.Logger) (*CallMachine, error) {
	m := fsm.NewFSM(CallReceived, logger).
		AddTransition(fsm.Transition{From: []fsm.State{CallReceived}, Event: EventAccept, To: CallValidated}).
		AddTransition(fsm.Transition{From: []fsm.State{CallReceived}, Event: EventReject, To: CallRejected}).
		AddTransition(fsm.Transition{From: []fsm.State{CallValidated}, Event: EventDispatch, To: CallDispatched}).
		AddTransition(fsm.Transition{From: []fsm.State{CallRejected, CallDispatched}, Event: EventRespond, To: CallResponded})
	if err := m.Build(); err != nil {
		return nil, errors.Wrap(err, "failed to build call state machine")
	}
	return &CallMachine{FSM: m}, nil
}

// Step fires event. Cancellation of ctx does not stop the step: the call
// record must reach CallResponded whatever happens to the caller.
func (c *CallMachine) Step(ctx context.Context, event fsm.Event) error {
	if err := c.Transition(context.WithoutCancel(ctx), event, nil); err != nil {
		return errors.Wrapf(err, "call state machine: %s", event)
	}
	return nil
}

// Done reports whether the call reached CallResponded.
func (c *CallMachine) Done() bool {
	return c.CurrentState() == CallResponded
}
