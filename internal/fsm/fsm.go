// Package fsm provides a generic finite state machine built on looplab/fsm.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dkoosis/mcpforge/internal/logging"
	lfsm "github.com/looplab/fsm"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction runs after the machine has entered the destination state.
type TransitionAction func(ctx context.Context, event Event, data interface{}) error

// GuardCondition decides whether an event may fire. Returning false cancels it.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition defines a transition rule between states.
type Transition struct {
	From      []State          // Source states for this transition.
	To        State            // The destination state.
	Event     Event            // The event triggering the transition.
	Action    TransitionAction // Optional action run after entering To.
	Condition GuardCondition   // Optional guard checked before the event fires.
}

// FSM is the state machine contract used across the module.
type FSM interface {
	// AddTransition stores a transition definition. Call Build() after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build finalizes the configuration and creates the underlying machine.
	Build() error
	// CurrentState returns the current state, or "" before Build.
	CurrentState() State
	// CanTransition reports whether event is defined for the current state.
	CanTransition(event Event) bool
	// Transition fires event.
	Transition(ctx context.Context, event Event, data interface{}) error
	// SetState forces the machine into state without running callbacks.
	SetState(state State) error
	// Reset returns the machine to its initial state.
	Reset() error
}

// ErrNotBuilt is returned by operations on a machine whose Build has not succeeded.
var ErrNotBuilt = errors.New("fsm: machine not built")

type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM
	buildErr     error
	mu           sync.RWMutex
}

// NewFSM creates a new FSM builder with the given initial state.
func NewFSM(initialState State, logger logging.Logger) FSM {
	return &loopFSM{
		initialState: initialState,
		logger:       logging.OrNoop(logger).WithField("component", "fsm"),
	}
}

// AddTransition stores a transition definition to be used during Build().
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.fsm != nil:
		l.recordBuildErr(errors.New("cannot AddTransition after Build"))
	case len(t.From) == 0:
		l.recordBuildErr(errors.Newf("transition for event '%s' has no source states", t.Event))
	case t.Event == "" || t.To == "":
		l.recordBuildErr(errors.New("transition requires an event and a destination state"))
	default:
		l.transitions = append(l.transitions, t)
	}
	return l
}

func (l *loopFSM) recordBuildErr(err error) {
	l.logger.Error("Invalid FSM transition definition.", "error", err)
	if l.buildErr == nil {
		l.buildErr = err
	}
}

// Build finalizes the FSM configuration and creates the looplab/fsm instance.
// One event may only lead to one destination.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.buildErr != nil {
		return l.buildErr
	}
	if l.fsm != nil {
		return nil
	}

	order := make([]string, 0, len(l.transitions))
	descs := make(map[string]*lfsm.EventDesc)
	guards := make(map[Event][]Transition)
	callbacks := make(lfsm.Callbacks)

	for _, t := range l.transitions {
		name := string(t.Event)
		desc, ok := descs[name]
		if !ok {
			desc = &lfsm.EventDesc{Name: name, Dst: string(t.To)}
			descs[name] = desc
			order = append(order, name)
		} else if desc.Dst != string(t.To) {
			l.buildErr = errors.Newf("conflicting destinations ('%s' and '%s') for event '%s'", desc.Dst, t.To, name)
			return l.buildErr
		}
		for _, src := range t.From {
			if !containsString(desc.Src, string(src)) {
				desc.Src = append(desc.Src, string(src))
			}
		}
		if t.Condition != nil || t.Action != nil {
			guards[t.Event] = append(guards[t.Event], t)
		}
	}

	for event, ts := range guards {
		ts := ts
		callbacks["before_"+string(event)] = func(ctx context.Context, e *lfsm.Event) {
			for _, t := range ts {
				if t.Condition == nil || !t.hasSource(e.Src) {
					continue
				}
				if !t.Condition(ctx, t.Event, eventData(e)) {
					e.Cancel(errors.Newf("guard for event '%s' from state '%s' rejected the transition", t.Event, e.Src))
					return
				}
			}
		}
		callbacks["after_"+string(event)] = func(ctx context.Context, e *lfsm.Event) {
			for _, t := range ts {
				if t.Action == nil || !t.hasSource(e.Src) {
					continue
				}
				if err := t.Action(ctx, t.Event, eventData(e)); err != nil {
					l.logger.Error("Transition action failed.", "event", t.Event, "to", t.To, "error", err)
				}
			}
		}
	}

	events := make([]lfsm.EventDesc, 0, len(order))
	for _, name := range order {
		events = append(events, *descs[name])
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), events, callbacks)
	l.logger.Debug("FSM built.", "initialState", l.initialState, "events", len(events))
	return nil
}

func (t Transition) hasSource(src string) bool {
	for _, s := range t.From {
		if string(s) == src {
			return true
		}
	}
	return false
}

func eventData(e *lfsm.Event) interface{} {
	if len(e.Args) > 0 {
		return e.Args[0]
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (l *loopFSM) machine() (*lfsm.FSM, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		if l.buildErr != nil {
			return nil, l.buildErr
		}
		return nil, ErrNotBuilt
	}
	return l.fsm, nil
}

// CurrentState returns the current state of the FSM.
func (l *loopFSM) CurrentState() State {
	m, err := l.machine()
	if err != nil {
		return ""
	}
	return State(m.Current())
}

// CanTransition checks if the event can fire from the current state.
func (l *loopFSM) CanTransition(event Event) bool {
	m, err := l.machine()
	if err != nil {
		return false
	}
	return m.Can(string(event))
}

// Transition triggers a state transition based on the event.
func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	m, err := l.machine()
	if err != nil {
		return err
	}

	from := m.Current()
	var args []interface{}
	if data != nil {
		args = append(args, data)
	}
	if err := m.Event(ctx, string(event), args...); err != nil {
		var noTransition lfsm.NoTransitionError
		if errors.As(err, &noTransition) {
			// Self-transitions report NoTransitionError; the event was still accepted.
			return nil
		}
		l.logger.Debug("FSM transition failed.", "event", event, "from", from, "error", err)
		return errors.Wrapf(err, "transition '%s' from state '%s'", event, from)
	}
	l.logger.Debug("FSM transition.", "event", event, "from", from, "to", m.Current())
	return nil
}

// SetState forces the machine into state.
func (l *loopFSM) SetState(state State) error {
	m, err := l.machine()
	if err != nil {
		return err
	}
	l.logger.Warn("Manually setting FSM state.", "target_state", state)
	m.SetState(string(state))
	return nil
}

// Reset sets the state back to the initial state.
func (l *loopFSM) Reset() error {
	return l.SetState(l.initialState)
}
