package core

import "dashan/protocol"

// State is the robot's interaction state.
type State uint8

const (
	StateIdle State = iota
	StateSleep
	StateWake
	StateListen
	StateThink
	StateTalk
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSleep:
		return "sleep"
	case StateWake:
		return "wake"
	case StateListen:
		return "listen"
	case StateThink:
		return "think"
	case StateTalk:
		return "talk"
	}
	return "unknown"
}

// StateByName resolves a lowercase state name, for scripts and host
// tooling.
func StateByName(name string) (State, bool) {
	for s := StateIdle; s <= StateTalk; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// wakeListenDelay is how long the robot lingers in Wake before it
// starts listening on its own, in ms.
const wakeListenDelay = 2000

// autoRule is one row of the autonomous-transition table: leave for
// next once the state has been held longer than after.
type autoRule struct {
	after uint32 // ms, zero means the state only leaves on command
	next  State
}

// autoRules maps each state to its optional timed exit. Only Wake has
// one today; a new timed behavior is a new row, not new branching.
var autoRules = [StateTalk + 1]autoRule{
	StateWake: {after: wakeListenDelay, next: StateListen},
}

// Machine drives the interaction state. Every real transition updates
// the expression, stamps the entry time and pushes a status frame, in
// that order, before the control loop moves on. Until Start is called
// the machine holds its boot state and Tick does nothing.
type Machine struct {
	clock  *Clock
	matrix *Matrix
	motion *MotionController
	eng    *protocol.Engine
	debug  *DebugLog

	current    State
	previous   State
	enteredAt  uint32
	battery    uint8
	expression uint8
	running    bool
}

// NewMachine returns a machine in the Sleep state with a full battery
// reading. Nothing is drawn or emitted until Start.
func NewMachine(clock *Clock, matrix *Matrix, motion *MotionController, eng *protocol.Engine, debug *DebugLog) *Machine {
	return &Machine{
		clock:      clock,
		matrix:     matrix,
		motion:     motion,
		eng:        eng,
		debug:      debug,
		current:    StateSleep,
		previous:   StateSleep,
		battery:    100,
		expression: ExprSleep,
	}
}

// Start draws the current face and enables autonomous advancement.
func (m *Machine) Start() error {
	m.running = true
	m.enteredAt = m.clock.Now()
	return m.matrix.SetExpression(m.expression)
}

func (m *Machine) Running() bool     { return m.running }
func (m *Machine) Current() State    { return m.current }
func (m *Machine) Previous() State   { return m.previous }
func (m *Machine) EnteredAt() uint32 { return m.enteredAt }
func (m *Machine) Battery() uint8    { return m.battery }
func (m *Machine) Expression() uint8 { return m.expression }

// SetBattery updates the reported battery percentage.
func (m *Machine) SetBattery(percent uint8) {
	m.battery = percent
}

// canonicalExpression maps a state to its face. Idle has none: it
// keeps whatever face is showing.
func canonicalExpression(s State) (uint8, bool) {
	switch s {
	case StateSleep:
		return ExprSleep, true
	case StateWake:
		return ExprWake, true
	case StateListen:
		return ExprListen, true
	case StateThink:
		return ExprThink, true
	case StateTalk:
		return ExprTalk, true
	}
	return 0, false
}

// Transition moves to the given state. Same-state transitions are
// no-ops and leave the entry timestamp alone. Otherwise the canonical
// expression is drawn and a status frame is queued under CmdSetState.
func (m *Machine) Transition(next State) error {
	if next == m.current {
		return nil
	}
	if m.debug != nil {
		m.debug.Record(EvtTransition, uint8(m.current), uint8(next), m.clock.Now())
	}
	m.previous = m.current
	m.current = next
	m.enteredAt = m.clock.Now()

	var firstErr error
	if expr, ok := canonicalExpression(next); ok {
		m.expression = expr
		firstErr = m.matrix.SetExpression(expr)
	}

	if err := m.emitStatus(protocol.CmdSetState); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// OverrideExpression shows a face out of band without touching the
// state. The next real transition replaces it with the canonical one.
func (m *Machine) OverrideExpression(id uint8) error {
	m.expression = id
	return m.matrix.SetExpression(id)
}

// Tick applies the autonomous advancement table. The only rule defined
// is Wake: after lingering past the delay the robot starts listening.
func (m *Machine) Tick() {
	if !m.running {
		return
	}
	rule := autoRules[m.current]
	if rule.after > 0 && m.clock.Now()-m.enteredAt > rule.after {
		_ = m.Transition(rule.next)
	}
}

// StatusPayload builds the 7-byte status report: state, battery,
// expression, then both servo angles.
func (m *Machine) StatusPayload() []byte {
	h, v := m.motion.Angles()
	out := make([]byte, 0, 7)
	out = append(out, uint8(m.current), m.battery, m.expression)
	out = protocol.AppendU16(out, h)
	out = protocol.AppendU16(out, v)
	return out
}

// EmitStatus queues a status report under CmdGetStatus. Used by the
// get-status command; transitions emit under CmdSetState instead.
func (m *Machine) EmitStatus() error {
	return m.emitStatus(protocol.CmdGetStatus)
}

func (m *Machine) emitStatus(cmd uint8) error {
	return m.eng.Enqueue(protocol.Frame{Cmd: cmd, Data: m.StatusPayload()})
}
