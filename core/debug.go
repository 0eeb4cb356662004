package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures a notable runtime event for post-mortem analysis
type Event struct {
	Type  uint8  // Event type code
	A     uint8  // Context-dependent value
	B     uint8  // Context-dependent value
	Clock uint32 // System clock at event (ms)
}

// Event type codes
const (
	EvtTransition    = 1 // Interaction state changed (A=from, B=to)
	EvtProtocolFault = 2 // Frame-level fault (A=cmd)
	EvtCommand       = 3 // Inbound command dispatched (A=cmd, B=payload len low byte)
	EvtErrorReport   = 4 // 0xFF error frame emitted (A=code, B=component)
	EvtAudio         = 5 // Audio state changed (A=new state)
	EvtBatteryLow    = 6 // Battery crossed low threshold (A=percent)
)

const eventRingSize = 32 // Keep last 32 events for post-mortem

// DebugLog is a non-blocking event recorder. Record is cheap enough to
// call from anywhere in the control loop; the ring is only formatted
// when Dump is called. A nil writer silences all output but the ring
// still captures.
type DebugLog struct {
	writer  DebugWriter
	enabled bool

	ring [eventRingSize]Event
	head uint8
}

func NewDebugLog(w DebugWriter) *DebugLog {
	return &DebugLog{writer: w}
}

// SetWriter redirects debug output. Platforms point this at UART, USB
// serial, stdout, whatever they have.
func (d *DebugLog) SetWriter(w DebugWriter) {
	d.writer = w
}

// SetEnabled controls whether Println produces output. Ring capture is
// unaffected.
func (d *DebugLog) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Println writes a message through the platform writer when enabled.
func (d *DebugLog) Println(msg string) {
	if d.enabled && d.writer != nil {
		d.writer(msg)
	}
}

// Record captures an event in the ring buffer. Always non-blocking.
func (d *DebugLog) Record(typ, a, b uint8, clock uint32) {
	idx := d.head
	d.ring[idx] = Event{Type: typ, A: a, B: b, Clock: clock}
	d.head = (idx + 1) % eventRingSize
}

// Dump outputs the event ring from oldest to newest. Call it on fault
// or from a host-triggered diagnostic, not from the hot loop.
func (d *DebugLog) Dump() {
	if d.writer == nil {
		return
	}

	d.writer("[EVT] === Event Ring Dump ===")

	start := d.head
	for i := uint8(0); i < eventRingSize; i++ {
		idx := (start + i) % eventRingSize
		evt := &d.ring[idx]
		if evt.Type == 0 {
			continue // Empty slot
		}

		var name string
		switch evt.Type {
		case EvtTransition:
			name = "STATE"
		case EvtProtocolFault:
			name = "FAULT"
		case EvtCommand:
			name = "CMD"
		case EvtErrorReport:
			name = "ERR_REPORT"
		case EvtAudio:
			name = "AUDIO"
		case EvtBatteryLow:
			name = "BATTERY"
		default:
			name = "UNKNOWN"
		}

		d.writer("[EVT] " + name +
			" a=" + itoa(int(evt.A)) +
			" b=" + itoa(int(evt.B)) +
			" clock=" + utoa(evt.Clock))
	}
	d.writer("[EVT] === End Dump ===")
}

// Clear resets the event ring.
func (d *DebugLog) Clear() {
	for i := range d.ring {
		d.ring[i] = Event{}
	}
	d.head = 0
}

// itoa converts an integer to a string without using fmt package.
// Keeps string formatting cheap on embedded targets.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	negative := n < 0
	if negative {
		n = -n
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}
	if negative {
		digits++
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}
	if negative {
		buf[0] = '-'
	}

	return string(buf)
}

// utoa converts an unsigned integer to a string
func utoa(n uint32) string {
	if n == 0 {
		return "0"
	}

	temp := n
	digits := 0
	for temp > 0 {
		digits++
		temp /= 10
	}

	buf := make([]byte, digits)
	pos := digits - 1
	for n > 0 {
		buf[pos] = byte('0' + n%10)
		n /= 10
		pos--
	}

	return string(buf)
}
