package conn

import (
	"bytes"
	"sync"

	"dashan/protocol"
)

// MockConnection is an in-memory Connection that plays the robot's
// side of the link for tests. Every well-formed frame the host writes
// is recorded; responders keyed by command byte answer synchronously,
// and unsolicited pushes can be queued at any time.
type MockConnection struct {
	mu     sync.Mutex
	cond   *sync.Cond
	toHost bytes.Buffer // robot -> host bytes awaiting Read
	closed bool

	eng        *protocol.Engine
	responders map[uint8]func(data []byte) []protocol.Frame
	written    []protocol.Frame // every frame the host sent, in order
	WriteErr   error
}

// NewMockConnection returns a connection with no responders: frames
// written to it are recorded and otherwise ignored.
func NewMockConnection() *MockConnection {
	m := &MockConnection{
		eng:        protocol.NewEngine(),
		responders: make(map[uint8]func(data []byte) []protocol.Frame),
	}
	m.cond = sync.NewCond(&m.mu)

	// One recording handler per command id; writes run under the
	// connection lock so responders never race with Read.
	for c := 0; c < 256; c++ {
		cmd := uint8(c)
		m.eng.Register(cmd, func(data []byte) error {
			d := make([]byte, len(data))
			copy(d, data)
			m.written = append(m.written, protocol.Frame{Cmd: cmd, Data: d})
			if fn := m.responders[cmd]; fn != nil {
				for _, f := range fn(d) {
					m.toHost.Write(protocol.EncodeFrame(f))
				}
				m.cond.Broadcast()
			}
			return nil
		})
	}
	return m
}

// Respond scripts the reply for one command byte. The responder runs
// on the writer's goroutine; returned frames become readable before
// Write returns.
func (m *MockConnection) Respond(cmd uint8, fn func(data []byte) []protocol.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responders[cmd] = fn
}

// Push queues an unsolicited robot-to-host frame.
func (m *MockConnection) Push(f protocol.Frame) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toHost.Write(protocol.EncodeFrame(f))
	m.cond.Broadcast()
}

// PushRaw queues raw bytes, for exercising noise and corruption.
func (m *MockConnection) PushRaw(b []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toHost.Write(b)
	m.cond.Broadcast()
}

// Written returns every frame the host has sent so far.
func (m *MockConnection) Written() []protocol.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]protocol.Frame, len(m.written))
	copy(out, m.written)
	return out
}

// WrittenCount returns how many frames the host has sent.
func (m *MockConnection) WrittenCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.written)
}

// Read blocks until robot-to-host bytes are available or the
// connection closes.
func (m *MockConnection) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.toHost.Len() == 0 {
		if m.closed {
			return 0, ErrConnectionClosed
		}
		m.cond.Wait()
	}
	return m.toHost.Read(p)
}

// Write feeds host bytes through the scripted robot. Partial frames
// are held across calls like a real byte stream.
func (m *MockConnection) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrConnectionClosed
	}
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	m.eng.Feed(p)
	return len(p), nil
}

func (m *MockConnection) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.cond.Broadcast()
	return nil
}
