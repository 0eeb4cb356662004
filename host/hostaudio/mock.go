package hostaudio

import (
	"fmt"
	"sync"
	"time"
)

// MockBackend implements Backend without touching sound hardware.
// Written samples are captured for inspection, read samples come from
// a configurable generator, and every operation can be made to fail.
type MockBackend struct {
	mu          sync.Mutex
	initialized bool
	streams     []*MockStream

	initError         error
	terminateError    error
	createStreamError error

	simulateRealTiming bool

	recorded [][]float32
	played   [][]float32
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// SetInitError makes Initialize fail with err.
func (m *MockBackend) SetInitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initError = err
}

// SetTerminateError makes Terminate fail with err.
func (m *MockBackend) SetTerminateError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateError = err
}

// SetCreateStreamError makes stream creation fail with err.
func (m *MockBackend) SetCreateStreamError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createStreamError = err
}

// SetSimulateRealTiming makes Read and Write sleep for the buffer's
// real duration, like hardware would.
func (m *MockBackend) SetSimulateRealTiming(on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.simulateRealTiming = on
}

// LastStream returns the most recently created stream, for injecting
// errors into streams opened behind Player or Recorder.
func (m *MockBackend) LastStream() *MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streams) == 0 {
		return nil
	}
	return m.streams[len(m.streams)-1]
}

// Recorded returns every buffer handed out by input stream Reads.
func (m *MockBackend) Recorded() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float32, len(m.recorded))
	copy(out, m.recorded)
	return out
}

// Played returns every buffer written to output streams.
func (m *MockBackend) Played() [][]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]float32, len(m.played))
	copy(out, m.played)
	return out
}

func (m *MockBackend) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.initError != nil {
		return m.initError
	}
	m.initialized = true
	return nil
}

func (m *MockBackend) Terminate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.terminateError != nil {
		return m.terminateError
	}
	m.initialized = false
	return nil
}

func (m *MockBackend) CreateInputStream(sampleRate float64, channels, bufferSize int) (Stream, error) {
	return m.createStream(sampleRate, channels, bufferSize, true)
}

func (m *MockBackend) CreateOutputStream(sampleRate float64, channels, bufferSize int) (Stream, error) {
	return m.createStream(sampleRate, channels, bufferSize, false)
}

func (m *MockBackend) createStream(sampleRate float64, channels, bufferSize int, isInput bool) (Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return nil, fmt.Errorf("mock backend not initialized")
	}
	if m.createStreamError != nil {
		return nil, m.createStreamError
	}
	s := &MockStream{
		backend:    m,
		sampleRate: sampleRate,
		bufferSize: bufferSize * channels,
		isInput:    isInput,
	}
	m.streams = append(m.streams, s)
	return s, nil
}

// MockStream is the Stream half of MockBackend.
type MockStream struct {
	mu         sync.Mutex
	backend    *MockBackend
	sampleRate float64
	bufferSize int
	isInput    bool
	open       bool
	active     bool

	startError error
	stopError  error
	readError  error
	writeError error

	// generator fills capture buffers; nil reads silence.
	generator func([]float32)
}

// SetStartError makes Start fail with err.
func (s *MockStream) SetStartError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startError = err
}

// SetStopError makes Stop fail with err.
func (s *MockStream) SetStopError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopError = err
}

// SetReadError makes Read fail with err.
func (s *MockStream) SetReadError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readError = err
}

// SetWriteError makes Write fail with err.
func (s *MockStream) SetWriteError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeError = err
}

// SetGenerator installs the function that fills capture buffers.
func (s *MockStream) SetGenerator(fn func([]float32)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generator = fn
}

func (s *MockStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startError != nil {
		return s.startError
	}
	s.open = true
	s.active = true
	return nil
}

func (s *MockStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopError != nil {
		return s.stopError
	}
	s.active = false
	return nil
}

func (s *MockStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.active = false
	return nil
}

func (s *MockStream) Read(data []float32) error {
	s.mu.Lock()
	if s.readError != nil {
		err := s.readError
		s.mu.Unlock()
		return err
	}
	if !s.open {
		s.mu.Unlock()
		return fmt.Errorf("stream not open")
	}
	if !s.isInput {
		s.mu.Unlock()
		return fmt.Errorf("cannot read from output stream")
	}
	if s.generator != nil {
		s.generator(data)
	} else {
		for i := range data {
			data[i] = 0
		}
	}
	timing := s.backend
	rate := s.sampleRate
	s.mu.Unlock()

	cp := make([]float32, len(data))
	copy(cp, data)
	timing.mu.Lock()
	timing.recorded = append(timing.recorded, cp)
	realTiming := timing.simulateRealTiming
	timing.mu.Unlock()

	if realTiming {
		time.Sleep(time.Duration(float64(len(data)) / rate * float64(time.Second)))
	}
	return nil
}

func (s *MockStream) Write(data []float32) error {
	s.mu.Lock()
	if s.writeError != nil {
		err := s.writeError
		s.mu.Unlock()
		return err
	}
	if !s.open {
		s.mu.Unlock()
		return fmt.Errorf("stream not open")
	}
	if s.isInput {
		s.mu.Unlock()
		return fmt.Errorf("cannot write to input stream")
	}
	rate := s.sampleRate
	backend := s.backend
	s.mu.Unlock()

	cp := make([]float32, len(data))
	copy(cp, data)
	backend.mu.Lock()
	backend.played = append(backend.played, cp)
	realTiming := backend.simulateRealTiming
	backend.mu.Unlock()

	if realTiming {
		time.Sleep(time.Duration(float64(len(data)) / rate * float64(time.Second)))
	}
	return nil
}

func (s *MockStream) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}
