package core

import "image/color"

// Mock hardware for tests and the desktop demo. The mocks record what
// the firmware drives into them and play back scripted sensor inputs.
// Like the rest of core they are single-threaded.

// MockServo records every pulse write per channel.
type MockServo struct {
	Pulses  map[uint8][]uint16
	Current map[uint8]uint16
	Err     error
}

func NewMockServo() *MockServo {
	return &MockServo{
		Pulses:  make(map[uint8][]uint16),
		Current: make(map[uint8]uint16),
	}
}

func (m *MockServo) SetPulse(channel uint8, micros uint16) error {
	if m.Err != nil {
		return m.Err
	}
	m.Pulses[channel] = append(m.Pulses[channel], micros)
	m.Current[channel] = micros
	return nil
}

// MockStrip captures frames pushed to the LED bus.
type MockStrip struct {
	Last   []color.RGBA
	Writes int
	Err    error
}

func (m *MockStrip) WriteColors(buf []color.RGBA) error {
	if m.Err != nil {
		return m.Err
	}
	m.Last = append(m.Last[:0], buf...)
	m.Writes++
	return nil
}

// At returns the last pushed color at grid position x,y.
func (m *MockStrip) At(x, y int) color.RGBA {
	idx := x*MatrixSize + y
	if idx < 0 || idx >= len(m.Last) {
		return color.RGBA{}
	}
	return m.Last[idx]
}

// MockAudio scripts capture input and collects playback output.
type MockAudio struct {
	// Capture is consumed by ReadPCM, at most ReadChunk bytes per call
	// (zero means fill the caller's buffer).
	Capture   []byte
	ReadChunk int
	ReadErr   error

	// Played accumulates WritePCM data. WriteLimit caps the bytes
	// accepted per call (zero means accept everything).
	Played     []byte
	WriteLimit int
	WriteErr   error
}

func (m *MockAudio) ReadPCM(buf []byte) (int, error) {
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	n := len(m.Capture)
	if n > len(buf) {
		n = len(buf)
	}
	if m.ReadChunk > 0 && n > m.ReadChunk {
		n = m.ReadChunk
	}
	copy(buf, m.Capture[:n])
	m.Capture = m.Capture[n:]
	return n, nil
}

func (m *MockAudio) WritePCM(buf []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}
	n := len(buf)
	if m.WriteLimit > 0 && n > m.WriteLimit {
		n = m.WriteLimit
	}
	m.Played = append(m.Played, buf[:n]...)
	return n, nil
}

// MockRanger plays back scripted echo widths; once they run out every
// measurement times out.
type MockRanger struct {
	Echos []uint32
	Err   error
}

func (m *MockRanger) EchoMicros() (uint32, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	if len(m.Echos) == 0 {
		return 0, ErrRangingTimeout
	}
	echo := m.Echos[0]
	m.Echos = m.Echos[1:]
	return echo, nil
}

// MockAnalog serves fixed per-channel readings. The constructor seeds
// a full battery and mid-scale light so a freshly wired robot reads
// sane values.
type MockAnalog struct {
	Values map[AnalogChannel]uint16
	Err    error
}

func NewMockAnalog() *MockAnalog {
	return &MockAnalog{Values: map[AnalogChannel]uint16{
		AnalogLight:   0x8000,
		AnalogBattery: 0xFFFF,
	}}
}

func (m *MockAnalog) ReadRaw(ch AnalogChannel) (uint16, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Values[ch], nil
}

// MockCamera serves scripted frames, one per capture.
type MockCamera struct {
	Frames   [][]byte
	Captures int
	Err      error
}

func (m *MockCamera) CaptureFrame() ([]byte, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.Captures++
	if len(m.Frames) == 0 {
		return nil, nil
	}
	frame := m.Frames[0]
	m.Frames = m.Frames[1:]
	return frame, nil
}

// MockHardware returns a Hardware bundle wired entirely to mocks,
// ready for NewRobot.
func MockHardware() (Hardware, *MockServo, *MockStrip, *MockAudio, *MockRanger, *MockAnalog) {
	servo := NewMockServo()
	strip := &MockStrip{}
	audio := &MockAudio{}
	ranger := &MockRanger{}
	analog := NewMockAnalog()
	hw := Hardware{
		Servo:  servo,
		Strip:  strip,
		Audio:  audio,
		Ranger: ranger,
		Analog: analog,
	}
	return hw, servo, strip, audio, ranger, analog
}
