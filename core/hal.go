package core

import (
	"errors"
	"image/color"
)

// AnalogChannel identifies a logical analog input.
type AnalogChannel uint8

// Analog channel assignments. Targets map these onto physical ADC pins.
const (
	AnalogLight   AnalogChannel = 0
	AnalogBattery AnalogChannel = 1
)

// ErrRangingTimeout is returned by a Ranger when no echo arrives within
// the measurement window. The poller substitutes the invalid-distance
// sentinel rather than propagating it.
var ErrRangingTimeout = errors.New("ranging timeout")

// ServoPWM is the abstract servo output interface that core code uses.
// Platform-specific implementations translate pulse widths into PWM
// duty cycles on the pin wired to the given channel.
type ServoPWM interface {
	// SetPulse drives the channel with the given pulse width in
	// microseconds on a 20ms period. Channel numbering follows the
	// wire protocol: 1 = horizontal, 2 = vertical.
	SetPulse(channel uint8, micros uint16) error
}

// LEDStrip is the abstract addressable-LED interface that core code
// uses. The buffer is one color per LED in strip order. Implementations
// own the wire encoding (color order, timing).
type LEDStrip interface {
	WriteColors(buf []color.RGBA) error
}

// AudioIO is the abstract audio peripheral pair that core code uses.
// Both directions carry 16-bit little-endian mono PCM and must not
// block: a read returns however many bytes are available right now
// (possibly zero), a write returns how many were accepted.
type AudioIO interface {
	// ReadPCM fills buf with captured samples and returns the byte count.
	ReadPCM(buf []byte) (int, error)

	// WritePCM queues samples for playback and returns the byte count
	// accepted by the peripheral.
	WritePCM(buf []byte) (int, error)
}

// Ranger is the abstract pulse-echo distance sensor interface.
type Ranger interface {
	// EchoMicros performs one trigger/echo measurement and returns the
	// echo pulse width in microseconds, or ErrRangingTimeout when no
	// echo arrived within the measurement window.
	EchoMicros() (uint32, error)
}

// AnalogReader is the abstract analog input interface that core code
// uses. Convention here: 16-bit value, even if underlying hardware is
// 12 bits.
type AnalogReader interface {
	ReadRaw(ch AnalogChannel) (uint16, error)
}

// CameraSource is the abstract image capture interface. A nil source
// is valid and keeps the camera streamer dormant.
type CameraSource interface {
	// CaptureFrame grabs one encoded frame. The returned slice is only
	// valid until the next capture.
	CaptureFrame() ([]byte, error)
}
