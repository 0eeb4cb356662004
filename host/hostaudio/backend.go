// Package hostaudio plays and captures audio on the host machine:
// robot microphone chunks out the host speakers, host microphone into
// the robot link. Audio crosses the wire as 16kHz mono s16le PCM and
// lives host-side as float32 samples, the format the sound hardware
// wants.
package hostaudio

import "dashan/core"

const (
	// SampleRate matches the robot's PCM format.
	SampleRate = core.SampleRate

	// FramesPerBuffer is the host-side stream granularity: 32ms of
	// audio at 16kHz.
	FramesPerBuffer = 512
)

// Backend abstracts the host sound system so everything above it can
// run against a mock.
type Backend interface {
	Initialize() error
	Terminate() error

	// CreateInputStream opens a capture stream.
	CreateInputStream(sampleRate float64, channels, bufferSize int) (Stream, error)

	// CreateOutputStream opens a playback stream.
	CreateOutputStream(sampleRate float64, channels, bufferSize int) (Stream, error)
}

// Stream is one open audio stream. Read fills the slice from the
// capture device; Write pushes the slice to the playback device. Both
// block for the stream's buffer duration.
type Stream interface {
	Start() error
	Stop() error
	Close() error
	Read(data []float32) error
	Write(data []float32) error
	IsActive() bool
}
