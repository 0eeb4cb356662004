package hostaudio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioBackend implements Backend on the system's default audio
// devices via PortAudio.
type PortAudioBackend struct {
	initialized bool
}

func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

func (p *PortAudioBackend) Initialize() error {
	if p.initialized {
		return nil
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize PortAudio: %w", err)
	}
	p.initialized = true
	return nil
}

func (p *PortAudioBackend) Terminate() error {
	if !p.initialized {
		return nil
	}
	err := portaudio.Terminate()
	p.initialized = false
	return err
}

func (p *PortAudioBackend) CreateInputStream(sampleRate float64, channels, bufferSize int) (Stream, error) {
	if !p.initialized {
		return nil, fmt.Errorf("PortAudio not initialized")
	}
	buf := make([]float32, bufferSize*channels)
	stream, err := portaudio.OpenDefaultStream(channels, 0, sampleRate, bufferSize, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}
	return &portAudioStream{stream: stream, buf: buf, isInput: true}, nil
}

func (p *PortAudioBackend) CreateOutputStream(sampleRate float64, channels, bufferSize int) (Stream, error) {
	if !p.initialized {
		return nil, fmt.Errorf("PortAudio not initialized")
	}
	buf := make([]float32, bufferSize*channels)
	stream, err := portaudio.OpenDefaultStream(0, channels, sampleRate, bufferSize, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to open output stream: %w", err)
	}
	return &portAudioStream{stream: stream, buf: buf, isInput: false}, nil
}

// portAudioStream adapts one *portaudio.Stream. The fixed buffer
// passed at open time is the transfer window: Read and Write move one
// buffer's worth per call.
type portAudioStream struct {
	stream  *portaudio.Stream
	buf     []float32
	isInput bool
	active  bool
}

func (s *portAudioStream) Start() error {
	if err := s.stream.Start(); err != nil {
		return err
	}
	s.active = true
	return nil
}

func (s *portAudioStream) Stop() error {
	s.active = false
	return s.stream.Stop()
}

func (s *portAudioStream) Close() error {
	s.active = false
	return s.stream.Close()
}

func (s *portAudioStream) Read(data []float32) error {
	if !s.isInput {
		return fmt.Errorf("cannot read from output stream")
	}
	if err := s.stream.Read(); err != nil {
		return err
	}
	copy(data, s.buf)
	return nil
}

func (s *portAudioStream) Write(data []float32) error {
	if s.isInput {
		return fmt.Errorf("cannot write to input stream")
	}
	copy(s.buf, data)
	return s.stream.Write()
}

func (s *portAudioStream) IsActive() bool {
	return s.active
}
