package hostaudio

import "fmt"

// Player pushes robot audio chunks out the host speakers. Chunks
// arrive at whatever size the wire delivered; the player regroups
// them into fixed stream buffers and holds the remainder until the
// next chunk or Flush.
type Player struct {
	backend Backend
	stream  Stream
	pending []float32
}

func NewPlayer(backend Backend) *Player {
	return &Player{backend: backend}
}

// Open initializes the backend and starts the playback stream.
func (p *Player) Open() error {
	if err := p.backend.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	stream, err := p.backend.CreateOutputStream(SampleRate, 1, FramesPerBuffer)
	if err != nil {
		return fmt.Errorf("open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("start playback stream: %w", err)
	}
	p.stream = stream
	return nil
}

// Play queues one chunk of s16le PCM, writing every complete stream
// buffer it fills.
func (p *Player) Play(pcm []byte) error {
	p.pending = append(p.pending, PCM16ToFloat32(pcm)...)
	consumed := 0
	for len(p.pending)-consumed >= FramesPerBuffer {
		if err := p.stream.Write(p.pending[consumed : consumed+FramesPerBuffer]); err != nil {
			return err
		}
		consumed += FramesPerBuffer
	}
	if consumed > 0 {
		n := copy(p.pending, p.pending[consumed:])
		p.pending = p.pending[:n]
	}
	return nil
}

// Flush pads the held remainder with silence and writes it out.
func (p *Player) Flush() error {
	if len(p.pending) == 0 {
		return nil
	}
	buf := make([]float32, FramesPerBuffer)
	copy(buf, p.pending)
	p.pending = p.pending[:0]
	return p.stream.Write(buf)
}

// Close stops the stream and shuts the backend down.
func (p *Player) Close() error {
	var firstErr error
	if p.stream != nil {
		if err := p.stream.Stop(); err != nil {
			firstErr = err
		}
		if err := p.stream.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.stream = nil
	}
	if err := p.backend.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
