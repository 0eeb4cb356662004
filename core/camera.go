package core

import (
	"errors"

	"dashan/protocol"
)

// Camera geometry of the reference sensor configuration.
const (
	CameraWidth  = 320
	CameraHeight = 240
)

// Image frames stream as chunked CmdImageData frames, each carrying
// frame id u16, byte offset u16, total frame size u16, then the bytes.
// The u16 size field caps a frame at 64KB.
const (
	imageChunkHeader = 6
	imageChunkMax    = protocol.MaxDataLen - imageChunkHeader
	imageFrameMax    = 0xFFFF

	// imageChunksPerTick paces streaming so one frame cannot crowd
	// status and sensor traffic out of the outbound queue.
	imageChunksPerTick = 4
)

var ErrNoCamera = errors.New("no camera source")

// CameraStreamer captures frames at a fixed interval and streams them
// to the host in paced chunks. A new frame is only captured once the
// previous one has fully streamed, so slow links stretch the effective
// interval instead of piling frames up.
type CameraStreamer struct {
	source CameraSource
	clock  *Clock
	eng    *protocol.Engine
	debug  *DebugLog

	enabled     bool
	interval    uint32 // ms
	lastCapture uint32
	frameCount  uint16

	pending []byte
	offset  int
}

func NewCameraStreamer(source CameraSource, clock *Clock, eng *protocol.Engine, debug *DebugLog) *CameraStreamer {
	return &CameraStreamer{
		source:   source,
		clock:    clock,
		eng:      eng,
		debug:    debug,
		interval: 1000,
	}
}

// Start enables periodic capture every intervalS seconds. Zero means
// one second. Returns ErrNoCamera when no source is fitted.
func (c *CameraStreamer) Start(intervalS uint8) error {
	if c.source == nil {
		return ErrNoCamera
	}
	c.interval = uint32(intervalS) * 1000
	if c.interval == 0 {
		c.interval = 1000
	}
	// Backdate so the first capture happens on the next tick.
	c.lastCapture = c.clock.Now() - c.interval
	c.enabled = true
	return nil
}

// Stop disables capture. A partially streamed frame finishes.
func (c *CameraStreamer) Stop() {
	c.enabled = false
}

func (c *CameraStreamer) Enabled() bool {
	return c.enabled
}

// FrameCount returns how many frames have been captured since boot.
func (c *CameraStreamer) FrameCount() uint16 {
	return c.frameCount
}

// Tick streams pending chunks, then captures a new frame when the
// interval has elapsed and the previous frame is fully out.
func (c *CameraStreamer) Tick() error {
	if len(c.pending) > 0 {
		c.streamChunks()
		return nil
	}
	if !c.enabled || c.source == nil {
		return nil
	}
	now := c.clock.Now()
	if now-c.lastCapture < c.interval {
		return nil
	}
	c.lastCapture = now

	frame, err := c.source.CaptureFrame()
	if err != nil {
		return err
	}
	if len(frame) == 0 || len(frame) > imageFrameMax {
		return nil
	}
	c.frameCount++
	c.pending = append(c.pending[:0], frame...)
	c.offset = 0
	c.streamChunks()
	return nil
}

func (c *CameraStreamer) streamChunks() {
	total := uint16(len(c.pending))
	for i := 0; i < imageChunksPerTick && c.offset < len(c.pending); i++ {
		end := c.offset + imageChunkMax
		if end > len(c.pending) {
			end = len(c.pending)
		}
		payload := make([]byte, 0, imageChunkHeader+(end-c.offset))
		payload = protocol.AppendU16(payload, c.frameCount)
		payload = protocol.AppendU16(payload, uint16(c.offset))
		payload = protocol.AppendU16(payload, total)
		payload = append(payload, c.pending[c.offset:end]...)
		if err := c.eng.Enqueue(protocol.Frame{Cmd: protocol.CmdImageData, Data: payload}); err != nil {
			// Queue congested; retry the same offset next tick.
			return
		}
		c.offset = end
	}
	if c.offset >= len(c.pending) {
		c.pending = c.pending[:0]
		c.offset = 0
	}
}
