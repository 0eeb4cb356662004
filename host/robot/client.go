// Package robot provides the host-side client for the robot serial
// link: typed commands in, decoded event callbacks out.
package robot

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"dashan/core"
	"dashan/host/conn"
	"dashan/protocol"
)

// DefaultTimeout bounds request/reply round trips.
const DefaultTimeout = 2 * time.Second

const (
	audioFormatPCM  = 1
	playAudioHeader = 4 // format + sample rate + channels

	// MaxPlayChunk is the PCM capacity of one play_audio frame.
	MaxPlayChunk = protocol.MaxDataLen - playAudioHeader
)

var (
	ErrTimeout       = errors.New("timed out waiting for robot reply")
	ErrClosed        = errors.New("client closed")
	ErrServoRejected = errors.New("robot rejected servo command")
)

// Client speaks the robot protocol over a Connection. A background
// read loop parses inbound frames: replies complete pending requests,
// pushes fan out to the registered callbacks. Requests from multiple
// goroutines are safe; callbacks run on the read loop goroutine and
// must be registered before Start.
type Client struct {
	conn conn.Connection
	eng  *protocol.Engine

	writeMu sync.Mutex

	replyMu sync.Mutex
	waiters map[uint8]chan []byte

	onStatus func(Status)
	onSensor func(SensorReading)
	onAudio  func(AudioChunk)
	onImage  func(ImageChunk)
	onReport func(ErrorReport)
	onFault  func(cmd uint8, err error)

	// Timeout bounds each request/reply round trip. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
	started   bool
}

// NewClient wraps an open connection. Register callbacks, then call
// Start to begin receiving.
func NewClient(cn conn.Connection) *Client {
	c := &Client{
		conn:     cn,
		eng:      protocol.NewEngine(),
		waiters:  make(map[uint8]chan []byte),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	c.bindHandlers()
	return c
}

func (c *Client) bindHandlers() {
	c.eng.Register(protocol.CmdHeartbeat, func(data []byte) error {
		c.deliver(protocol.CmdHeartbeat, data)
		return nil
	})
	c.eng.Register(protocol.CmdSetServo, func(data []byte) error {
		c.deliver(protocol.CmdSetServo, data)
		return nil
	})

	// Status frames arrive both as replies and as unsolicited pushes
	// on autonomous transitions, so they feed the waiter and the
	// callback.
	c.eng.Register(protocol.CmdSetState, c.handleStatus(protocol.CmdSetState))
	c.eng.Register(protocol.CmdGetStatus, c.handleStatus(protocol.CmdGetStatus))

	c.eng.Register(protocol.CmdSensorData, func(data []byte) error {
		r, err := decodeSensorReading(data)
		if err != nil {
			return err
		}
		if c.onSensor != nil {
			c.onSensor(r)
		}
		return nil
	})
	c.eng.Register(protocol.CmdAudioData, func(data []byte) error {
		a, err := decodeAudioChunk(data)
		if err != nil {
			return err
		}
		if c.onAudio != nil {
			c.onAudio(a)
		}
		return nil
	})
	c.eng.Register(protocol.CmdImageData, func(data []byte) error {
		ch, err := decodeImageChunk(data)
		if err != nil {
			return err
		}
		if c.onImage != nil {
			c.onImage(ch)
		}
		return nil
	})
	c.eng.Register(protocol.CmdError, func(data []byte) error {
		e, err := decodeErrorReport(data)
		if err != nil {
			return err
		}
		if c.onReport != nil {
			c.onReport(e)
		}
		return nil
	})

	c.eng.SetFaultCallback(func(cmd uint8, err error) {
		if c.onFault != nil {
			c.onFault(cmd, err)
		}
	})
}

func (c *Client) handleStatus(cmd uint8) protocol.Handler {
	return func(data []byte) error {
		c.deliver(cmd, data)
		s, err := decodeStatus(data)
		if err != nil {
			return err
		}
		if c.onStatus != nil {
			c.onStatus(s)
		}
		return nil
	}
}

// OnStatus registers the callback for status frames.
func (c *Client) OnStatus(fn func(Status)) { c.onStatus = fn }

// OnSensor registers the callback for sensor pushes.
func (c *Client) OnSensor(fn func(SensorReading)) { c.onSensor = fn }

// OnAudio registers the callback for captured audio chunks.
func (c *Client) OnAudio(fn func(AudioChunk)) { c.onAudio = fn }

// OnImage registers the callback for camera frame chunks.
func (c *Client) OnImage(fn func(ImageChunk)) { c.onImage = fn }

// OnErrorReport registers the callback for robot fault reports.
func (c *Client) OnErrorReport(fn func(ErrorReport)) { c.onReport = fn }

// OnProtocolFault registers the callback for link-level faults:
// checksum mismatches, unknown commands, malformed payloads.
func (c *Client) OnProtocolFault(fn func(cmd uint8, err error)) { c.onFault = fn }

// Start launches the background read loop.
func (c *Client) Start() {
	c.started = true
	go c.readLoop()
}

// Stats returns the link counters accumulated so far.
func (c *Client) Stats() protocol.Stats {
	return c.eng.Stats()
}

func (c *Client) readLoop() {
	defer close(c.doneChan)

	buf := make([]byte, 512)
	for {
		select {
		case <-c.stopChan:
			return
		default:
		}

		n, err := c.conn.Read(buf)
		if n > 0 {
			c.eng.Feed(buf[:n])
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, conn.ErrConnectionClosed) {
				return
			}
			// Transient read error; back off and keep the link up.
			time.Sleep(10 * time.Millisecond)
		}
	}
}

func (c *Client) send(f protocol.Frame) error {
	if len(f.Data) > protocol.MaxDataLen {
		return protocol.ErrFrameTooLong
	}
	buf := protocol.EncodeFrame(f)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	n, err := c.conn.Write(buf)
	if err != nil {
		return fmt.Errorf("write %s: %w", protocol.CmdName(f.Cmd), err)
	}
	if n != len(buf) {
		return fmt.Errorf("write %s: short write %d/%d bytes", protocol.CmdName(f.Cmd), n, len(buf))
	}
	return nil
}

func (c *Client) arm(cmd uint8) chan []byte {
	ch := make(chan []byte, 1)
	c.replyMu.Lock()
	c.waiters[cmd] = ch
	c.replyMu.Unlock()
	return ch
}

func (c *Client) disarm(cmd uint8, ch chan []byte) {
	c.replyMu.Lock()
	if c.waiters[cmd] == ch {
		delete(c.waiters, cmd)
	}
	c.replyMu.Unlock()
}

func (c *Client) deliver(cmd uint8, data []byte) {
	c.replyMu.Lock()
	ch := c.waiters[cmd]
	delete(c.waiters, cmd)
	c.replyMu.Unlock()
	if ch == nil {
		return
	}
	d := make([]byte, len(data))
	copy(d, data)
	ch <- d
}

// request sends a frame and waits for the reply carrying replyCmd.
func (c *Client) request(f protocol.Frame, replyCmd uint8) ([]byte, error) {
	ch := c.arm(replyCmd)
	defer c.disarm(replyCmd, ch)

	if err := c.send(f); err != nil {
		return nil, err
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	select {
	case data := <-ch:
		return data, nil
	case <-time.After(timeout):
		return nil, ErrTimeout
	case <-c.stopChan:
		return nil, ErrClosed
	}
}

// Ping sends a heartbeat and returns the robot's uptime and free
// memory.
func (c *Client) Ping() (Heartbeat, error) {
	data, err := c.request(protocol.Frame{Cmd: protocol.CmdHeartbeat}, protocol.CmdHeartbeat)
	if err != nil {
		return Heartbeat{}, err
	}
	return decodeHeartbeat(data)
}

// GetStatus requests and returns the robot's current status.
func (c *Client) GetStatus() (Status, error) {
	data, err := c.request(protocol.Frame{Cmd: protocol.CmdGetStatus}, protocol.CmdGetStatus)
	if err != nil {
		return Status{}, err
	}
	return decodeStatus(data)
}

// SetState transitions the robot and returns the status it reports on
// arrival. The robot only replies when the state actually changes;
// commanding the state it is already in returns ErrTimeout.
func (c *Client) SetState(s core.State) (Status, error) {
	f := protocol.Frame{Cmd: protocol.CmdSetState, Data: []byte{uint8(s)}}
	data, err := c.request(f, protocol.CmdSetState)
	if err != nil {
		return Status{}, err
	}
	return decodeStatus(data)
}

// SetExpression shows a face override. A non-zero duration reverts to
// the state's canonical face after durationMS milliseconds.
func (c *Client) SetExpression(id, brightness uint8, durationMS uint16) error {
	data := make([]byte, 0, 4)
	data = append(data, id, brightness)
	data = protocol.AppendU16(data, durationMS)
	return c.send(protocol.Frame{Cmd: protocol.CmdSetExpression, Data: data})
}

// SetServo moves one gaze servo and waits for the robot's
// accept/reject byte.
func (c *Client) SetServo(id uint8, angle, speed uint16) error {
	data := make([]byte, 0, 5)
	data = append(data, id)
	data = protocol.AppendU16(data, angle)
	data = protocol.AppendU16(data, speed)

	reply, err := c.request(protocol.Frame{Cmd: protocol.CmdSetServo, Data: data}, protocol.CmdSetServo)
	if err != nil {
		return err
	}
	status, err := protocol.ReadU8(&reply)
	if err != nil {
		return err
	}
	if status != 0 {
		return ErrServoRejected
	}
	return nil
}

// SetGaze points both servos at a normalized target in -100..100 per
// axis. The robot clamps out-of-range values.
func (c *Client) SetGaze(x, y int16) error {
	data := make([]byte, 0, 4)
	data = protocol.AppendI16(data, x)
	data = protocol.AppendI16(data, y)
	return c.send(protocol.Frame{Cmd: protocol.CmdSetGaze, Data: data})
}

// PlayAudio sends one frame of 16kHz mono PCM for playback. The robot
// replaces any playback in progress, so pcm must fit MaxPlayChunk;
// use StreamAudio for longer clips.
func (c *Client) PlayAudio(pcm []byte) error {
	if len(pcm) > MaxPlayChunk {
		return protocol.ErrFrameTooLong
	}
	data := make([]byte, 0, playAudioHeader+len(pcm))
	data = append(data, audioFormatPCM)
	data = protocol.AppendU16(data, core.SampleRate)
	data = append(data, 1) // mono
	data = append(data, pcm...)
	return c.send(protocol.Frame{Cmd: protocol.CmdPlayAudio, Data: data})
}

// StreamAudio plays a clip of any length by sending it in paced
// chunks, each delayed by its own playback duration so the robot
// finishes a chunk before the next one replaces it. Blocks for
// roughly the clip's duration.
func (c *Client) StreamAudio(pcm []byte) error {
	for len(pcm) > 0 {
		n := len(pcm)
		if n > MaxPlayChunk {
			n = MaxPlayChunk
		}
		if err := c.PlayAudio(pcm[:n]); err != nil {
			return err
		}
		pcm = pcm[n:]
		if len(pcm) == 0 {
			return nil
		}
		d := time.Duration(n) * time.Second / (core.SampleRate * 2)
		select {
		case <-time.After(d):
		case <-c.stopChan:
			return ErrClosed
		}
	}
	return nil
}

// StartRecording begins microphone capture. Captured chunks arrive on
// the OnAudio callback. A non-zero maxDurationS stops the recording
// on the robot after that many seconds.
func (c *Client) StartRecording(maxDurationS uint8) error {
	return c.send(protocol.Frame{Cmd: protocol.CmdRecordControl, Data: []byte{1, maxDurationS}})
}

// StopRecording ends microphone capture.
func (c *Client) StopRecording() error {
	return c.send(protocol.Frame{Cmd: protocol.CmdRecordControl, Data: []byte{2, 0}})
}

// StartCamera begins periodic image streaming every intervalS
// seconds. Chunks arrive on the OnImage callback.
func (c *Client) StartCamera(intervalS uint8) error {
	return c.send(protocol.Frame{Cmd: protocol.CmdCameraControl, Data: []byte{1, intervalS}})
}

// StopCamera ends image streaming.
func (c *Client) StopCamera() error {
	return c.send(protocol.Frame{Cmd: protocol.CmdCameraControl, Data: []byte{2, 0}})
}

// Close stops the read loop and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopChan)
		err = c.conn.Close()
		if c.started {
			<-c.doneChan
		}
	})
	return err
}
