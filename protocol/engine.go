package protocol

import (
	"errors"
	"io"
	"sync"
	"time"
)

const (
	// OutboundDepth is the capacity of the outbound frame queue
	OutboundDepth = 10

	// DefaultEnqueueTimeout bounds how long Enqueue waits on a full
	// queue before dropping the frame
	DefaultEnqueueTimeout = 100 * time.Millisecond
)

var (
	ErrQueueFull       = errors.New("outbound queue full")
	ErrUnknownCommand  = errors.New("no handler for command")
	ErrHandlerPanicked = errors.New("command handler panicked")
)

// Handler processes the payload of one validated frame. The payload
// slice aliases the receive buffer and is only valid for the duration
// of the call; handlers that keep the data must copy it.
type Handler func(data []byte) error

// Receive states
const (
	rxScan = iota // waiting for head byte
	rxCmd
	rxLenLo
	rxLenHi
	rxData
	rxCRC
)

// Engine owns both directions of the robot link: a byte-at-a-time
// receive state machine that dispatches validated frames to registered
// handlers, and a bounded outbound queue drained once per control-loop
// tick. One Engine instance serves one link; the receive side must be
// fed from a single goroutine.
type Engine struct {
	mu       sync.RWMutex
	handlers map[uint8]Handler

	state  int
	cmd    uint8
	length int
	dataN  int
	crc    uint8 // running checksum over CMD, LEN, DATA
	data   [MaxDataLen]byte

	outbound chan Frame
	txBuf    []byte

	// EnqueueTimeout bounds the blocking wait in Enqueue. Zero means
	// drop immediately when the queue is full.
	EnqueueTimeout time.Duration

	fault func(cmd uint8, err error)

	stats counters
}

// NewEngine creates an Engine with an empty handler table
func NewEngine() *Engine {
	return &Engine{
		handlers:       make(map[uint8]Handler),
		outbound:       make(chan Frame, OutboundDepth),
		txBuf:          make([]byte, 0, FrameMax),
		EnqueueTimeout: DefaultEnqueueTimeout,
	}
}

// Register installs the handler for a command byte. Registering twice
// for the same command silently replaces the earlier handler.
func (e *Engine) Register(cmd uint8, h Handler) {
	e.mu.Lock()
	e.handlers[cmd] = h
	e.mu.Unlock()
}

// SetFaultCallback installs a callback invoked on receive faults and
// handler errors. cmd is the command byte of the frame being parsed,
// 0 if the fault happened before the command byte arrived.
func (e *Engine) SetFaultCallback(cb func(cmd uint8, err error)) {
	e.fault = cb
}

// Feed runs every byte of chunk through the receive state machine,
// dispatching each frame as its checksum byte is validated. Frames are
// therefore handled strictly in arrival order.
func (e *Engine) Feed(chunk []byte) {
	for _, b := range chunk {
		e.feedByte(b)
	}
}

func (e *Engine) feedByte(b uint8) {
	switch e.state {
	case rxScan:
		if b == FrameHead {
			e.state = rxCmd
		}

	case rxCmd:
		e.cmd = b
		e.crc = crcUpdate(0, b)
		e.state = rxLenLo

	case rxLenLo:
		e.length = int(b)
		e.crc = crcUpdate(e.crc, b)
		e.state = rxLenHi

	case rxLenHi:
		e.length |= int(b) << 8
		e.crc = crcUpdate(e.crc, b)
		if e.length > MaxDataLen {
			e.stats.lengthErrors.add()
			e.reportFault(e.cmd, ErrFrameTooLong)
			e.resetRx()
			return
		}
		e.dataN = 0
		if e.length == 0 {
			e.state = rxCRC
		} else {
			e.state = rxData
		}

	case rxData:
		e.data[e.dataN] = b
		e.dataN++
		e.crc = crcUpdate(e.crc, b)
		if e.dataN == e.length {
			e.state = rxCRC
		}

	case rxCRC:
		if b != e.crc {
			e.stats.checksumErrors.add()
			e.reportFault(e.cmd, ErrChecksumMismatch)
			e.resetRx()
			return
		}
		e.stats.framesIn.add()
		e.dispatch(e.cmd, e.data[:e.dataN])
		e.resetRx()
	}
}

// Reset returns the receive state machine to head-byte scanning.
// Counters and queued outbound frames are untouched. Useful after a
// transport reconnect.
func (e *Engine) Reset() {
	e.resetRx()
}

func (e *Engine) resetRx() {
	e.state = rxScan
	e.length = 0
	e.dataN = 0
}

func (e *Engine) dispatch(cmd uint8, data []byte) {
	e.mu.RLock()
	h := e.handlers[cmd]
	e.mu.RUnlock()

	if h == nil {
		e.stats.unknownCommands.add()
		e.reportFault(cmd, ErrUnknownCommand)
		return
	}

	// A handler panic must not take down the control loop
	defer func() {
		if r := recover(); r != nil {
			e.stats.handlerErrors.add()
			e.reportFault(cmd, ErrHandlerPanicked)
		}
	}()

	if err := h(data); err != nil {
		e.stats.handlerErrors.add()
		e.reportFault(cmd, err)
	}
}

func (e *Engine) reportFault(cmd uint8, err error) {
	if e.fault != nil {
		e.fault(cmd, err)
	}
}

// Enqueue places a frame on the outbound queue. The payload is copied,
// so the caller may reuse its buffer. When the queue is full the call
// blocks up to EnqueueTimeout and then drops the frame.
func (e *Engine) Enqueue(f Frame) error {
	if len(f.Data) > MaxDataLen {
		return ErrFrameTooLong
	}
	queued := Frame{Cmd: f.Cmd}
	if len(f.Data) > 0 {
		queued.Data = make([]byte, len(f.Data))
		copy(queued.Data, f.Data)
	}

	select {
	case e.outbound <- queued:
		return nil
	default:
	}
	if e.EnqueueTimeout <= 0 {
		e.stats.droppedOutbound.add()
		return ErrQueueFull
	}
	t := time.NewTimer(e.EnqueueTimeout)
	defer t.Stop()
	select {
	case e.outbound <- queued:
		return nil
	case <-t.C:
		e.stats.droppedOutbound.add()
		return ErrQueueFull
	}
}

// DrainOutbound serializes and writes every queued frame in FIFO
// order. It never blocks waiting for new frames; the control loop
// calls it once per tick.
func (e *Engine) DrainOutbound(w io.Writer) error {
	for {
		select {
		case f := <-e.outbound:
			e.txBuf = AppendFrame(e.txBuf[:0], f)
			if _, err := w.Write(e.txBuf); err != nil {
				return err
			}
			e.stats.framesOut.add()
		default:
			return nil
		}
	}
}

// Pending returns the number of frames waiting in the outbound queue
func (e *Engine) Pending() int {
	return len(e.outbound)
}
