package protocol

import (
	"strconv"
	"sync/atomic"
)

// counter is a lock-free event counter shared between the control
// loop and host-side goroutines
type counter uint32

func (c *counter) add() {
	atomic.AddUint32((*uint32)(c), 1)
}

func (c *counter) get() uint32 {
	return atomic.LoadUint32((*uint32)(c))
}

type counters struct {
	framesIn        counter
	framesOut       counter
	checksumErrors  counter
	lengthErrors    counter
	unknownCommands counter
	handlerErrors   counter
	droppedOutbound counter
}

// Stats is a point-in-time snapshot of the engine counters
type Stats struct {
	FramesIn        uint32
	FramesOut       uint32
	ChecksumErrors  uint32
	LengthErrors    uint32
	UnknownCommands uint32
	HandlerErrors   uint32
	DroppedOutbound uint32
}

// Stats returns a consistent-enough snapshot for display; individual
// counters are loaded atomically
func (e *Engine) Stats() Stats {
	return Stats{
		FramesIn:        e.stats.framesIn.get(),
		FramesOut:       e.stats.framesOut.get(),
		ChecksumErrors:  e.stats.checksumErrors.get(),
		LengthErrors:    e.stats.lengthErrors.get(),
		UnknownCommands: e.stats.unknownCommands.get(),
		HandlerErrors:   e.stats.handlerErrors.get(),
		DroppedOutbound: e.stats.droppedOutbound.get(),
	}
}

func (s Stats) String() string {
	u := func(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
	return "in=" + u(s.FramesIn) +
		" out=" + u(s.FramesOut) +
		" crc_err=" + u(s.ChecksumErrors) +
		" len_err=" + u(s.LengthErrors) +
		" unknown=" + u(s.UnknownCommands) +
		" handler_err=" + u(s.HandlerErrors) +
		" dropped=" + u(s.DroppedOutbound)
}
