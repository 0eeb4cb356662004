package robot

// FrameAssembler reassembles chunked image pushes into whole frames.
// The robot streams chunks of one frame in offset order before
// starting the next, so a chunk carrying a new frame id abandons any
// partial frame in progress.
type FrameAssembler struct {
	frame uint16
	buf   []byte
	got   int
}

// Add merges one chunk and returns the completed frame id and bytes
// when the chunk fills it, or false while the frame is still partial.
// Malformed chunks that overrun the declared total are dropped.
func (a *FrameAssembler) Add(c ImageChunk) (uint16, []byte, bool) {
	if c.Total == 0 {
		return 0, nil, false
	}
	if a.buf == nil || c.Frame != a.frame || int(c.Total) != len(a.buf) {
		a.frame = c.Frame
		a.buf = make([]byte, c.Total)
		a.got = 0
	}
	end := int(c.Offset) + len(c.Data)
	if end > len(a.buf) {
		return 0, nil, false
	}
	copy(a.buf[c.Offset:], c.Data)
	a.got += len(c.Data)
	if a.got < len(a.buf) {
		return 0, nil, false
	}
	done := a.buf
	a.buf = nil
	return a.frame, done, true
}

// Pending reports whether a partially received frame is buffered.
func (a *FrameAssembler) Pending() bool {
	return a.buf != nil
}
