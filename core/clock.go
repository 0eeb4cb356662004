package core

// Clock is the firmware's monotonic millisecond timebase. The control
// loop owner advances it once per tick from whatever real time source
// the platform has; everything inside core reads time only through it,
// which keeps timed behavior deterministic under test.
//
// The counter wraps after ~49.7 days. All comparisons in core are of
// the form now-then so they survive the wrap.
type Clock struct {
	now uint32
}

// Now returns the current time in milliseconds.
func (c *Clock) Now() uint32 {
	return c.now
}

// SetNow jumps the clock to an absolute millisecond value.
func (c *Clock) SetNow(ms uint32) {
	c.now = ms
}

// Advance moves the clock forward by the given number of milliseconds.
func (c *Clock) Advance(ms uint32) {
	c.now += ms
}

// Uptime returns whole seconds since the clock started.
func (c *Clock) Uptime() uint32 {
	return c.now / 1000
}
