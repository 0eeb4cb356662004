//go:build rp2040

package main

import (
	"runtime/volatile"
	"unsafe"

	"dashan/core"
)

// RP2040 timer peripheral memory map. The raw 64-bit microsecond
// counter is read directly so the control clock needs no interrupt
// bookkeeping.
const (
	timerBase     = 0x40054000
	timerTIMERAWH = timerBase + 0x08 // Raw timer high word
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var (
	timerRAWH = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
)

// hardwareMicros reads the full 64-bit microsecond counter. High must
// be read before and after low to detect a rollover mid-read.
func hardwareMicros() uint64 {
	for {
		high1 := timerRAWH.Get()
		low := timerRAWL.Get()
		high2 := timerRAWH.Get()

		if high1 == high2 {
			return (uint64(high1) << 32) | uint64(low)
		}
		// Rollover happened during the read, retry
	}
}

// syncClock feeds the hardware time into the control clock in
// milliseconds.
func syncClock(c *core.Clock) {
	c.SetNow(uint32(hardwareMicros() / 1000))
}
