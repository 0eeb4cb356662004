//go:build rp2040

package main

import (
	"machine"

	"dashan/core"

	"tinygo.org/x/drivers/hcsr04"
)

// rangerDriver adapts the HC-SR04 driver to the ranging interface. A
// zero pulse means the echo never came back. ReadPulse blocks up to
// the driver's ~23ms timeout when nothing reflects; the sensor poll
// cadence keeps that off most control ticks.
type rangerDriver struct {
	dev hcsr04.Device
}

func newRangerDriver(trigger, echo machine.Pin) *rangerDriver {
	dev := hcsr04.New(trigger, echo)
	dev.Configure()
	return &rangerDriver{dev: dev}
}

func (r *rangerDriver) EchoMicros() (uint32, error) {
	pulse := r.dev.ReadPulse()
	if pulse <= 0 {
		return 0, core.ErrRangingTimeout
	}
	return uint32(pulse), nil
}
