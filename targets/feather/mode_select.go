//go:build rp2040

package main

import (
	"machine"
	"time"
)

// demoStrapped reads the mode strap. The pin idles high through the
// internal pull-up; bridging it to ground at boot selects the scripted
// demo routine instead of host mode.
func demoStrapped() bool {
	pinStrap.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	// Let the pull-up settle before sampling
	time.Sleep(time.Millisecond)
	return !pinStrap.Get()
}
