//go:build rp2040

package main

import (
	"machine"

	"dashan/core"
)

// servoPeriodUs is the 50Hz hobby-servo frame.
const servoPeriodUs = 20000

// pwmPeripheral abstracts TinyGo's unexported *pwmGroup type.
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// servoDriver drives both gaze servos from one PWM slice. GPIO6 and
// GPIO7 share slice 3, so a single 20ms period configuration covers
// both channels.
type servoDriver struct {
	pwm      pwmPeripheral
	channels [2]uint8 // indexed by wire axis id - 1
	top      uint32
}

func newServoDriver() (*servoDriver, error) {
	d := &servoDriver{pwm: machine.PWM3}

	err := d.pwm.Configure(machine.PWMConfig{
		Period: servoPeriodUs * 1000, // nanoseconds
	})
	if err != nil {
		return nil, err
	}

	chH, err := d.pwm.Channel(pinServoH)
	if err != nil {
		return nil, err
	}
	chV, err := d.pwm.Channel(pinServoV)
	if err != nil {
		return nil, err
	}
	d.channels = [2]uint8{chH, chV}
	d.top = d.pwm.Top()
	return d, nil
}

// SetPulse scales the pulse width against the slice counter top.
func (d *servoDriver) SetPulse(channel uint8, micros uint16) error {
	if channel != core.ServoHorizontal && channel != core.ServoVertical {
		return core.ErrBadServoID
	}
	duty := uint32(micros) * d.top / servoPeriodUs
	d.pwm.Set(d.channels[channel-1], duty)
	return nil
}
