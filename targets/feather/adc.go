//go:build rp2040

package main

import (
	"errors"
	"machine"

	"dashan/core"
)

var errUnknownChannel = errors.New("unknown analog channel")

// analogDriver reads the light and battery dividers through TinyGo's
// machine.ADC, which scales every conversion to the full 16-bit span.
// A0 carries the photoresistor divider, A1 the battery divider.
type analogDriver struct {
	channels map[core.AnalogChannel]machine.ADC
}

func newAnalogDriver() (*analogDriver, error) {
	machine.InitADC()

	light := machine.ADC{Pin: machine.ADC0}
	if err := light.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}
	battery := machine.ADC{Pin: machine.ADC1}
	if err := battery.Configure(machine.ADCConfig{}); err != nil {
		return nil, err
	}

	return &analogDriver{
		channels: map[core.AnalogChannel]machine.ADC{
			core.AnalogLight:   light,
			core.AnalogBattery: battery,
		},
	}, nil
}

func (d *analogDriver) ReadRaw(ch core.AnalogChannel) (uint16, error) {
	adc, ok := d.channels[ch]
	if !ok {
		return 0, errUnknownChannel
	}
	return adc.Get(), nil
}
