package standalone

import "dashan/core"

// TrimServo offsets every pulse by a per-axis calibration trim before
// it reaches the hardware, correcting for horn mounting error. Trimmed
// pulses are clamped to the servo band.
type TrimServo struct {
	Inner core.ServoPWM
	TrimH int16
	TrimV int16
}

func (t *TrimServo) SetPulse(channel uint8, micros uint16) error {
	trim := t.TrimH
	if channel == core.ServoVertical {
		trim = t.TrimV
	}
	v := int32(micros) + int32(trim)
	if v < core.MinPulse {
		v = core.MinPulse
	}
	if v > core.MaxPulse {
		v = core.MaxPulse
	}
	return t.Inner.SetPulse(channel, uint16(v))
}

// WrapServo applies the tuning's servo trim to a PWM driver. Zero trim
// returns the driver unchanged.
func WrapServo(pwm core.ServoPWM, tuning *Tuning) core.ServoPWM {
	if tuning == nil || (tuning.ServoTrimH == 0 && tuning.ServoTrimV == 0) {
		return pwm
	}
	return &TrimServo{Inner: pwm, TrimH: tuning.ServoTrimH, TrimV: tuning.ServoTrimV}
}
