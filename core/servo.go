package core

import "errors"

// Servo axis ids as used on the wire.
const (
	ServoHorizontal uint8 = 1
	ServoVertical   uint8 = 2
)

// Pulse geometry for standard hobby servos on a 20ms period.
const (
	MinPulse = 500  // microseconds at 0 degrees
	MaxPulse = 2500 // microseconds at 180 degrees

	servoAngleMax  = 180
	servoPulseHome = 1500
)

// DefaultServoSpeed is the ramp speed for internally initiated moves
// (homing, gaze tracking).
const DefaultServoSpeed = 50

// GazeRange bounds each gaze target coordinate.
const GazeRange = 100

var ErrBadServoID = errors.New("bad servo id")

// AngleToPulse converts degrees to a pulse width. Angles above 180 are
// clamped.
func AngleToPulse(angle uint16) uint16 {
	if angle > servoAngleMax {
		angle = servoAngleMax
	}
	return MinPulse + (MaxPulse-MinPulse)*angle/servoAngleMax
}

// PulseToAngle converts a pulse width to degrees. Pulses outside the
// servo band are clamped.
func PulseToAngle(pulse uint16) uint16 {
	if pulse < MinPulse {
		pulse = MinPulse
	}
	if pulse > MaxPulse {
		pulse = MaxPulse
	}
	return (pulse - MinPulse) * servoAngleMax / (MaxPulse - MinPulse)
}

// axis is the per-servo motion state. Pulse width is the source of
// truth; the angle fields mirror it for status reporting.
type axis struct {
	currentPulse uint16
	targetPulse  uint16
	currentAngle uint16
	targetAngle  uint16
	speed        uint16
	moving       bool
}

// MotionController ramps the two gaze servos toward their targets one
// bounded step per control-loop tick, so a move's duration is set by
// its speed parameter rather than by servo slew. Steps never overshoot:
// each tick moves at most the remaining distance.
type MotionController struct {
	pwm     ServoPWM
	axes    [2]axis // index 0 = horizontal, 1 = vertical
	enabled bool
}

func NewMotionController(pwm ServoPWM) *MotionController {
	m := &MotionController{pwm: pwm, enabled: true}
	for i := range m.axes {
		m.axes[i] = axis{
			currentPulse: servoPulseHome,
			targetPulse:  servoPulseHome,
			currentAngle: 90,
			targetAngle:  90,
		}
	}
	return m
}

// SetEnabled gates Tick. Disabled controllers hold their last pulse.
func (m *MotionController) SetEnabled(enabled bool) {
	m.enabled = enabled
}

func (m *MotionController) axisFor(id uint8) (*axis, error) {
	switch id {
	case ServoHorizontal:
		return &m.axes[0], nil
	case ServoVertical:
		return &m.axes[1], nil
	}
	return nil, ErrBadServoID
}

// SetAngle starts a ramp of the given axis toward angle at the given
// speed. Higher speed means larger per-tick steps. The move completes
// over subsequent Tick calls.
func (m *MotionController) SetAngle(id uint8, angle, speed uint16) error {
	ax, err := m.axisFor(id)
	if err != nil {
		return err
	}
	if angle > servoAngleMax {
		angle = servoAngleMax
	}
	ax.targetAngle = angle
	ax.targetPulse = AngleToPulse(angle)
	ax.speed = speed
	ax.moving = true
	return nil
}

// Gaze points both axes at a normalized target. Coordinates are
// clamped to ±GazeRange and map linearly onto 0-180 degrees with
// (0,0) at center: x moves the horizontal axis, y the vertical.
func (m *MotionController) Gaze(x, y int16) {
	m.SetAngle(ServoHorizontal, gazeAngle(x), DefaultServoSpeed)
	m.SetAngle(ServoVertical, gazeAngle(y), DefaultServoSpeed)
}

func gazeAngle(v int16) uint16 {
	if v < -GazeRange {
		v = -GazeRange
	}
	if v > GazeRange {
		v = GazeRange
	}
	return uint16(90 + int32(v)*90/GazeRange)
}

// Stop freezes one axis at its current position.
func (m *MotionController) Stop(id uint8) error {
	ax, err := m.axisFor(id)
	if err != nil {
		return err
	}
	ax.moving = false
	return nil
}

// StopAll freezes both axes.
func (m *MotionController) StopAll() {
	for i := range m.axes {
		m.axes[i].moving = false
	}
}

// Home ramps both axes back to center.
func (m *MotionController) Home() {
	m.SetAngle(ServoHorizontal, 90, DefaultServoSpeed)
	m.SetAngle(ServoVertical, 90, DefaultServoSpeed)
}

// Tick advances every moving axis by one step and writes the new pulse
// to the hardware. Within one step of the target the axis snaps onto
// it exactly and stops.
func (m *MotionController) Tick() error {
	if !m.enabled {
		return nil
	}
	var firstErr error
	for i := range m.axes {
		ax := &m.axes[i]
		if !ax.moving {
			continue
		}

		diff := int(ax.targetPulse) - int(ax.currentPulse)
		if diff < 0 {
			diff = -diff
		}

		if diff <= 1 {
			ax.currentPulse = ax.targetPulse
			ax.currentAngle = ax.targetAngle
			ax.moving = false
		} else {
			step := (uint32(ax.speed) + 1) * 10 / 100
			if step < 1 {
				step = 1
			}
			if step > uint32(diff) {
				step = uint32(diff)
			}
			if ax.targetPulse > ax.currentPulse {
				ax.currentPulse += uint16(step)
			} else {
				ax.currentPulse -= uint16(step)
			}
			ax.currentAngle = PulseToAngle(ax.currentPulse)
		}

		if err := m.pwm.SetPulse(uint8(i)+1, ax.currentPulse); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Angles returns both current angles for status reporting.
func (m *MotionController) Angles() (h, v uint16) {
	return m.axes[0].currentAngle, m.axes[1].currentAngle
}

// Pulses returns both current pulse widths.
func (m *MotionController) Pulses() (h, v uint16) {
	return m.axes[0].currentPulse, m.axes[1].currentPulse
}

// Moving reports whether any axis is still ramping.
func (m *MotionController) Moving() bool {
	return m.axes[0].moving || m.axes[1].moving
}
