package standalone

import (
	"errors"

	"dashan/core"
)

// reactionFace is pulled when something gets close mid-routine.
const reactionFace = core.ExprSurprised

// Demo drives the robot through a scripted routine when no host is
// attached. Every step goes through the same state machine, motion
// controller and matrix that wire commands use, so the demo doubles as
// a hardware self-test.
type Demo struct {
	robot  *core.Robot
	tuning *Tuning

	steps  []Step
	index  int
	stepAt uint32

	reacting bool

	initialized bool
	running     bool
}

// NewDemo creates a demo manager bound to a built robot. The tuning
// must already have its defaults applied (see the config package).
func NewDemo(robot *core.Robot, tuning *Tuning) (*Demo, error) {
	if robot == nil {
		return nil, errors.New("demo requires a robot")
	}
	if tuning == nil || len(tuning.Steps) == 0 {
		return nil, errors.New("demo requires a tuning with steps")
	}
	return &Demo{robot: robot, tuning: tuning, steps: tuning.Steps}, nil
}

// Initialize validates the script and applies the tuning to the robot.
func (d *Demo) Initialize() error {
	if d.initialized {
		return errors.New("already initialized")
	}

	for _, step := range d.steps {
		switch step.Action {
		case "state":
			if _, ok := core.StateByName(step.State); !ok {
				return errors.New("unknown demo state: " + step.State)
			}
		case "expression":
			if _, ok := core.ExpressionByName(step.Expression); !ok {
				return errors.New("unknown demo expression: " + step.Expression)
			}
		case "gaze", "pause":
		default:
			return errors.New("unsupported demo action: " + step.Action)
		}
	}

	d.robot.Matrix().SetBrightness(d.tuning.Brightness)
	d.robot.Sensors().SetInterval(uint32(d.tuning.SensorIntervalMs))
	d.robot.Sensors().SetBatteryThreshold(d.tuning.BatteryWarnPercent)

	d.initialized = true
	return nil
}

// Start begins the routine from its first step.
func (d *Demo) Start() error {
	if !d.initialized {
		return errors.New("demo not initialized")
	}
	d.running = true
	d.reacting = false
	d.index = 0
	d.stepAt = d.robot.Clock().Now()
	d.runStep(d.steps[0])
	d.robot.Debug().Println("demo routine started")
	return nil
}

// Stop halts the routine and freezes motion.
func (d *Demo) Stop() {
	d.running = false
	d.robot.Motion().StopAll()
}

// IsRunning returns whether the routine is active.
func (d *Demo) IsRunning() bool {
	return d.running
}

// StepIndex returns the position in the script.
func (d *Demo) StepIndex() int {
	return d.index
}

// Reacting reports whether a proximity reaction has interrupted the
// script.
func (d *Demo) Reacting() bool {
	return d.reacting
}

// Tick advances the routine. Call once per control-loop pass, after
// Robot.Tick. Proximity interrupts the script: the robot startles and
// faces forward, then replays the interrupted step once clear.
func (d *Demo) Tick() {
	if !d.running {
		return
	}
	now := d.robot.Clock().Now()

	if d.robot.Sensors().Reading().Proximity {
		if !d.reacting {
			d.reacting = true
			d.robot.Machine().OverrideExpression(reactionFace)
			d.robot.Motion().Gaze(0, 0)
		}
		return
	}
	if d.reacting {
		d.reacting = false
		d.stepAt = now
		d.runStep(d.steps[d.index])
		return
	}

	if now-d.stepAt < uint32(d.steps[d.index].HoldMs) {
		return
	}
	d.index++
	if d.index >= len(d.steps) {
		d.index = 0
	}
	d.stepAt = now
	d.runStep(d.steps[d.index])
}

// runStep executes one script entry. Render errors are left to the
// robot's own fault reporting.
func (d *Demo) runStep(step Step) {
	switch step.Action {
	case "state":
		if s, ok := core.StateByName(step.State); ok {
			d.robot.Machine().Transition(s)
		}
	case "expression":
		if id, ok := core.ExpressionByName(step.Expression); ok {
			d.robot.Machine().OverrideExpression(id)
		}
	case "gaze":
		d.robot.Motion().Gaze(step.X, step.Y)
	}
}
