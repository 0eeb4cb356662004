package core

import (
	"io"

	"dashan/protocol"
)

// ErrorReporter is a function type for pushing fault reports to the
// host.
type ErrorReporter func(code protocol.ErrorCode, comp protocol.Component, detail uint8)

// Hardware bundles the platform implementations the robot drives.
// Camera may be nil; everything else must be set.
type Hardware struct {
	Servo  ServoPWM
	Strip  LEDStrip
	Audio  AudioIO
	Ranger Ranger
	Analog AnalogReader
	Camera CameraSource
}

// Robot owns every firmware component and runs them from a single
// cooperative control loop. The owner advances the clock and calls
// Tick at a fixed cadence; nothing here spawns goroutines or blocks.
type Robot struct {
	clock   Clock
	eng     *protocol.Engine
	sched   *Scheduler
	debug   *DebugLog
	matrix  *Matrix
	motion  *MotionController
	machine *Machine
	audio   *AudioManager
	sensors *SensorPoller
	camera  *CameraStreamer

	// FreeMem supplies the heartbeat free-memory figure. Platforms
	// wire their runtime's notion of free heap; nil reports zero.
	FreeMem func() uint32

	exprTimer Timer
	faulted   [5]bool // per-component fault latch, indexed Component-1
}

func NewRobot(hw Hardware) *Robot {
	r := &Robot{}
	r.debug = NewDebugLog(nil)
	r.eng = protocol.NewEngine()
	r.sched = NewScheduler(&r.clock)
	r.matrix = NewMatrix(hw.Strip)
	r.motion = NewMotionController(hw.Servo)
	r.machine = NewMachine(&r.clock, r.matrix, r.motion, r.eng, r.debug)
	r.audio = NewAudioManager(hw.Audio, &r.clock, r.eng, r.sched, r.debug)
	r.sensors = NewSensorPoller(hw.Ranger, hw.Analog, &r.clock, r.eng, r.machine, r.debug)
	r.sensors.SetReporter(r.ReportError)
	r.camera = NewCameraStreamer(hw.Camera, &r.clock, r.eng, r.debug)

	r.eng.SetFaultCallback(func(cmd uint8, err error) {
		r.debug.Record(EvtProtocolFault, cmd, 0, r.clock.Now())
	})

	r.exprTimer.Handler = func(*Timer) uint8 {
		if expr, ok := canonicalExpression(r.machine.Current()); ok {
			_ = r.machine.OverrideExpression(expr)
		}
		return TimerDone
	}

	r.bindCommands()
	return r
}

// Start homes the gaze servos and brings the state machine up in its
// boot state.
func (r *Robot) Start() error {
	r.motion.Home()
	return r.machine.Start()
}

// Clock returns the robot's timebase. The loop owner advances it
// before each Tick.
func (r *Robot) Clock() *Clock { return &r.clock }

func (r *Robot) Engine() *protocol.Engine  { return r.eng }
func (r *Robot) Machine() *Machine         { return r.machine }
func (r *Robot) Matrix() *Matrix           { return r.matrix }
func (r *Robot) Motion() *MotionController { return r.motion }
func (r *Robot) Audio() *AudioManager      { return r.audio }
func (r *Robot) Sensors() *SensorPoller    { return r.sensors }
func (r *Robot) Camera() *CameraStreamer   { return r.camera }
func (r *Robot) Debug() *DebugLog          { return r.debug }

// Tick runs one control-loop iteration: feed inbound bytes, flush the
// outbound queue, then tick every component in fixed order. Component
// faults are pushed to the host as error reports, once per onset; only
// transport write errors are returned.
func (r *Robot) Tick(in []byte, w io.Writer) error {
	r.eng.Feed(in)
	err := r.eng.DrainOutbound(w)

	r.machine.Tick()
	r.latchFault(protocol.ComponentServo, protocol.ErrorActuator, r.motion.Tick())
	r.latchFault(protocol.ComponentLED, protocol.ErrorActuator, r.matrix.Refresh())
	r.latchFault(protocol.ComponentAudio, protocol.ErrorActuator, r.audio.Tick())
	r.sensors.Poll()
	r.latchFault(protocol.ComponentCamera, protocol.ErrorSensor, r.camera.Tick())
	r.sched.Dispatch()

	return err
}

// latchFault reports a component error on its first occurrence and
// re-arms once the component ticks cleanly again.
func (r *Robot) latchFault(comp protocol.Component, code protocol.ErrorCode, err error) {
	idx := int(comp) - 1
	if err == nil {
		r.faulted[idx] = false
		return
	}
	if r.faulted[idx] {
		return
	}
	r.faulted[idx] = true
	r.ReportError(code, comp, 0)
}

// ReportError queues a fault report for the host. Reports that do not
// fit the outbound queue are dropped like any other frame.
func (r *Robot) ReportError(code protocol.ErrorCode, comp protocol.Component, detail uint8) {
	r.debug.Record(EvtErrorReport, uint8(code), uint8(comp), r.clock.Now())
	_ = r.eng.Enqueue(protocol.Frame{
		Cmd:  protocol.CmdError,
		Data: []byte{uint8(code), uint8(comp), detail},
	})
}

func (r *Robot) freeMemory() uint32 {
	if r.FreeMem == nil {
		return 0
	}
	return r.FreeMem()
}
