package standalone

import (
	"io"
	"testing"

	"dashan/core"
)

func newDemoRobot() (*core.Robot, *core.MockRanger) {
	hw, _, _, _, ranger, _ := core.MockHardware()
	r := core.NewRobot(hw)
	return r, ranger
}

// demoTick runs one control-loop pass: robot first, routine second.
func demoTick(t *testing.T, r *core.Robot, d *Demo) {
	t.Helper()
	if err := r.Tick(nil, io.Discard); err != nil {
		t.Fatalf("Robot tick failed: %v", err)
	}
	d.Tick()
}

func TestDemoConstructorRejectsBadInput(t *testing.T) {
	r, _ := newDemoRobot()
	tuning := &Tuning{Steps: []Step{{Action: "pause", HoldMs: 100}}}

	if _, err := NewDemo(nil, tuning); err == nil {
		t.Error("Expected error for nil robot")
	}
	if _, err := NewDemo(r, nil); err == nil {
		t.Error("Expected error for nil tuning")
	}
	if _, err := NewDemo(r, &Tuning{}); err == nil {
		t.Error("Expected error for empty script")
	}
}

func TestDemoInitializeValidatesScript(t *testing.T) {
	r, _ := newDemoRobot()

	bad := []Step{
		{Action: "dance", HoldMs: 100},
		{Action: "state", State: "zoomies", HoldMs: 100},
		{Action: "expression", Expression: "smug", HoldMs: 100},
	}
	for _, step := range bad {
		d, err := NewDemo(r, &Tuning{Steps: []Step{step}})
		if err != nil {
			t.Fatalf("Constructor failed: %v", err)
		}
		if err := d.Initialize(); err == nil {
			t.Errorf("Expected validation error for step %+v", step)
		}
	}
}

func TestDemoInitializeAppliesTuning(t *testing.T) {
	r, _ := newDemoRobot()
	tuning := &Tuning{
		Brightness:         150,
		SensorIntervalMs:   250,
		BatteryWarnPercent: 15,
		Steps:              []Step{{Action: "pause", HoldMs: 100}},
	}
	d, err := NewDemo(r, tuning)
	if err != nil {
		t.Fatalf("Constructor failed: %v", err)
	}

	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if got := r.Matrix().Brightness(); got != 150 {
		t.Errorf("Expected brightness 150, got %d", got)
	}
	if err := d.Initialize(); err == nil {
		t.Error("Expected error on second Initialize")
	}
}

func TestDemoStartRequiresInitialize(t *testing.T) {
	r, _ := newDemoRobot()
	d, _ := NewDemo(r, &Tuning{Steps: []Step{{Action: "pause", HoldMs: 100}}})
	if err := d.Start(); err == nil {
		t.Error("Expected error starting an uninitialized demo")
	}
}

func TestDemoAdvancesSteps(t *testing.T) {
	r, _ := newDemoRobot()
	r.Start()

	tuning := &Tuning{
		SensorIntervalMs: 100,
		Steps: []Step{
			{Action: "state", State: "think", HoldMs: 100},
			{Action: "expression", Expression: "happy", HoldMs: 100},
			{Action: "gaze", X: 50, Y: -50, HoldMs: 5000},
		},
	}
	d, _ := NewDemo(r, tuning)
	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := d.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if r.Machine().Current() != core.StateThink {
		t.Errorf("Expected think state, got %v", r.Machine().Current())
	}

	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.StepIndex() != 1 {
		t.Fatalf("Expected step 1, got %d", d.StepIndex())
	}
	if r.Machine().Expression() != core.ExprHappy {
		t.Errorf("Expected happy face, got %#x", r.Machine().Expression())
	}

	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.StepIndex() != 2 {
		t.Fatalf("Expected step 2, got %d", d.StepIndex())
	}
	for i := 0; i < 300 && r.Motion().Moving(); i++ {
		demoTick(t, r, d)
	}
	h, v := r.Motion().Angles()
	if h != 135 || v != 45 {
		t.Errorf("Expected gaze angles 135/45, got %d/%d", h, v)
	}
}

func TestDemoLoopsScript(t *testing.T) {
	r, _ := newDemoRobot()
	r.Start()

	tuning := &Tuning{
		SensorIntervalMs: 1000,
		Steps: []Step{
			{Action: "pause", HoldMs: 100},
			{Action: "pause", HoldMs: 100},
		},
	}
	d, _ := NewDemo(r, tuning)
	d.Initialize()
	d.Start()

	r.Clock().Advance(100)
	demoTick(t, r, d)
	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.StepIndex() != 0 {
		t.Errorf("Expected wrap to step 0, got %d", d.StepIndex())
	}
}

func TestDemoProximityReaction(t *testing.T) {
	r, ranger := newDemoRobot()
	r.Start()

	tuning := &Tuning{
		SensorIntervalMs: 100,
		Steps: []Step{
			{Action: "expression", Expression: "happy", HoldMs: 150},
			{Action: "expression", Expression: "angry", HoldMs: 150},
		},
	}
	d, _ := NewDemo(r, tuning)
	d.Initialize()
	d.Start()

	// Two close readings, then the ranger times out and proximity
	// clears.
	ranger.Echos = []uint32{1470, 1470}

	r.Clock().Advance(100)
	demoTick(t, r, d)
	if !d.Reacting() {
		t.Fatal("Expected proximity reaction")
	}
	if r.Machine().Expression() != reactionFace {
		t.Errorf("Expected startled face, got %#x", r.Machine().Expression())
	}

	// Still close: the script must not advance past its hold.
	r.Clock().Advance(100)
	demoTick(t, r, d)
	if !d.Reacting() || d.StepIndex() != 0 {
		t.Fatalf("Reaction should pin the script, step=%d", d.StepIndex())
	}

	// Clear: the interrupted step replays with a fresh hold.
	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.Reacting() {
		t.Fatal("Expected reaction to clear")
	}
	if r.Machine().Expression() != core.ExprHappy {
		t.Errorf("Expected happy face restored, got %#x", r.Machine().Expression())
	}

	// The replayed hold starts over: 100ms in it has not elapsed.
	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.StepIndex() != 0 {
		t.Errorf("Hold should have restarted, step=%d", d.StepIndex())
	}
	r.Clock().Advance(100)
	demoTick(t, r, d)
	if d.StepIndex() != 1 {
		t.Errorf("Expected step 1 after restarted hold, got %d", d.StepIndex())
	}
}

func TestDemoStopFreezesMotion(t *testing.T) {
	r, _ := newDemoRobot()
	r.Start()

	tuning := &Tuning{
		SensorIntervalMs: 1000,
		Steps:            []Step{{Action: "gaze", X: 80, HoldMs: 100}},
	}
	d, _ := NewDemo(r, tuning)
	d.Initialize()
	d.Start()

	if !r.Motion().Moving() {
		t.Fatal("Gaze step should start a move")
	}
	d.Stop()
	if r.Motion().Moving() {
		t.Error("Stop should freeze motion")
	}
	if d.IsRunning() {
		t.Error("Demo still running after Stop")
	}

	idx := d.StepIndex()
	r.Clock().Advance(1000)
	demoTick(t, r, d)
	if d.StepIndex() != idx {
		t.Error("Stopped demo advanced its script")
	}
}
