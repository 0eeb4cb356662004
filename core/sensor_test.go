package core

import (
	"testing"

	"dashan/protocol"
)

func newTestSensors() (*SensorPoller, *MockRanger, *MockAnalog, *Clock, *protocol.Engine, *Machine) {
	m, clock, eng, _ := newTestMachine()
	ranger := &MockRanger{}
	analog := NewMockAnalog()
	p := NewSensorPoller(ranger, analog, clock, eng, m, NewDebugLog(nil))
	return p, ranger, analog, clock, eng, m
}

func TestSensorDistanceAndProximity(t *testing.T) {
	p, ranger, _, clock, eng, _ := newTestSensors()
	ranger.Echos = []uint32{1470} // 24cm

	clock.SetNow(100)
	p.Poll()

	r := p.Reading()
	if r.Distance != 24 {
		t.Errorf("Expected 24cm, got %d", r.Distance)
	}
	if !r.Proximity {
		t.Error("24cm should raise proximity")
	}
	if r.Light != 128 {
		t.Errorf("Expected mid-scale light 128, got %d", r.Light)
	}

	frames := drainFrames(t, eng)
	if len(frames) != 1 || frames[0].Cmd != protocol.CmdSensorData {
		t.Fatalf("Expected one sensor push, got %d frames", len(frames))
	}
	want := []byte{24, 0, 1, 128}
	if string(frames[0].Data) != string(want) {
		t.Errorf("Sensor payload: expected % x, got % x", want, frames[0].Data)
	}
}

func TestSensorFarTargetNotProximate(t *testing.T) {
	p, ranger, _, clock, _, _ := newTestSensors()
	ranger.Echos = []uint32{2000} // 34cm

	clock.SetNow(100)
	p.Poll()
	r := p.Reading()
	if r.Distance != 34 {
		t.Errorf("Expected 34cm, got %d", r.Distance)
	}
	if r.Proximity {
		t.Error("34cm must not raise proximity")
	}
}

func TestSensorTimeoutYieldsInvalid(t *testing.T) {
	p, _, _, clock, eng, _ := newTestSensors()
	// No scripted echos: every measurement times out.

	clock.SetNow(100)
	p.Poll()
	r := p.Reading()
	if r.Distance != InvalidDistance {
		t.Errorf("Expected sentinel distance, got %d", r.Distance)
	}
	if r.Proximity {
		t.Error("Timeout must not raise proximity")
	}

	frames := drainFrames(t, eng)
	if len(frames) != 1 {
		t.Fatalf("Expected one push, got %d", len(frames))
	}
	if frames[0].Data[0] != 0xFF || frames[0].Data[1] != 0xFF {
		t.Errorf("Expected 0xFFFF distance on the wire, got % x", frames[0].Data)
	}
}

func TestSensorIntervalGating(t *testing.T) {
	p, ranger, _, clock, eng, _ := newTestSensors()
	ranger.Echos = []uint32{1470, 2940}

	clock.SetNow(100)
	p.Poll()
	first := p.Reading()
	drainFrames(t, eng)

	// Within the interval: no ranging, no push, reading untouched.
	p.Poll()
	clock.SetNow(150)
	p.Poll()
	if len(ranger.Echos) != 1 {
		t.Error("Gated poll performed a ranging measurement")
	}
	if p.Reading() != first {
		t.Error("Gated poll changed the reading")
	}
	if frames := drainFrames(t, eng); len(frames) != 0 {
		t.Errorf("Gated poll pushed %d frames", len(frames))
	}

	clock.SetNow(200)
	p.Poll()
	if p.Reading().Distance != 49 {
		t.Errorf("Second measurement expected 49cm, got %d", p.Reading().Distance)
	}
}

func TestSensorLightAveraging(t *testing.T) {
	p, ranger, analog, clock, _, _ := newTestSensors()
	ranger.Echos = []uint32{1000}
	analog.Values[AnalogLight] = 0x1000

	clock.SetNow(100)
	p.Poll()
	if got := p.Reading().Light; got != 16 {
		t.Errorf("Expected light 16, got %d", got)
	}
}

func TestSensorDisabled(t *testing.T) {
	p, ranger, _, clock, eng, _ := newTestSensors()
	ranger.Echos = []uint32{1470}
	p.SetEnabled(false)

	clock.SetNow(500)
	p.Poll()
	if len(ranger.Echos) != 1 {
		t.Error("Disabled poller ranged")
	}
	if frames := drainFrames(t, eng); len(frames) != 0 {
		t.Error("Disabled poller pushed frames")
	}
}

func TestSensorCustomInterval(t *testing.T) {
	p, ranger, _, clock, eng, _ := newTestSensors()
	ranger.Echos = []uint32{1000, 1000, 1000}
	p.SetInterval(50)

	clock.SetNow(50)
	p.Poll()
	clock.SetNow(100)
	p.Poll()
	if len(ranger.Echos) != 1 {
		t.Errorf("Expected 2 measurements at 50ms cadence, %d echos left", len(ranger.Echos))
	}
	drainFrames(t, eng)
}

func TestSensorBatteryReporting(t *testing.T) {
	p, _, analog, clock, eng, machine := newTestSensors()

	var reports []uint8
	p.SetReporter(func(code protocol.ErrorCode, comp protocol.Component, detail uint8) {
		if code != protocol.ErrorBatteryLow || comp != protocol.ComponentSensor {
			t.Errorf("Unexpected report %v/%v", code, comp)
		}
		reports = append(reports, detail)
	})

	// 6553/65535 is 9 percent, below the default 20 percent threshold.
	analog.Values[AnalogBattery] = 6553
	clock.SetNow(100)
	p.Poll()
	drainFrames(t, eng)

	if machine.Battery() != 9 {
		t.Errorf("Expected machine battery 9, got %d", machine.Battery())
	}
	if len(reports) != 1 || reports[0] != 9 {
		t.Fatalf("Expected one low-battery report with detail 9, got %v", reports)
	}

	// Staying low does not repeat the report.
	clock.SetNow(200)
	p.Poll()
	if len(reports) != 1 {
		t.Errorf("Repeated report while still low: %v", reports)
	}

	// Recovering re-arms it.
	analog.Values[AnalogBattery] = 0xFFFF
	clock.SetNow(300)
	p.Poll()
	if machine.Battery() != 100 {
		t.Errorf("Expected recovery to 100, got %d", machine.Battery())
	}
	analog.Values[AnalogBattery] = 6553
	clock.SetNow(400)
	p.Poll()
	if len(reports) != 2 {
		t.Errorf("Expected a second report after recovery, got %v", reports)
	}
	drainFrames(t, eng)
}
