package config

import (
	"testing"

	"dashan/core"
)

func TestLoadAppliesDefaults(t *testing.T) {
	tuning, err := Load([]byte(`{}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tuning.Brightness != core.DefaultBrightness {
		t.Errorf("Expected default brightness, got %d", tuning.Brightness)
	}
	if tuning.SensorIntervalMs != core.DefaultSensorInterval {
		t.Errorf("Expected default sensor interval, got %d", tuning.SensorIntervalMs)
	}
	if tuning.BatteryWarnPercent != core.DefaultBatteryThreshold {
		t.Errorf("Expected default battery threshold, got %d", tuning.BatteryWarnPercent)
	}
	if len(tuning.Steps) == 0 {
		t.Fatal("Expected the stock routine")
	}
	for i, step := range tuning.Steps {
		if step.HoldMs == 0 {
			t.Errorf("Step %d has no hold time", i)
		}
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	blob := []byte(`{
		"ServoTrimH": -40,
		"ServoTrimV": 25,
		"Brightness": 120,
		"SensorIntervalMs": 250,
		"Steps": [
			{"Action": "gaze", "X": 10, "Y": -10},
			{"Action": "expression", "Expression": "happy", "HoldMs": 500}
		]
	}`)

	tuning, err := Load(blob)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tuning.ServoTrimH != -40 || tuning.ServoTrimV != 25 {
		t.Errorf("Trim not kept: %d/%d", tuning.ServoTrimH, tuning.ServoTrimV)
	}
	if tuning.Brightness != 120 {
		t.Errorf("Expected brightness 120, got %d", tuning.Brightness)
	}
	if tuning.SensorIntervalMs != 250 {
		t.Errorf("Expected interval 250, got %d", tuning.SensorIntervalMs)
	}
	if len(tuning.Steps) != 2 {
		t.Fatalf("Expected 2 steps, got %d", len(tuning.Steps))
	}
	if tuning.Steps[0].HoldMs != 1000 {
		t.Errorf("Expected defaulted hold 1000, got %d", tuning.Steps[0].HoldMs)
	}
	if tuning.Steps[1].HoldMs != 500 {
		t.Errorf("Expected explicit hold 500, got %d", tuning.Steps[1].HoldMs)
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	if _, err := Load([]byte(`{"Steps": [`)); err == nil {
		t.Error("Expected error for truncated JSON")
	}
}

func TestDefaultStepsValidate(t *testing.T) {
	for i, step := range DefaultSteps() {
		switch step.Action {
		case "state":
			if _, ok := core.StateByName(step.State); !ok {
				t.Errorf("Step %d names unknown state %q", i, step.State)
			}
		case "expression":
			if _, ok := core.ExpressionByName(step.Expression); !ok {
				t.Errorf("Step %d names unknown expression %q", i, step.Expression)
			}
		case "gaze", "pause":
		default:
			t.Errorf("Step %d has unknown action %q", i, step.Action)
		}
		if step.HoldMs == 0 {
			t.Errorf("Step %d has no hold time", i)
		}
	}
}
