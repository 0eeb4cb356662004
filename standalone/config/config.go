package config

import (
	"encoding/json"

	"dashan/core"
	"dashan/standalone"
)

// Load parses a JSON tuning blob and returns a Tuning with defaults
// applied.
func Load(jsonData []byte) (*standalone.Tuning, error) {
	var tuning standalone.Tuning

	err := json.Unmarshal(jsonData, &tuning)
	if err != nil {
		return nil, err
	}

	applyDefaults(&tuning)

	return &tuning, nil
}

// applyDefaults fills in missing tuning values with the firmware
// defaults.
func applyDefaults(tuning *standalone.Tuning) {
	if tuning.Brightness == 0 {
		tuning.Brightness = core.DefaultBrightness
	}
	if tuning.SensorIntervalMs == 0 {
		tuning.SensorIntervalMs = core.DefaultSensorInterval
	}
	if tuning.BatteryWarnPercent == 0 {
		tuning.BatteryWarnPercent = core.DefaultBatteryThreshold
	}
	if len(tuning.Steps) == 0 {
		tuning.Steps = DefaultSteps()
	}

	// Apply defaults to each step
	for i, step := range tuning.Steps {
		if step.HoldMs == 0 {
			step.HoldMs = 1000
		}
		tuning.Steps[i] = step
	}
}

// DefaultTuning returns the factory tuning with the stock routine.
func DefaultTuning() *standalone.Tuning {
	return &standalone.Tuning{
		Brightness:         core.DefaultBrightness,
		SensorIntervalMs:   core.DefaultSensorInterval,
		BatteryWarnPercent: core.DefaultBatteryThreshold,
		Steps:              DefaultSteps(),
	}
}

// DefaultSteps returns the stock demo routine: wake up, look around,
// pull a few faces, go back to sleep.
func DefaultSteps() []standalone.Step {
	return []standalone.Step{
		{Action: "state", State: "wake", HoldMs: 2500},
		{Action: "expression", Expression: "happy", HoldMs: 1500},
		{Action: "gaze", X: -80, HoldMs: 1000},
		{Action: "gaze", X: 80, HoldMs: 1000},
		{Action: "gaze", HoldMs: 800},
		{Action: "expression", Expression: "curious", HoldMs: 1500},
		{Action: "gaze", Y: 60, HoldMs: 1000},
		{Action: "gaze", Y: -60, HoldMs: 1000},
		{Action: "gaze", HoldMs: 800},
		{Action: "expression", Expression: "love", HoldMs: 1500},
		{Action: "state", State: "sleep", HoldMs: 3000},
	}
}
