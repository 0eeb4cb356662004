package standalone

// Tuning holds the per-unit calibration and the demo script. Units are
// flashed with a JSON blob of this shape so a robot can be re-tuned
// without recompiling the firmware.
type Tuning struct {
	ServoTrimH int16 // microseconds added to every horizontal pulse
	ServoTrimV int16 // microseconds added to every vertical pulse

	Brightness         uint8  // LED matrix brightness scale (0 = default)
	SensorIntervalMs   uint16 // sensor poll cadence
	BatteryWarnPercent uint8  // low-battery warning threshold

	Steps []Step // demo routine, looped while no host is attached
}

// Step is one entry of the scripted demo routine.
type Step struct {
	Action     string // "state", "expression", "gaze" or "pause"
	State      string // target state, for "state"
	Expression string // face name, for "expression"
	X          int16  // gaze target, for "gaze"
	Y          int16
	HoldMs     uint16 // time to hold before advancing
}
