package bridge

// Telemetry published to NATS. PCM and image bytes ride the default
// base64 encoding of []byte in JSON.

// StatusEvent mirrors a robot status frame.
type StatusEvent struct {
	State      string `json:"state"`
	Battery    uint8  `json:"battery"`
	Expression uint8  `json:"expression"`
	ServoH     uint16 `json:"servo_h"`
	ServoV     uint16 `json:"servo_v"`
}

// SensorEvent mirrors a sensor push. Valid is false when ranging
// timed out and the distance is the sentinel value.
type SensorEvent struct {
	DistanceCM uint16 `json:"distance_cm"`
	Valid      bool   `json:"valid"`
	Proximity  bool   `json:"proximity"`
	Light      uint8  `json:"light"`
}

// ErrorEvent mirrors a robot fault report.
type ErrorEvent struct {
	Code      string `json:"code"`
	Component string `json:"component"`
	Detail    uint8  `json:"detail"`
}

// AudioEvent carries one captured audio chunk.
type AudioEvent struct {
	TimestampMS uint32 `json:"timestamp_ms"`
	SampleRate  uint16 `json:"sample_rate"`
	PCM         []byte `json:"pcm"`
}

// ImageEvent carries one fully reassembled camera frame.
type ImageEvent struct {
	Frame uint16 `json:"frame"`
	Size  int    `json:"size"`
	Data  []byte `json:"data"`
}

// Commands accepted from NATS.

// StateCommand requests an interaction state by name.
type StateCommand struct {
	State string `json:"state"`
}

// ExpressionCommand shows a face override.
type ExpressionCommand struct {
	ID         uint8  `json:"id"`
	Brightness uint8  `json:"brightness"`
	DurationMS uint16 `json:"duration_ms"`
}

// ServoCommand moves one gaze servo.
type ServoCommand struct {
	ID    uint8  `json:"id"`
	Angle uint16 `json:"angle"`
	Speed uint16 `json:"speed"`
}

// GazeCommand points both servos at a normalized target.
type GazeCommand struct {
	X int16 `json:"x"`
	Y int16 `json:"y"`
}

// RecordCommand starts or stops robot audio capture. Action is
// "start" or "stop".
type RecordCommand struct {
	Action       string `json:"action"`
	MaxDurationS uint8  `json:"max_duration_s"`
}

// CameraCommand starts or stops robot image streaming. Action is
// "start" or "stop".
type CameraCommand struct {
	Action    string `json:"action"`
	IntervalS uint8  `json:"interval_s"`
}

// PlayCommand plays s16le PCM through the robot speaker.
type PlayCommand struct {
	PCM []byte `json:"pcm"`
}
