// Package protocol implements the DaShan robot serial link protocol
package protocol

// Version is the firmware/protocol revision reported to hosts
const Version = "0.1.0"

// Framing constants
const (
	FrameHead     = 0xAA // First byte of every frame
	MaxDataLen    = 1024 // Maximum payload size
	FrameOverhead = 5    // head + cmd + len(2) + crc
	FrameMax      = FrameOverhead + MaxDataLen
)

// Command bytes. Direction is host->robot unless noted.
const (
	CmdHeartbeat     = 0x01 // empty ping; reply carries uptime + free memory
	CmdSetExpression = 0x02 // expression_id, brightness, duration_ms
	CmdSetServo      = 0x03 // servo_id, angle, speed
	CmdPlayAudio     = 0x04 // format, sample_rate, channels, pcm bytes
	CmdAudioData     = 0x05 // robot->host: timestamp, sample_rate, pcm bytes
	CmdImageData     = 0x06 // robot->host: encoded image chunk
	CmdSetState      = 0x07 // state id; reply is a status frame
	CmdGetStatus     = 0x08 // empty; reply is a status frame
	CmdSensorData    = 0x09 // robot->host: distance, proximity, light
	CmdRecordControl = 0x0A // action (1=start 2=stop), max_duration_s
	CmdCameraControl = 0x0B // action (1=start 2=stop), interval_s
	CmdSetGaze       = 0x0C // x, y in -100..100
	CmdError         = 0xFF // robot->host: error_code, component_id, detail
)

// ErrorCode identifies the failure class in a CmdError frame
type ErrorCode uint8

const (
	ErrorOK ErrorCode = iota
	ErrorMemory
	ErrorTimeout
	ErrorSensor
	ErrorActuator
	ErrorBatteryLow
	ErrorOverheat
	ErrorInvalidParam
)

// Component identifies the subsystem reporting an error
type Component uint8

const (
	ComponentLED Component = iota + 1
	ComponentServo
	ComponentCamera
	ComponentAudio
	ComponentSensor
)

// CmdName returns a short human-readable name for a command byte
func CmdName(cmd uint8) string {
	switch cmd {
	case CmdHeartbeat:
		return "heartbeat"
	case CmdSetExpression:
		return "set_expression"
	case CmdSetServo:
		return "set_servo"
	case CmdPlayAudio:
		return "play_audio"
	case CmdAudioData:
		return "audio_data"
	case CmdImageData:
		return "image_data"
	case CmdSetState:
		return "set_state"
	case CmdGetStatus:
		return "get_status"
	case CmdSensorData:
		return "sensor_data"
	case CmdRecordControl:
		return "record_control"
	case CmdCameraControl:
		return "camera_control"
	case CmdSetGaze:
		return "set_gaze"
	case CmdError:
		return "error"
	}
	return "unknown"
}

func (c ErrorCode) String() string {
	switch c {
	case ErrorOK:
		return "ok"
	case ErrorMemory:
		return "memory"
	case ErrorTimeout:
		return "timeout"
	case ErrorSensor:
		return "sensor"
	case ErrorActuator:
		return "actuator"
	case ErrorBatteryLow:
		return "battery_low"
	case ErrorOverheat:
		return "overheat"
	case ErrorInvalidParam:
		return "invalid_param"
	}
	return "unknown"
}

func (c Component) String() string {
	switch c {
	case ComponentLED:
		return "led"
	case ComponentServo:
		return "servo"
	case ComponentCamera:
		return "camera"
	case ComponentAudio:
		return "audio"
	case ComponentSensor:
		return "sensor"
	}
	return "unknown"
}
