package robot

import (
	"dashan/core"
	"dashan/protocol"
)

// Heartbeat is the robot's reply to a ping.
type Heartbeat struct {
	UptimeS   uint32
	FreeBytes uint32
}

// Status is the decoded form of the robot's 7-byte status report,
// pushed on every state transition and in reply to a status request.
type Status struct {
	State      core.State
	Battery    uint8
	Expression uint8
	ServoH     uint16
	ServoV     uint16
}

// SensorReading is one environment sample pushed by the robot.
type SensorReading struct {
	Distance  uint16 // cm, 0xFFFF when ranging timed out
	Proximity bool
	Light     uint8
}

// AudioChunk is one frame of captured microphone PCM.
type AudioChunk struct {
	Timestamp  uint32 // robot clock ms at capture
	SampleRate uint16
	PCM        []byte
}

// ImageChunk is one slice of a streamed camera frame.
type ImageChunk struct {
	Frame  uint16
	Offset uint16
	Total  uint16
	Data   []byte
}

// ErrorReport is a fault pushed by the robot.
type ErrorReport struct {
	Code      protocol.ErrorCode
	Component protocol.Component
	Detail    uint8
}

func decodeHeartbeat(data []byte) (Heartbeat, error) {
	var h Heartbeat
	var err error
	if h.UptimeS, err = protocol.ReadU32(&data); err != nil {
		return h, err
	}
	h.FreeBytes, err = protocol.ReadU32(&data)
	return h, err
}

func decodeStatus(data []byte) (Status, error) {
	var s Status
	state, err := protocol.ReadU8(&data)
	if err != nil {
		return s, err
	}
	s.State = core.State(state)
	if s.Battery, err = protocol.ReadU8(&data); err != nil {
		return s, err
	}
	if s.Expression, err = protocol.ReadU8(&data); err != nil {
		return s, err
	}
	if s.ServoH, err = protocol.ReadU16(&data); err != nil {
		return s, err
	}
	s.ServoV, err = protocol.ReadU16(&data)
	return s, err
}

func decodeSensorReading(data []byte) (SensorReading, error) {
	var r SensorReading
	var err error
	if r.Distance, err = protocol.ReadU16(&data); err != nil {
		return r, err
	}
	prox, err := protocol.ReadU8(&data)
	if err != nil {
		return r, err
	}
	r.Proximity = prox != 0
	r.Light, err = protocol.ReadU8(&data)
	return r, err
}

func decodeAudioChunk(data []byte) (AudioChunk, error) {
	var a AudioChunk
	var err error
	if a.Timestamp, err = protocol.ReadU32(&data); err != nil {
		return a, err
	}
	if a.SampleRate, err = protocol.ReadU16(&data); err != nil {
		return a, err
	}
	a.PCM = make([]byte, len(data))
	copy(a.PCM, data)
	return a, nil
}

func decodeImageChunk(data []byte) (ImageChunk, error) {
	var c ImageChunk
	var err error
	if c.Frame, err = protocol.ReadU16(&data); err != nil {
		return c, err
	}
	if c.Offset, err = protocol.ReadU16(&data); err != nil {
		return c, err
	}
	if c.Total, err = protocol.ReadU16(&data); err != nil {
		return c, err
	}
	c.Data = make([]byte, len(data))
	copy(c.Data, data)
	return c, nil
}

func decodeErrorReport(data []byte) (ErrorReport, error) {
	var e ErrorReport
	code, err := protocol.ReadU8(&data)
	if err != nil {
		return e, err
	}
	e.Code = protocol.ErrorCode(code)
	comp, err := protocol.ReadU8(&data)
	if err != nil {
		return e, err
	}
	e.Component = protocol.Component(comp)
	e.Detail, err = protocol.ReadU8(&data)
	return e, err
}
