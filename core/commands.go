package core

import "dashan/protocol"

// bindCommands registers every host-to-robot command on the protocol
// engine. The robot-to-host push commands (audio, image, sensor,
// error) have no inbound handler: receiving one counts as unknown.
func (r *Robot) bindCommands() {
	r.bind(protocol.CmdHeartbeat, r.handleHeartbeat)
	r.bind(protocol.CmdSetExpression, r.handleSetExpression)
	r.bind(protocol.CmdSetServo, r.handleSetServo)
	r.bind(protocol.CmdPlayAudio, r.handlePlayAudio)
	r.bind(protocol.CmdSetState, r.handleSetState)
	r.bind(protocol.CmdGetStatus, r.handleGetStatus)
	r.bind(protocol.CmdRecordControl, r.handleRecordControl)
	r.bind(protocol.CmdCameraControl, r.handleCameraControl)
	r.bind(protocol.CmdSetGaze, r.handleSetGaze)
}

// bind registers a handler wrapped with event-ring capture of the
// dispatch.
func (r *Robot) bind(cmd uint8, h protocol.Handler) {
	r.eng.Register(cmd, func(data []byte) error {
		r.debug.Record(EvtCommand, cmd, uint8(len(data)), r.clock.Now())
		return h(data)
	})
}

// rejectParam pushes an invalid-parameter report naming the offending
// command and hands the decode error back to the engine.
func (r *Robot) rejectParam(comp protocol.Component, cmd uint8, err error) error {
	r.ReportError(protocol.ErrorInvalidParam, comp, cmd)
	return err
}

// handleHeartbeat answers a ping with uptime seconds and free memory.
func (r *Robot) handleHeartbeat(data []byte) error {
	out := make([]byte, 0, 8)
	out = protocol.AppendU32(out, r.clock.Uptime())
	out = protocol.AppendU32(out, r.freeMemory())
	return r.eng.Enqueue(protocol.Frame{Cmd: protocol.CmdHeartbeat, Data: out})
}

// handleSetExpression shows a face override. A non-zero duration arms
// a timer that restores the state's canonical face afterwards; zero
// means the override holds until the next transition.
func (r *Robot) handleSetExpression(data []byte) error {
	id, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentLED, protocol.CmdSetExpression, err)
	}
	brightness, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentLED, protocol.CmdSetExpression, err)
	}
	duration, err := protocol.ReadU16(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentLED, protocol.CmdSetExpression, err)
	}

	r.matrix.SetBrightness(brightness)
	if err := r.machine.OverrideExpression(id); err != nil {
		return err
	}

	r.sched.Cancel(&r.exprTimer)
	if duration > 0 {
		r.exprTimer.WakeTime = r.clock.Now() + uint32(duration)
		r.sched.Schedule(&r.exprTimer)
	}
	return nil
}

// handleSetServo starts a servo ramp and replies with a one-byte
// accept/reject status.
func (r *Robot) handleSetServo(data []byte) error {
	id, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentServo, protocol.CmdSetServo, err)
	}
	angle, err := protocol.ReadU16(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentServo, protocol.CmdSetServo, err)
	}
	speed, err := protocol.ReadU16(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentServo, protocol.CmdSetServo, err)
	}

	status := uint8(0)
	if err := r.motion.SetAngle(id, angle, speed); err != nil {
		status = 1
		r.ReportError(protocol.ErrorInvalidParam, protocol.ComponentServo, id)
	}
	return r.eng.Enqueue(protocol.Frame{Cmd: protocol.CmdSetServo, Data: []byte{status}})
}

// handlePlayAudio queues PCM for playback. The format header is
// decoded for validation but the payload is treated as the native
// 16-bit mono stream regardless.
func (r *Robot) handlePlayAudio(data []byte) error {
	if _, err := protocol.ReadU8(&data); err != nil { // format
		return r.rejectParam(protocol.ComponentAudio, protocol.CmdPlayAudio, err)
	}
	if _, err := protocol.ReadU16(&data); err != nil { // sample rate
		return r.rejectParam(protocol.ComponentAudio, protocol.CmdPlayAudio, err)
	}
	if _, err := protocol.ReadU8(&data); err != nil { // channels
		return r.rejectParam(protocol.ComponentAudio, protocol.CmdPlayAudio, err)
	}
	r.audio.Play(data)
	return nil
}

// handleSetState transitions the interaction state machine. The
// transition itself emits the status reply.
func (r *Robot) handleSetState(data []byte) error {
	s, err := protocol.ReadU8(&data)
	if err != nil || State(s) > StateTalk {
		return r.rejectParam(0, protocol.CmdSetState, errInvalidState(err))
	}
	return r.machine.Transition(State(s))
}

func errInvalidState(err error) error {
	if err != nil {
		return err
	}
	return protocol.ErrShortPayload
}

// handleGetStatus queues a status report.
func (r *Robot) handleGetStatus(data []byte) error {
	return r.machine.EmitStatus()
}

// handleRecordControl starts or stops audio capture.
func (r *Robot) handleRecordControl(data []byte) error {
	action, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentAudio, protocol.CmdRecordControl, err)
	}
	maxDuration, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentAudio, protocol.CmdRecordControl, err)
	}

	switch action {
	case 1:
		r.audio.StartRecording(maxDuration)
	case 2:
		r.audio.StopRecording()
	default:
		r.ReportError(protocol.ErrorInvalidParam, protocol.ComponentAudio, action)
	}
	return nil
}

// handleCameraControl starts or stops periodic image streaming.
func (r *Robot) handleCameraControl(data []byte) error {
	action, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentCamera, protocol.CmdCameraControl, err)
	}
	interval, err := protocol.ReadU8(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentCamera, protocol.CmdCameraControl, err)
	}

	switch action {
	case 1:
		if err := r.camera.Start(interval); err != nil {
			r.ReportError(protocol.ErrorSensor, protocol.ComponentCamera, 0)
			return err
		}
	case 2:
		r.camera.Stop()
	default:
		r.ReportError(protocol.ErrorInvalidParam, protocol.ComponentCamera, action)
	}
	return nil
}

// handleSetGaze points both servos at a normalized target.
func (r *Robot) handleSetGaze(data []byte) error {
	x, err := protocol.ReadI16(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentServo, protocol.CmdSetGaze, err)
	}
	y, err := protocol.ReadI16(&data)
	if err != nil {
		return r.rejectParam(protocol.ComponentServo, protocol.CmdSetGaze, err)
	}
	r.motion.Gaze(x, y)
	return nil
}
