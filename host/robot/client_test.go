package robot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashan/core"
	"dashan/host/conn"
	"dashan/protocol"
)

func newTestClient(t *testing.T) (*Client, *conn.MockConnection) {
	t.Helper()
	mock := conn.NewMockConnection()
	c := NewClient(mock)
	c.Timeout = 500 * time.Millisecond
	t.Cleanup(func() { _ = c.Close() })
	return c, mock
}

func statusPayload(state core.State, battery, expr uint8, h, v uint16) []byte {
	out := []byte{uint8(state), battery, expr}
	out = protocol.AppendU16(out, h)
	out = protocol.AppendU16(out, v)
	return out
}

func TestClientPing(t *testing.T) {
	c, mock := newTestClient(t)
	mock.Respond(protocol.CmdHeartbeat, func(data []byte) []protocol.Frame {
		assert.Empty(t, data, "heartbeat request should carry no payload")
		payload := protocol.AppendU32(nil, 4242)
		payload = protocol.AppendU32(payload, 123456)
		return []protocol.Frame{{Cmd: protocol.CmdHeartbeat, Data: payload}}
	})
	c.Start()

	hb, err := c.Ping()
	require.NoError(t, err)
	assert.Equal(t, uint32(4242), hb.UptimeS)
	assert.Equal(t, uint32(123456), hb.FreeBytes)
}

func TestClientPingTimeout(t *testing.T) {
	c, _ := newTestClient(t)
	c.Timeout = 50 * time.Millisecond
	c.Start()

	_, err := c.Ping()
	require.ErrorIs(t, err, ErrTimeout)
}

func TestClientGetStatus(t *testing.T) {
	c, mock := newTestClient(t)
	mock.Respond(protocol.CmdGetStatus, func(data []byte) []protocol.Frame {
		return []protocol.Frame{{
			Cmd:  protocol.CmdGetStatus,
			Data: statusPayload(core.StateListen, 87, core.ExprListen, 120, 60),
		}}
	})
	c.Start()

	st, err := c.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, core.StateListen, st.State)
	assert.Equal(t, uint8(87), st.Battery)
	assert.Equal(t, uint8(core.ExprListen), st.Expression)
	assert.Equal(t, uint16(120), st.ServoH)
	assert.Equal(t, uint16(60), st.ServoV)
}

func TestClientSetState(t *testing.T) {
	c, mock := newTestClient(t)
	mock.Respond(protocol.CmdSetState, func(data []byte) []protocol.Frame {
		require.Len(t, data, 1)
		assert.Equal(t, uint8(core.StateTalk), data[0])
		return []protocol.Frame{{
			Cmd:  protocol.CmdSetState,
			Data: statusPayload(core.StateTalk, 90, core.ExprTalk, 90, 90),
		}}
	})
	c.Start()

	st, err := c.SetState(core.StateTalk)
	require.NoError(t, err)
	assert.Equal(t, core.StateTalk, st.State)
}

func TestClientSetServo(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		c, mock := newTestClient(t)
		mock.Respond(protocol.CmdSetServo, func(data []byte) []protocol.Frame {
			assert.Equal(t, []byte{1, 0x2D, 0x00, 0x32, 0x00}, data)
			return []protocol.Frame{{Cmd: protocol.CmdSetServo, Data: []byte{0}}}
		})
		c.Start()
		require.NoError(t, c.SetServo(1, 45, 50))
	})

	t.Run("rejected", func(t *testing.T) {
		c, mock := newTestClient(t)
		mock.Respond(protocol.CmdSetServo, func(data []byte) []protocol.Frame {
			return []protocol.Frame{{Cmd: protocol.CmdSetServo, Data: []byte{1}}}
		})
		c.Start()
		require.ErrorIs(t, c.SetServo(9, 45, 50), ErrServoRejected)
	})
}

func TestClientSetExpression(t *testing.T) {
	c, mock := newTestClient(t)
	c.Start()

	require.NoError(t, c.SetExpression(core.ExprHappy, 200, 1500))

	frames := mock.Written()
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(protocol.CmdSetExpression), frames[0].Cmd)
	assert.Equal(t, []byte{core.ExprHappy, 200, 0xDC, 0x05}, frames[0].Data)
}

func TestClientSetGaze(t *testing.T) {
	c, mock := newTestClient(t)
	c.Start()

	require.NoError(t, c.SetGaze(-100, 50))

	frames := mock.Written()
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(protocol.CmdSetGaze), frames[0].Cmd)
	assert.Equal(t, []byte{0x9C, 0xFF, 0x32, 0x00}, frames[0].Data)
}

func TestClientPlayAudio(t *testing.T) {
	c, mock := newTestClient(t)
	c.Start()

	pcm := []byte{0x10, 0x20, 0x30, 0x40}
	require.NoError(t, c.PlayAudio(pcm))

	frames := mock.Written()
	require.Len(t, frames, 1)
	assert.Equal(t, uint8(protocol.CmdPlayAudio), frames[0].Cmd)
	// format=1, rate=16000, channels=1, then PCM
	want := append([]byte{1, 0x80, 0x3E, 1}, pcm...)
	assert.Equal(t, want, frames[0].Data)

	err := c.PlayAudio(make([]byte, MaxPlayChunk+1))
	require.ErrorIs(t, err, protocol.ErrFrameTooLong)
}

func TestClientStreamAudioChunks(t *testing.T) {
	c, mock := newTestClient(t)
	c.Start()

	require.NoError(t, c.StreamAudio(make([]byte, MaxPlayChunk+10)))

	frames := mock.Written()
	require.Len(t, frames, 2)
	assert.Len(t, frames[0].Data, playAudioHeader+MaxPlayChunk)
	assert.Len(t, frames[1].Data, playAudioHeader+10)
}

func TestClientRecordAndCameraControls(t *testing.T) {
	c, mock := newTestClient(t)
	c.Start()

	require.NoError(t, c.StartRecording(30))
	require.NoError(t, c.StopRecording())
	require.NoError(t, c.StartCamera(2))
	require.NoError(t, c.StopCamera())

	frames := mock.Written()
	require.Len(t, frames, 4)
	assert.Equal(t, []byte{1, 30}, frames[0].Data)
	assert.Equal(t, []byte{2, 0}, frames[1].Data)
	assert.Equal(t, uint8(protocol.CmdCameraControl), frames[2].Cmd)
	assert.Equal(t, []byte{1, 2}, frames[2].Data)
	assert.Equal(t, []byte{2, 0}, frames[3].Data)
}

func TestClientPushCallbacks(t *testing.T) {
	c, mock := newTestClient(t)

	sensors := make(chan SensorReading, 1)
	audio := make(chan AudioChunk, 1)
	images := make(chan ImageChunk, 1)
	reports := make(chan ErrorReport, 1)
	c.OnSensor(func(r SensorReading) { sensors <- r })
	c.OnAudio(func(a AudioChunk) { audio <- a })
	c.OnImage(func(i ImageChunk) { images <- i })
	c.OnErrorReport(func(e ErrorReport) { reports <- e })
	c.Start()

	sensorData := protocol.AppendU16(nil, 25)
	sensorData = append(sensorData, 1, 180)
	mock.Push(protocol.Frame{Cmd: protocol.CmdSensorData, Data: sensorData})

	audioData := protocol.AppendU32(nil, 1000)
	audioData = protocol.AppendU16(audioData, core.SampleRate)
	audioData = append(audioData, 0xAB, 0xCD)
	mock.Push(protocol.Frame{Cmd: protocol.CmdAudioData, Data: audioData})

	imgData := protocol.AppendU16(nil, 7)
	imgData = protocol.AppendU16(imgData, 0)
	imgData = protocol.AppendU16(imgData, 2)
	imgData = append(imgData, 0x11, 0x22)
	mock.Push(protocol.Frame{Cmd: protocol.CmdImageData, Data: imgData})

	mock.Push(protocol.Frame{Cmd: protocol.CmdError, Data: []byte{
		uint8(protocol.ErrorBatteryLow), uint8(protocol.ComponentSensor), 15,
	}})

	select {
	case r := <-sensors:
		assert.Equal(t, uint16(25), r.Distance)
		assert.True(t, r.Proximity)
		assert.Equal(t, uint8(180), r.Light)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for sensor callback")
	}

	select {
	case a := <-audio:
		assert.Equal(t, uint32(1000), a.Timestamp)
		assert.Equal(t, uint16(core.SampleRate), a.SampleRate)
		assert.Equal(t, []byte{0xAB, 0xCD}, a.PCM)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for audio callback")
	}

	select {
	case i := <-images:
		assert.Equal(t, uint16(7), i.Frame)
		assert.Equal(t, uint16(2), i.Total)
		assert.Equal(t, []byte{0x11, 0x22}, i.Data)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for image callback")
	}

	select {
	case e := <-reports:
		assert.Equal(t, protocol.ErrorBatteryLow, e.Code)
		assert.Equal(t, protocol.ComponentSensor, e.Component)
		assert.Equal(t, uint8(15), e.Detail)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error report callback")
	}
}

func TestClientUnsolicitedStatusPush(t *testing.T) {
	c, mock := newTestClient(t)

	statuses := make(chan Status, 1)
	c.OnStatus(func(s Status) { statuses <- s })
	c.Start()

	// Autonomous transitions arrive as set_state frames nobody asked for.
	mock.Push(protocol.Frame{
		Cmd:  protocol.CmdSetState,
		Data: statusPayload(core.StateListen, 77, core.ExprListen, 90, 90),
	})

	select {
	case s := <-statuses:
		assert.Equal(t, core.StateListen, s.State)
		assert.Equal(t, uint8(77), s.Battery)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for status callback")
	}
}

func TestClientProtocolFault(t *testing.T) {
	c, mock := newTestClient(t)

	faults := make(chan error, 1)
	c.OnProtocolFault(func(cmd uint8, err error) { faults <- err })
	c.Start()

	raw := protocol.EncodeFrame(protocol.Frame{Cmd: protocol.CmdHeartbeat})
	raw[len(raw)-1] ^= 0xFF
	mock.PushRaw(raw)

	select {
	case err := <-faults:
		assert.ErrorIs(t, err, protocol.ErrChecksumMismatch)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fault callback")
	}
}

func TestClientCloseIsIdempotent(t *testing.T) {
	mock := conn.NewMockConnection()
	c := NewClient(mock)
	c.Start()

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	err := c.SetGaze(0, 0)
	require.Error(t, err, "send after close should fail")
}

func TestFrameAssembler(t *testing.T) {
	var a FrameAssembler

	_, _, done := a.Add(ImageChunk{Frame: 1, Offset: 0, Total: 4, Data: []byte{1, 2}})
	assert.False(t, done)
	assert.True(t, a.Pending())

	id, frame, done := a.Add(ImageChunk{Frame: 1, Offset: 2, Total: 4, Data: []byte{3, 4}})
	require.True(t, done)
	assert.Equal(t, uint16(1), id)
	assert.Equal(t, []byte{1, 2, 3, 4}, frame)
	assert.False(t, a.Pending())

	// A chunk from a newer frame abandons the partial one.
	_, _, done = a.Add(ImageChunk{Frame: 2, Offset: 0, Total: 4, Data: []byte{5, 6}})
	assert.False(t, done)
	id, frame, done = a.Add(ImageChunk{Frame: 3, Offset: 0, Total: 2, Data: []byte{7, 8}})
	require.True(t, done)
	assert.Equal(t, uint16(3), id)
	assert.Equal(t, []byte{7, 8}, frame)
}
