// Package bridge republishes robot telemetry onto NATS and relays
// commands from NATS subjects back over the serial link, so services
// on the network can talk to the robot without holding the port.
package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"dashan/core"
	"dashan/host/robot"
)

// Commander is the slice of the robot client the bridge drives.
// *robot.Client satisfies it.
type Commander interface {
	SetState(s core.State) (robot.Status, error)
	SetExpression(id, brightness uint8, durationMS uint16) error
	SetServo(id uint8, angle, speed uint16) error
	SetGaze(x, y int16) error
	StreamAudio(pcm []byte) error
	StartRecording(maxDurationS uint8) error
	StopRecording() error
	StartCamera(intervalS uint8) error
	StopCamera() error
}

var _ Commander = (*robot.Client)(nil)

// Conn is the slice of *nats.Conn the bridge uses, split out so tests
// can run without a server.
type Conn interface {
	Publish(subject string, data []byte) error
	Subscribe(subject string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

var _ Conn = (*nats.Conn)(nil)

// Connect dials a NATS server with retries.
func Connect(natsURL string) (*nats.Conn, error) {
	var nc *nats.Conn
	var err error
	for i := 0; i < 5; i++ {
		nc, err = nats.Connect(natsURL)
		if err == nil {
			return nc, nil
		}
		log.Printf("[bridge] connect attempt %d/5 failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to NATS after 5 attempts: %w", err)
}

// Subject builds one robot subject: robot.<id>.<kind>.
func Subject(robotID, kind string) string {
	return "robot." + robotID + "." + kind
}

// Bridge fans robot events out to NATS and command subjects back in.
// The Handle methods slot directly into the robot client's callbacks
// and therefore run on its read loop goroutine; everything the bridge
// touches from them is single-goroutine.
type Bridge struct {
	nc  Conn
	cmd Commander
	id  string

	asm robot.FrameAssembler
}

// New wires a bridge for one robot. Call Start to subscribe the
// command subjects and attach the Handle methods to the client.
func New(nc Conn, cmd Commander, robotID string) *Bridge {
	return &Bridge{nc: nc, cmd: cmd, id: robotID}
}

// Start subscribes every inbound command subject.
func (b *Bridge) Start() error {
	subs := map[string]nats.MsgHandler{
		Subject(b.id, "cmd.state"):      b.handleStateCmd,
		Subject(b.id, "cmd.expression"): b.handleExpressionCmd,
		Subject(b.id, "cmd.servo"):      b.handleServoCmd,
		Subject(b.id, "cmd.gaze"):       b.handleGazeCmd,
		Subject(b.id, "cmd.record"):     b.handleRecordCmd,
		Subject(b.id, "cmd.camera"):     b.handleCameraCmd,
		Subject(b.id, "cmd.play"):       b.handlePlayCmd,
	}
	for subject, handler := range subs {
		if _, err := b.nc.Subscribe(subject, handler); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
	}
	log.Printf("[bridge] serving robot %s", b.id)
	return nil
}

func (b *Bridge) publish(kind string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[bridge] marshal %s: %v", kind, err)
		return
	}
	if err := b.nc.Publish(Subject(b.id, kind), data); err != nil {
		log.Printf("[bridge] publish %s: %v", kind, err)
	}
}

// HandleStatus publishes one status frame.
func (b *Bridge) HandleStatus(s robot.Status) {
	b.publish("status", StatusEvent{
		State:      s.State.String(),
		Battery:    s.Battery,
		Expression: s.Expression,
		ServoH:     s.ServoH,
		ServoV:     s.ServoV,
	})
}

// HandleSensor publishes one sensor reading.
func (b *Bridge) HandleSensor(r robot.SensorReading) {
	b.publish("sensor", SensorEvent{
		DistanceCM: r.Distance,
		Valid:      r.Distance != core.InvalidDistance,
		Proximity:  r.Proximity,
		Light:      r.Light,
	})
}

// HandleErrorReport publishes one fault report.
func (b *Bridge) HandleErrorReport(e robot.ErrorReport) {
	b.publish("error", ErrorEvent{
		Code:      e.Code.String(),
		Component: e.Component.String(),
		Detail:    e.Detail,
	})
}

// HandleAudio publishes one captured audio chunk.
func (b *Bridge) HandleAudio(a robot.AudioChunk) {
	b.publish("audio", AudioEvent{
		TimestampMS: a.Timestamp,
		SampleRate:  a.SampleRate,
		PCM:         a.PCM,
	})
}

// HandleImage folds chunks into the assembler and publishes each
// completed frame.
func (b *Bridge) HandleImage(c robot.ImageChunk) {
	id, frame, done := b.asm.Add(c)
	if !done {
		return
	}
	b.publish("image", ImageEvent{Frame: id, Size: len(frame), Data: frame})
}

func (b *Bridge) handleStateCmd(msg *nats.Msg) {
	var cmd StateCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad state command: %v", err)
		return
	}
	s, ok := core.StateByName(cmd.State)
	if !ok {
		log.Printf("[bridge] unknown state %q", cmd.State)
		return
	}
	// Same-state transitions never reply; that timeout is not worth
	// reporting.
	if _, err := b.cmd.SetState(s); err != nil && !errors.Is(err, robot.ErrTimeout) {
		log.Printf("[bridge] set state: %v", err)
	}
}

func (b *Bridge) handleExpressionCmd(msg *nats.Msg) {
	var cmd ExpressionCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad expression command: %v", err)
		return
	}
	if err := b.cmd.SetExpression(cmd.ID, cmd.Brightness, cmd.DurationMS); err != nil {
		log.Printf("[bridge] set expression: %v", err)
	}
}

func (b *Bridge) handleServoCmd(msg *nats.Msg) {
	var cmd ServoCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad servo command: %v", err)
		return
	}
	if err := b.cmd.SetServo(cmd.ID, cmd.Angle, cmd.Speed); err != nil {
		log.Printf("[bridge] set servo: %v", err)
	}
}

func (b *Bridge) handleGazeCmd(msg *nats.Msg) {
	var cmd GazeCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad gaze command: %v", err)
		return
	}
	if err := b.cmd.SetGaze(cmd.X, cmd.Y); err != nil {
		log.Printf("[bridge] set gaze: %v", err)
	}
}

func (b *Bridge) handleRecordCmd(msg *nats.Msg) {
	var cmd RecordCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad record command: %v", err)
		return
	}
	var err error
	switch cmd.Action {
	case "start":
		err = b.cmd.StartRecording(cmd.MaxDurationS)
	case "stop":
		err = b.cmd.StopRecording()
	default:
		log.Printf("[bridge] unknown record action %q", cmd.Action)
		return
	}
	if err != nil {
		log.Printf("[bridge] record %s: %v", cmd.Action, err)
	}
}

func (b *Bridge) handleCameraCmd(msg *nats.Msg) {
	var cmd CameraCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad camera command: %v", err)
		return
	}
	var err error
	switch cmd.Action {
	case "start":
		err = b.cmd.StartCamera(cmd.IntervalS)
	case "stop":
		err = b.cmd.StopCamera()
	default:
		log.Printf("[bridge] unknown camera action %q", cmd.Action)
		return
	}
	if err != nil {
		log.Printf("[bridge] camera %s: %v", cmd.Action, err)
	}
}

func (b *Bridge) handlePlayCmd(msg *nats.Msg) {
	var cmd PlayCommand
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		log.Printf("[bridge] bad play command: %v", err)
		return
	}
	if len(cmd.PCM) == 0 {
		return
	}
	if err := b.cmd.StreamAudio(cmd.PCM); err != nil {
		log.Printf("[bridge] play audio: %v", err)
	}
}
