package capture

import (
	"fmt"
	"io"
	"time"

	"dashan/host/conn"
	"dashan/protocol"
)

// Replay re-sends the host-to-robot frames of a session through c,
// pacing them by their recorded timestamps. speed scales the pacing:
// 1.0 replays in real time, 2.0 at double speed, 0 with no delays.
// Robot-to-host records are skipped. Returns the number of frames
// sent.
func Replay(r *Reader, c conn.Connection, speed float64) (int, error) {
	sent := 0
	var last uint32
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return sent, nil
		}
		if err != nil {
			return sent, fmt.Errorf("failed to read capture record: %w", err)
		}
		if rec.Dir != DirOut {
			continue
		}
		if speed > 0 && rec.T > last {
			gap := time.Duration(rec.T-last) * time.Millisecond
			time.Sleep(time.Duration(float64(gap) / speed))
		}
		last = rec.T
		raw := protocol.EncodeFrame(protocol.Frame{Cmd: rec.Cmd, Data: rec.Data})
		if _, err := c.Write(raw); err != nil {
			return sent, fmt.Errorf("failed to replay frame: %w", err)
		}
		sent++
	}
}
