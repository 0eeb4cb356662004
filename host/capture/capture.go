// Package capture records robot sessions to CBOR files: every frame
// crossing the link, timestamped and tagged with its direction, so a
// session can be inspected or replayed later.
package capture

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion identifies the capture file layout.
const FormatVersion = 1

// Frame directions.
const (
	DirIn  = 1 // robot -> host
	DirOut = 2 // host -> robot
)

// Header is the first CBOR value in a capture file.
type Header struct {
	Version uint8  `cbor:"1,keyasint"`
	RobotID string `cbor:"2,keyasint"`
	Started int64  `cbor:"3,keyasint"` // unix seconds
}

// Record is one captured frame. T is milliseconds since the session
// started.
type Record struct {
	T    uint32 `cbor:"1,keyasint"`
	Dir  uint8  `cbor:"2,keyasint"`
	Cmd  uint8  `cbor:"3,keyasint"`
	Data []byte `cbor:"4,keyasint"`
}

// Writer appends capture records to a stream. Safe for concurrent
// use: sends and receives hit it from different goroutines.
type Writer struct {
	mu    sync.Mutex
	enc   *cbor.Encoder
	start time.Time
	now   func() time.Time
}

// NewWriter writes the header and returns a writer for the session's
// records.
func NewWriter(w io.Writer, robotID string) (*Writer, error) {
	cw := &Writer{
		enc: cbor.NewEncoder(w),
		now: time.Now,
	}
	cw.start = cw.now()
	hdr := Header{
		Version: FormatVersion,
		RobotID: robotID,
		Started: cw.start.Unix(),
	}
	if err := cw.enc.Encode(hdr); err != nil {
		return nil, fmt.Errorf("failed to write capture header: %w", err)
	}
	return cw, nil
}

// RecordIn captures one robot-to-host frame.
func (w *Writer) RecordIn(cmd uint8, data []byte) error {
	return w.record(DirIn, cmd, data)
}

// RecordOut captures one host-to-robot frame.
func (w *Writer) RecordOut(cmd uint8, data []byte) error {
	return w.record(DirOut, cmd, data)
}

func (w *Writer) record(dir, cmd uint8, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	rec := Record{
		T:   uint32(w.now().Sub(w.start).Milliseconds()),
		Dir: dir,
		Cmd: cmd,
	}
	if len(data) > 0 {
		rec.Data = make([]byte, len(data))
		copy(rec.Data, data)
	}
	return w.enc.Encode(rec)
}

// Reader walks a capture file.
type Reader struct {
	dec    *cbor.Decoder
	header Header
}

// NewReader validates the header and positions the reader at the
// first record.
func NewReader(r io.Reader) (*Reader, error) {
	cr := &Reader{dec: cbor.NewDecoder(r)}
	if err := cr.dec.Decode(&cr.header); err != nil {
		return nil, fmt.Errorf("failed to read capture header: %w", err)
	}
	if cr.header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported capture version %d", cr.header.Version)
	}
	return cr, nil
}

// Header returns the session metadata.
func (r *Reader) Header() Header {
	return r.header
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	var rec Record
	err := r.dec.Decode(&rec)
	return rec, err
}
