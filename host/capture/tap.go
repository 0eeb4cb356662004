package capture

import (
	"sync"

	"dashan/host/conn"
	"dashan/protocol"
)

// Tap wraps a connection and records every frame crossing it. Bytes
// pass through untouched; each direction runs its own parser so
// partial reads and batched writes still yield whole frames.
type Tap struct {
	inner conn.Connection
	w     *Writer

	rmu sync.Mutex
	rx  *protocol.Engine

	wmu sync.Mutex
	tx  *protocol.Engine
}

// NewTap captures traffic on inner into w.
func NewTap(inner conn.Connection, w *Writer) *Tap {
	t := &Tap{
		inner: inner,
		w:     w,
		rx:    protocol.NewEngine(),
		tx:    protocol.NewEngine(),
	}
	for c := 0; c < 256; c++ {
		cmd := uint8(c)
		t.rx.Register(cmd, func(data []byte) error {
			return w.RecordIn(cmd, data)
		})
		t.tx.Register(cmd, func(data []byte) error {
			return w.RecordOut(cmd, data)
		})
	}
	return t
}

func (t *Tap) Read(p []byte) (int, error) {
	n, err := t.inner.Read(p)
	if n > 0 {
		t.rmu.Lock()
		t.rx.Feed(p[:n])
		t.rmu.Unlock()
	}
	return n, err
}

func (t *Tap) Write(p []byte) (int, error) {
	n, err := t.inner.Write(p)
	if n > 0 {
		t.wmu.Lock()
		t.tx.Feed(p[:n])
		t.wmu.Unlock()
	}
	return n, err
}

func (t *Tap) Close() error {
	return t.inner.Close()
}
