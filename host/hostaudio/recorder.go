package hostaudio

import (
	"fmt"
	"sync"
)

// Recorder captures host microphone audio and hands each buffer to a
// sink as s16le PCM. Capture runs on its own goroutine until Stop or
// the first error from the stream or the sink.
type Recorder struct {
	backend Backend
	stream  Stream

	stopChan chan struct{}
	doneChan chan struct{}

	mu      sync.Mutex
	running bool
	err     error
}

func NewRecorder(backend Backend) *Recorder {
	return &Recorder{backend: backend}
}

// Start opens the capture stream and begins delivering buffers to
// sink. The sink runs on the capture goroutine; returning an error
// from it ends the capture.
func (r *Recorder) Start(sink func(pcm []byte) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("recorder already running")
	}

	if err := r.backend.Initialize(); err != nil {
		return fmt.Errorf("audio init: %w", err)
	}
	stream, err := r.backend.CreateInputStream(SampleRate, 1, FramesPerBuffer)
	if err != nil {
		return fmt.Errorf("open capture stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		return fmt.Errorf("start capture stream: %w", err)
	}

	r.stream = stream
	r.stopChan = make(chan struct{})
	r.doneChan = make(chan struct{})
	r.running = true
	r.err = nil

	go r.captureLoop(sink)
	return nil
}

func (r *Recorder) captureLoop(sink func(pcm []byte) error) {
	defer close(r.doneChan)

	buf := make([]float32, FramesPerBuffer)
	for {
		select {
		case <-r.stopChan:
			return
		default:
		}

		if err := r.stream.Read(buf); err != nil {
			r.setErr(err)
			return
		}
		if err := sink(Float32ToPCM16(buf)); err != nil {
			r.setErr(err)
			return
		}
	}
}

func (r *Recorder) setErr(err error) {
	r.mu.Lock()
	if r.err == nil {
		r.err = err
	}
	r.mu.Unlock()
}

// Err returns the error that ended the capture, if any.
func (r *Recorder) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Stop ends the capture and releases the stream. Safe to call after
// the capture already died on its own.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	r.mu.Unlock()

	close(r.stopChan)
	<-r.doneChan

	var firstErr error
	if err := r.stream.Stop(); err != nil {
		firstErr = err
	}
	if err := r.stream.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := r.backend.Terminate(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
