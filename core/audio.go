package core

import "dashan/protocol"

// PCM format of both audio directions: 16kHz 16-bit little-endian mono.
const (
	SampleRate = 16000

	// AudioBufferSize bounds both the retained recording and queued
	// playback data.
	AudioBufferSize = 10240

	// audioChunkSize is the most bytes moved through the peripheral
	// per control-loop tick in either direction.
	audioChunkSize = 2048

	// Capture push frames carry timestamp u32 + sample rate u16 ahead
	// of the PCM bytes.
	audioPushHeader = 6
	audioPushMax    = protocol.MaxDataLen - audioPushHeader
)

// AudioState is the manager's mode. The three are mutually exclusive;
// starting a recording abandons playback and vice versa.
type AudioState uint8

const (
	AudioIdle AudioState = iota
	AudioRecording
	AudioPlaying
)

func (s AudioState) String() string {
	switch s {
	case AudioIdle:
		return "idle"
	case AudioRecording:
		return "recording"
	case AudioPlaying:
		return "playing"
	}
	return "unknown"
}

// AudioManager moves PCM between the audio peripheral and the host in
// bounded per-tick chunks. While recording, captured chunks stream to
// the host as CmdAudioData frames and are also retained locally until
// the buffer fills; retention then stops silently but streaming
// continues. Playback drains a bounded buffer and returns to idle on
// its own.
type AudioManager struct {
	io    AudioIO
	clock *Clock
	eng   *protocol.Engine
	sched *Scheduler
	debug *DebugLog

	state  AudioState
	volume uint8

	recordBuf [AudioBufferSize]byte
	recordN   int
	recordLen int

	playBuf [AudioBufferSize]byte
	playLen int
	playIdx int

	scratch [audioChunkSize]byte

	stopTimer Timer
}

func NewAudioManager(io AudioIO, clock *Clock, eng *protocol.Engine, sched *Scheduler, debug *DebugLog) *AudioManager {
	a := &AudioManager{
		io:     io,
		clock:  clock,
		eng:    eng,
		sched:  sched,
		debug:  debug,
		volume: 80,
	}
	a.stopTimer.Handler = func(*Timer) uint8 {
		a.StopRecording()
		return TimerDone
	}
	return a
}

func (a *AudioManager) State() AudioState {
	return a.state
}

// SetVolume stores the output volume, clamped to 100.
func (a *AudioManager) SetVolume(v uint8) {
	if v > 100 {
		v = 100
	}
	a.volume = v
}

func (a *AudioManager) Volume() uint8 {
	return a.volume
}

// StartRecording begins capture, discarding any retained recording and
// abandoning playback in progress. A non-zero maxDurationS arms a
// deadline after which the recording stops on its own.
func (a *AudioManager) StartRecording(maxDurationS uint8) {
	a.sched.Cancel(&a.stopTimer)
	a.state = AudioRecording
	a.recordN = 0
	if maxDurationS > 0 {
		a.stopTimer.WakeTime = a.clock.Now() + uint32(maxDurationS)*1000
		a.sched.Schedule(&a.stopTimer)
	}
	if a.debug != nil {
		a.debug.Record(EvtAudio, uint8(AudioRecording), maxDurationS, a.clock.Now())
	}
}

// StopRecording finalizes the retained recording. A no-op unless a
// recording is in progress.
func (a *AudioManager) StopRecording() {
	if a.state != AudioRecording {
		return
	}
	a.sched.Cancel(&a.stopTimer)
	a.recordLen = a.recordN
	a.state = AudioIdle
	if a.debug != nil {
		a.debug.Record(EvtAudio, uint8(AudioIdle), 0, a.clock.Now())
	}
}

// Recorded returns the retained PCM of the last finalized recording.
func (a *AudioManager) Recorded() []byte {
	return a.recordBuf[:a.recordLen]
}

// Play queues PCM for playback, truncating anything beyond the buffer
// size. An empty slice is ignored. A recording in progress is
// abandoned without being finalized.
func (a *AudioManager) Play(pcm []byte) {
	if len(pcm) == 0 {
		return
	}
	a.sched.Cancel(&a.stopTimer)
	a.playLen = copy(a.playBuf[:], pcm)
	a.playIdx = 0
	a.state = AudioPlaying
	if a.debug != nil {
		a.debug.Record(EvtAudio, uint8(AudioPlaying), 0, a.clock.Now())
	}
}

// Tick moves at most one chunk of PCM in the direction of the current
// state.
func (a *AudioManager) Tick() error {
	switch a.state {
	case AudioRecording:
		n, err := a.io.ReadPCM(a.scratch[:])
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		if a.recordN+n < AudioBufferSize {
			copy(a.recordBuf[a.recordN:], a.scratch[:n])
			a.recordN += n
		}
		a.pushCapture(a.scratch[:n])

	case AudioPlaying:
		remaining := a.playLen - a.playIdx
		chunk := remaining
		if chunk > audioChunkSize {
			chunk = audioChunkSize
		}
		n, err := a.io.WritePCM(a.playBuf[a.playIdx : a.playIdx+chunk])
		a.playIdx += n
		if a.playIdx >= a.playLen {
			a.state = AudioIdle
			if a.debug != nil {
				a.debug.Record(EvtAudio, uint8(AudioIdle), 0, a.clock.Now())
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// pushCapture streams one captured chunk to the host, split across as
// many CmdAudioData frames as the payload bound requires. Frames that
// cannot be queued are dropped.
func (a *AudioManager) pushCapture(pcm []byte) {
	ts := a.clock.Now()
	for len(pcm) > 0 {
		n := len(pcm)
		if n > audioPushMax {
			n = audioPushMax
		}
		payload := make([]byte, 0, audioPushHeader+n)
		payload = protocol.AppendU32(payload, ts)
		payload = protocol.AppendU16(payload, SampleRate)
		payload = append(payload, pcm[:n]...)
		_ = a.eng.Enqueue(protocol.Frame{Cmd: protocol.CmdAudioData, Data: payload})
		pcm = pcm[n:]
	}
}
