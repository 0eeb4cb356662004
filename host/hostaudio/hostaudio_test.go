package hostaudio

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCM16ToFloat32(t *testing.T) {
	cases := []struct {
		name     string
		input    []byte
		expected []float32
	}{
		{
			name:     "positive",
			input:    []byte{0x00, 0x01},
			expected: []float32{256.0 / 32767.0},
		},
		{
			name:     "full_scale",
			input:    []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80},
			expected: []float32{0.0, 1.0, -32768.0 / 32767.0},
		},
		{
			name:     "odd_trailing_byte_dropped",
			input:    []byte{0xFF, 0x7F, 0x42},
			expected: []float32{1.0},
		},
		{
			name:     "empty",
			input:    []byte{},
			expected: []float32{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := PCM16ToFloat32(tc.input)
			require.Len(t, got, len(tc.expected))
			for i := range tc.expected {
				assert.InDelta(t, tc.expected[i], got[i], 1e-6)
			}
		})
	}
}

func TestFloat32ToPCM16(t *testing.T) {
	got := Float32ToPCM16([]float32{0.5, -0.5, 1.0, -1.0})
	want := []byte{0x00, 0x40, 0x00, 0xC0, 0xFF, 0x7F, 0x01, 0x80}
	assert.Equal(t, want, got)

	// Out-of-range samples clamp instead of wrapping.
	got = Float32ToPCM16([]float32{2.0, -2.0})
	assert.Equal(t, []byte{0xFF, 0x7F, 0x01, 0x80}, got)
}

func TestMockBackendLifecycle(t *testing.T) {
	t.Run("initialize_and_terminate", func(t *testing.T) {
		backend := NewMockBackend()
		require.NoError(t, backend.Initialize())
		require.NoError(t, backend.Terminate())
	})

	t.Run("init_error", func(t *testing.T) {
		backend := NewMockBackend()
		backend.SetInitError(fmt.Errorf("no sound card"))
		err := backend.Initialize()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no sound card")
	})

	t.Run("stream_requires_init", func(t *testing.T) {
		backend := NewMockBackend()
		_, err := backend.CreateOutputStream(SampleRate, 1, FramesPerBuffer)
		require.Error(t, err)
	})

	t.Run("stream_direction_enforced", func(t *testing.T) {
		backend := NewMockBackend()
		require.NoError(t, backend.Initialize())

		in, err := backend.CreateInputStream(SampleRate, 1, 8)
		require.NoError(t, err)
		require.NoError(t, in.Start())
		require.Error(t, in.Write(make([]float32, 8)))

		out, err := backend.CreateOutputStream(SampleRate, 1, 8)
		require.NoError(t, err)
		require.NoError(t, out.Start())
		require.Error(t, out.Read(make([]float32, 8)))
	})
}

func TestPlayerRegroupsChunks(t *testing.T) {
	backend := NewMockBackend()
	player := NewPlayer(backend)
	require.NoError(t, player.Open())
	defer func() { _ = player.Close() }()

	half := make([]byte, 600) // 300 samples, less than one buffer
	require.NoError(t, player.Play(half))
	assert.Empty(t, backend.Played(), "partial buffer should be held back")

	require.NoError(t, player.Play(half))
	played := backend.Played()
	require.Len(t, played, 1, "two chunks should complete one buffer")
	assert.Len(t, played[0], FramesPerBuffer)

	// 600 - 512 = 88 samples remain; Flush pads them with silence.
	require.NoError(t, player.Flush())
	played = backend.Played()
	require.Len(t, played, 2)
	assert.Len(t, played[1], FramesPerBuffer)
	assert.Equal(t, float32(0), played[1][FramesPerBuffer-1])
}

func TestPlayerWriteError(t *testing.T) {
	backend := NewMockBackend()
	player := NewPlayer(backend)
	require.NoError(t, player.Open())
	defer func() { _ = player.Close() }()

	backend.LastStream().SetWriteError(fmt.Errorf("device gone"))
	err := player.Play(make([]byte, FramesPerBuffer*2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "device gone")
}

func TestRecorderDeliversPCM(t *testing.T) {
	backend := NewMockBackend()
	backend.SetSimulateRealTiming(true)
	rec := NewRecorder(backend)

	chunks := make(chan []byte, 4)
	err := rec.Start(func(pcm []byte) error {
		select {
		case chunks <- pcm:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	backend.LastStream().SetGenerator(func(buf []float32) {
		for i := range buf {
			buf[i] = 0.5
		}
	})

	var got []byte
	deadline := time.After(2 * time.Second)
	for got == nil {
		select {
		case pcm := <-chunks:
			// The first buffer may predate the generator; wait for one
			// carrying signal.
			if pcm[1] != 0 {
				got = pcm
			}
		case <-deadline:
			t.Fatal("timed out waiting for captured audio")
		}
	}
	require.NoError(t, rec.Stop())

	assert.Len(t, got, FramesPerBuffer*2)
	assert.Equal(t, byte(0x00), got[0])
	assert.Equal(t, byte(0x40), got[1], "0.5 should encode as 0x4000")
}

func TestRecorderSinkErrorStopsCapture(t *testing.T) {
	backend := NewMockBackend()
	rec := NewRecorder(backend)

	sinkErr := fmt.Errorf("disk full")
	require.NoError(t, rec.Start(func(pcm []byte) error { return sinkErr }))

	deadline := time.Now().Add(2 * time.Second)
	for rec.Err() == nil {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for capture to stop")
		}
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, sinkErr, rec.Err())
	require.NoError(t, rec.Stop())
}

func TestRecorderDoubleStart(t *testing.T) {
	backend := NewMockBackend()
	backend.SetSimulateRealTiming(true)
	rec := NewRecorder(backend)

	require.NoError(t, rec.Start(func([]byte) error { return nil }))
	err := rec.Start(func([]byte) error { return nil })
	require.Error(t, err, "second start should fail while running")
	require.NoError(t, rec.Stop())
}
