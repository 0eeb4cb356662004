package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeFrameKnownBytes(t *testing.T) {
	testCases := []struct {
		frame    Frame
		expected []byte
	}{
		{
			frame:    Frame{Cmd: CmdHeartbeat},
			expected: []byte{0xAA, 0x01, 0x00, 0x00, 0x6B},
		},
		{
			// set_state with state=Wake
			frame:    Frame{Cmd: CmdSetState, Data: []byte{0x02}},
			expected: []byte{0xAA, 0x07, 0x01, 0x00, 0x02, 0x07},
		},
	}

	for i, tc := range testCases {
		encoded := EncodeFrame(tc.frame)
		if !bytes.Equal(encoded, tc.expected) {
			t.Errorf("Test case %d: encoded % X, expected % X", i, encoded, tc.expected)
		}
	}
}

func TestFrameRoundTrip(t *testing.T) {
	maxData := make([]byte, MaxDataLen)
	for i := range maxData {
		maxData[i] = byte(i * 7)
	}

	frames := []Frame{
		{Cmd: CmdGetStatus},
		{Cmd: CmdSetExpression, Data: []byte{0x03, 200, 0xE8, 0x03}},
		{Cmd: CmdPlayAudio, Data: maxData},
		{Cmd: CmdError, Data: []byte{0x05, 0x05, 0x00}},
	}

	for i, f := range frames {
		decoded, err := DecodeFrame(EncodeFrame(f))
		if err != nil {
			t.Errorf("Frame %d: decode failed: %v", i, err)
			continue
		}
		if decoded.Cmd != f.Cmd {
			t.Errorf("Frame %d: cmd 0x%02X != 0x%02X", i, decoded.Cmd, f.Cmd)
		}
		if !bytes.Equal(decoded.Data, f.Data) {
			t.Errorf("Frame %d: payload mismatch (%d vs %d bytes)",
				i, len(decoded.Data), len(f.Data))
		}
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	good := EncodeFrame(Frame{Cmd: CmdSetState, Data: []byte{0x02}})

	corrupt := make([]byte, len(good))
	copy(corrupt, good)
	corrupt[len(corrupt)-1] ^= 0x01

	badHead := make([]byte, len(good))
	copy(badHead, good)
	badHead[0] = 0x55

	// Declares 2000 payload bytes
	oversize := []byte{0xAA, 0x04, 0xD0, 0x07, 0x00}

	testCases := []struct {
		name     string
		buf      []byte
		expected error
	}{
		{"truncated", good[:3], ErrFrameLength},
		{"extra byte", append(append([]byte{}, good...), 0x00), ErrFrameLength},
		{"wrong head", badHead, ErrBadHead},
		{"oversized length", oversize, ErrFrameTooLong},
		{"corrupt checksum", corrupt, ErrChecksumMismatch},
	}

	for _, tc := range testCases {
		if _, err := DecodeFrame(tc.buf); !errors.Is(err, tc.expected) {
			t.Errorf("%s: got error %v, expected %v", tc.name, err, tc.expected)
		}
	}
}

func TestAppendFramePreservesPrefix(t *testing.T) {
	prefix := []byte{0xDE, 0xAD}
	out := AppendFrame(prefix, Frame{Cmd: CmdHeartbeat})

	if !bytes.Equal(out[:2], []byte{0xDE, 0xAD}) {
		t.Errorf("Prefix clobbered: % X", out[:2])
	}
	if _, err := DecodeFrame(out[2:]); err != nil {
		t.Errorf("Appended frame does not decode: %v", err)
	}
}

func TestDecodeFrameCopiesPayload(t *testing.T) {
	buf := EncodeFrame(Frame{Cmd: CmdSetGaze, Data: []byte{0x64, 0x00, 0x9C, 0xFF}})
	decoded, err := DecodeFrame(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	buf[4] = 0xEE
	if decoded.Data[0] != 0x64 {
		t.Error("Decoded payload aliases the input buffer")
	}
}
