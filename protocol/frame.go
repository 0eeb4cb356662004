package protocol

import "errors"

var (
	ErrBadHead          = errors.New("frame does not start with head byte")
	ErrFrameLength      = errors.New("frame length does not match declared payload")
	ErrFrameTooLong     = errors.New("frame payload exceeds maximum")
	ErrChecksumMismatch = errors.New("frame checksum mismatch")
)

// Frame is one decoded protocol frame. Data holds only the payload,
// never the framing bytes.
type Frame struct {
	Cmd  uint8
	Data []byte
}

// AppendFrame appends the serialized form of f to dst and returns the
// extended slice. The checksum is computed over CMD, LEN and DATA.
func AppendFrame(dst []byte, f Frame) []byte {
	n := len(dst)
	dst = append(dst, FrameHead, f.Cmd,
		uint8(len(f.Data)), uint8(len(f.Data)>>8))
	dst = append(dst, f.Data...)
	return append(dst, Checksum(dst[n+1:]))
}

// EncodeFrame returns a freshly allocated serialized frame.
func EncodeFrame(f Frame) []byte {
	return AppendFrame(make([]byte, 0, FrameOverhead+len(f.Data)), f)
}

// DecodeFrame parses a buffer holding exactly one serialized frame.
// The returned payload is a copy and does not alias buf.
func DecodeFrame(buf []byte) (Frame, error) {
	if len(buf) < FrameOverhead {
		return Frame{}, ErrFrameLength
	}
	if buf[0] != FrameHead {
		return Frame{}, ErrBadHead
	}
	length := int(buf[2]) | int(buf[3])<<8
	if length > MaxDataLen {
		return Frame{}, ErrFrameTooLong
	}
	if len(buf) != FrameOverhead+length {
		return Frame{}, ErrFrameLength
	}
	if Checksum(buf[1:4+length]) != buf[4+length] {
		return Frame{}, ErrChecksumMismatch
	}
	f := Frame{Cmd: buf[1]}
	if length > 0 {
		f.Data = make([]byte, length)
		copy(f.Data, buf[4:4+length])
	}
	return f, nil
}
