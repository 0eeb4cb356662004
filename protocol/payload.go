package protocol

import "errors"

// ErrShortPayload is returned when a payload ends before a field
var ErrShortPayload = errors.New("payload too short")

// Payload fields follow the wire convention: multi-byte values are
// little-endian. The Read functions advance the data slice past the
// consumed bytes, mirroring how command handlers walk a payload.

// ReadU8 reads one byte from the payload
func ReadU8(data *[]byte) (uint8, error) {
	if len(*data) < 1 {
		return 0, ErrShortPayload
	}
	v := (*data)[0]
	*data = (*data)[1:]
	return v, nil
}

// ReadU16 reads a little-endian uint16 from the payload
func ReadU16(data *[]byte) (uint16, error) {
	if len(*data) < 2 {
		return 0, ErrShortPayload
	}
	v := uint16((*data)[0]) | uint16((*data)[1])<<8
	*data = (*data)[2:]
	return v, nil
}

// ReadI16 reads a little-endian int16 from the payload
func ReadI16(data *[]byte) (int16, error) {
	v, err := ReadU16(data)
	return int16(v), err
}

// ReadU32 reads a little-endian uint32 from the payload
func ReadU32(data *[]byte) (uint32, error) {
	if len(*data) < 4 {
		return 0, ErrShortPayload
	}
	v := uint32((*data)[0]) | uint32((*data)[1])<<8 |
		uint32((*data)[2])<<16 | uint32((*data)[3])<<24
	*data = (*data)[4:]
	return v, nil
}

// ReadBytes reads n raw bytes from the payload without copying
func ReadBytes(data *[]byte, n int) ([]byte, error) {
	if len(*data) < n {
		return nil, ErrShortPayload
	}
	v := (*data)[:n]
	*data = (*data)[n:]
	return v, nil
}

// AppendU16 appends a little-endian uint16 to a payload under construction
func AppendU16(dst []byte, v uint16) []byte {
	return append(dst, uint8(v), uint8(v>>8))
}

// AppendI16 appends a little-endian int16
func AppendI16(dst []byte, v int16) []byte {
	return AppendU16(dst, uint16(v))
}

// AppendU32 appends a little-endian uint32
func AppendU32(dst []byte, v uint32) []byte {
	return append(dst, uint8(v), uint8(v>>8), uint8(v>>16), uint8(v>>24))
}
