package protocol

// Checksum calculates the CRC-8 used by the robot link protocol:
// polynomial 0x07, init 0x00, MSB first, no reflection, no final XOR.
// The transmitted checksum covers CMD, LEN (little-endian) and DATA
// but not the head byte.
func Checksum(data []byte) uint8 {
	crc := uint8(0)
	for _, b := range data {
		crc = crcUpdate(crc, b)
	}
	return crc
}

// crcUpdate folds one byte into a running checksum. The receive state
// machine uses this to avoid buffering the frame twice.
func crcUpdate(crc, b uint8) uint8 {
	crc ^= b
	for i := 0; i < 8; i++ {
		if crc&0x80 != 0 {
			crc = crc<<1 ^ 0x07
		} else {
			crc <<= 1
		}
	}
	return crc
}
