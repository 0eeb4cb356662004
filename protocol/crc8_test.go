package protocol

import "testing"

func TestChecksumGoldenVectors(t *testing.T) {
	// Worked out by hand from the polynomial definition. The first two
	// cover empty frames (CMD + LEN only), the third covers a frame
	// with a payload byte.
	testCases := []struct {
		data     []byte
		expected uint8
	}{
		{data: []byte{0x03, 0x00, 0x00}, expected: 0xBD},
		{data: []byte{0x01, 0x00, 0x00}, expected: 0x6B},
		{data: []byte{0x07, 0x01, 0x00, 0x02}, expected: 0x07},
		{data: nil, expected: 0x00},
	}

	for i, tc := range testCases {
		result := Checksum(tc.data)
		if result != tc.expected {
			t.Errorf("Test case %d: Checksum(%v) = 0x%02X, expected 0x%02X",
				i, tc.data, result, tc.expected)
		}
	}
}

func TestChecksumIncremental(t *testing.T) {
	// The receive path folds bytes one at a time; it must agree with
	// the one-shot calculation
	data := []byte{0xAA, 0x55, 0x00, 0xFF, 0x12, 0x34}

	crc := uint8(0)
	for _, b := range data {
		crc = crcUpdate(crc, b)
	}

	if crc != Checksum(data) {
		t.Errorf("Incremental CRC 0x%02X != one-shot 0x%02X", crc, Checksum(data))
	}
}

func TestChecksumDifferent(t *testing.T) {
	data1 := []byte{0x01, 0x02, 0x03}
	data2 := []byte{0x01, 0x02, 0x04}

	if Checksum(data1) == Checksum(data2) {
		t.Errorf("Checksum collision: both inputs produced 0x%02X", Checksum(data1))
	}
}
