package serial

import (
	"io"
)

// Port represents a serial port interface
// This abstraction allows for different implementations:
// - Native serial (using github.com/tarm/serial)
// - Mock serial (for testing)
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (the robot link runs at 115200; USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking). A bounded timeout
	// keeps host read loops responsive when the robot goes quiet.
	ReadTimeout int
}

// DefaultConfig returns the configuration for the robot's UART link
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200, // Robot UART link rate
		ReadTimeout: 100,    // 100ms read timeout
	}
}
