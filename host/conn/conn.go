// Package conn provides a common byte-stream interface over the two
// transports a robot can be reached through: a local serial port or a
// WebSocket relay.
package conn

import (
	"errors"
	"fmt"

	"dashan/host/serial"
)

// Connection provides a common interface for reading/writing robot
// link bytes from serial or WebSocket
type Connection interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// ErrConnectionClosed is returned when reading from a closed connection
var ErrConnectionClosed = errors.New("connection closed")

// SerialConnection wraps a serial port
type SerialConnection struct {
	port serial.Port
}

func (s *SerialConnection) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialConnection) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *SerialConnection) Close() error {
	return s.port.Close()
}

// OpenSerial opens a serial port connection to the robot
func OpenSerial(device string, baud int) (Connection, error) {
	cfg := serial.DefaultConfig(device)
	if baud > 0 {
		cfg.Baud = baud
	}

	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", device, err)
	}

	return &SerialConnection{port: port}, nil
}

// Dial opens a connection from the usual pair of CLI flags: a
// WebSocket URL wins over a serial port when both are given. The
// returned string describes the chosen endpoint for log output.
func Dial(device string, baud int, wsURL string) (Connection, string, error) {
	if wsURL != "" {
		c, err := OpenWebSocket(wsURL)
		if err != nil {
			return nil, "", err
		}
		return c, fmt.Sprintf("WebSocket: %s", wsURL), nil
	}

	if device != "" {
		c, err := OpenSerial(device, baud)
		if err != nil {
			return nil, "", err
		}
		return c, fmt.Sprintf("Serial: %s @ %d baud", device, baud), nil
	}

	return nil, "", errors.New("either a serial port or a WebSocket URL must be specified")
}
