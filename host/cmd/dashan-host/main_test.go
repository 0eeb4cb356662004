package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dashan/core"
)

func TestParseExpression(t *testing.T) {
	t.Run("by_name", func(t *testing.T) {
		id, err := parseExpression("happy")
		require.NoError(t, err)
		assert.Equal(t, uint8(core.ExprHappy), id)
	})

	t.Run("by_number", func(t *testing.T) {
		id, err := parseExpression("5")
		require.NoError(t, err)
		assert.Equal(t, uint8(core.ExprHappy), id)

		id, err = parseExpression("0x0F")
		require.NoError(t, err)
		assert.Equal(t, uint8(core.ExprBlank), id)
	})

	t.Run("rejects_unknown", func(t *testing.T) {
		_, err := parseExpression("grumpy")
		assert.Error(t, err)

		_, err = parseExpression("16")
		assert.Error(t, err)
	})
}

func TestParseServoID(t *testing.T) {
	for _, arg := range []string{"h", "horizontal", "pan"} {
		id, err := parseServoID(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, core.ServoHorizontal, id)
	}
	for _, arg := range []string{"v", "vertical", "tilt"} {
		id, err := parseServoID(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, core.ServoVertical, id)
	}
	_, err := parseServoID("x")
	assert.Error(t, err)
}

func TestParseGazeAxis(t *testing.T) {
	for arg, want := range map[string]int16{"-100": -100, "0": 0, "100": 100, "42": 42} {
		got, err := parseGazeAxis(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, want, got)
	}
	for _, arg := range []string{"-101", "101", "abc", ""} {
		_, err := parseGazeAxis(arg)
		assert.Error(t, err, arg)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := &Config{
		Port:    "/dev/ttyACM1",
		Baud:    230400,
		URL:     "ws://robot.local:8765/serial",
		RobotID: "bench",
		NATSURL: "nats://10.0.0.2:4222",
	}
	require.NoError(t, cfg.Save(path))

	loaded := LoadConfig(path)
	assert.Equal(t, cfg, loaded)
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	loaded := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfigMalformedFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: [unclosed"), 0644))

	loaded := LoadConfig(path)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestDispatchCommandParsing(t *testing.T) {
	m := initialMonModel(nil, "test")

	t.Run("valid_commands_return_cmd", func(t *testing.T) {
		for _, line := range []string{
			"state wake",
			"expr happy",
			"expr happy 1500",
			"servo h 90",
			"gaze -50 50",
			"center",
			"record",
			"record 30",
			"camera",
			"camera 5",
			"camera stop",
			"stop",
		} {
			cmd, err := m.dispatchCommand(line)
			require.NoError(t, err, line)
			assert.NotNil(t, cmd, line)
		}
	})

	t.Run("parse_errors", func(t *testing.T) {
		for _, line := range []string{
			"state",
			"state zoom",
			"expr",
			"expr grumpy",
			"servo h",
			"servo x 90",
			"servo h 181",
			"gaze 1",
			"gaze 200 0",
			"record never",
			"bogus",
		} {
			_, err := m.dispatchCommand(line)
			assert.Error(t, err, line)
		}
	})
}
