package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dashan/core"
	"dashan/host/robot"
)

var servoSpeed uint16

var servoCmd = &cobra.Command{
	Use:   "servo <h|v> <angle>",
	Short: "Move a gaze servo to an absolute angle (0-180)",
	Args:  cobra.ExactArgs(2),
	RunE:  runServo,
}

func init() {
	servoCmd.Flags().Uint16Var(&servoSpeed, "speed", 0, "Degrees per second (0 = firmware default)")
	rootCmd.AddCommand(servoCmd)
}

func parseServoID(arg string) (uint8, error) {
	switch arg {
	case "h", "horizontal", "pan":
		return core.ServoHorizontal, nil
	case "v", "vertical", "tilt":
		return core.ServoVertical, nil
	}
	return 0, fmt.Errorf("unknown servo %q (use h or v)", arg)
}

func runServo(cmd *cobra.Command, args []string) error {
	id, err := parseServoID(args[0])
	if err != nil {
		return err
	}
	angle, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil || angle > 180 {
		return fmt.Errorf("angle must be 0-180, got %q", args[1])
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	err = c.SetServo(id, uint16(angle), servoSpeed)
	if errors.Is(err, robot.ErrServoRejected) {
		return fmt.Errorf("robot rejected the move (angle out of range or bad servo id)")
	}
	if err != nil {
		return err
	}
	fmt.Printf("Servo %s -> %d°\n", args[0], angle)
	return nil
}
