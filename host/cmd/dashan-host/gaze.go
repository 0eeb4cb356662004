package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var gazeCmd = &cobra.Command{
	Use:   "gaze <x> <y>",
	Short: "Point the gaze at a normalized target (-100..100 on both axes)",
	Long: `Point both servos at a normalized gaze target.

x=-100 looks fully left, x=100 fully right; y=-100 fully down,
y=100 fully up. 0 0 re-centers.`,
	Args: cobra.ExactArgs(2),
	RunE: runGaze,
}

func init() {
	rootCmd.AddCommand(gazeCmd)
}

func parseGazeAxis(arg string) (int16, error) {
	n, err := strconv.ParseInt(arg, 10, 16)
	if err != nil || n < -100 || n > 100 {
		return 0, fmt.Errorf("gaze coordinates must be -100..100, got %q", arg)
	}
	return int16(n), nil
}

func runGaze(cmd *cobra.Command, args []string) error {
	x, err := parseGazeAxis(args[0])
	if err != nil {
		return err
	}
	y, err := parseGazeAxis(args[1])
	if err != nil {
		return err
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetGaze(x, y); err != nil {
		return err
	}
	fmt.Printf("Gaze -> (%d, %d)\n", x, y)
	return nil
}
