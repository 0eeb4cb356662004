package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"dashan/core"
	"dashan/host/robot"
)

var stateCmd = &cobra.Command{
	Use:   "state <sleep|wake|listen|think|talk|play|error>",
	Short: "Request an interaction state transition",
	Args:  cobra.ExactArgs(1),
	RunE:  runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	target, ok := core.StateByName(args[0])
	if !ok {
		return fmt.Errorf("unknown state %q", args[0])
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	st, err := c.SetState(target)
	if errors.Is(err, robot.ErrTimeout) {
		// The robot stays silent when it is already in the target
		// state or the transition is not allowed from the current one.
		cur, qerr := c.GetStatus()
		if qerr != nil {
			return fmt.Errorf("no transition reply and status query failed: %w", qerr)
		}
		if cur.State == target {
			fmt.Printf("Already in %s\n", cur.State)
			return nil
		}
		return fmt.Errorf("transition to %s rejected (robot is in %s)", target, cur.State)
	}
	if err != nil {
		return err
	}
	fmt.Printf("State: %s (battery %d%%)\n", st.State, st.Battery)
	return nil
}
