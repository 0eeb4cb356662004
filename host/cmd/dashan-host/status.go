package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dashan/core"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query the robot's state, battery, and servo positions",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, info, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	hb, err := c.Ping()
	if err != nil {
		return fmt.Errorf("heartbeat failed: %w", err)
	}
	st, err := c.GetStatus()
	if err != nil {
		return fmt.Errorf("status query failed: %w", err)
	}

	fmt.Printf("Connection: %s\n", info)
	fmt.Printf("Uptime:     %ds\n", hb.UptimeS)
	fmt.Printf("Free mem:   %d bytes\n", hb.FreeBytes)
	fmt.Printf("State:      %s\n", st.State)
	fmt.Printf("Battery:    %d%%\n", st.Battery)
	fmt.Printf("Expression: %s\n", core.ExpressionName(st.Expression))
	fmt.Printf("Servos:     h=%d° v=%d°\n", st.ServoH, st.ServoV)
	return nil
}
