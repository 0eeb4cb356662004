package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dashan/core"
)

var (
	exprBrightness uint8
	exprDurationMS uint16
)

var expressionCmd = &cobra.Command{
	Use:   "expression <name|id>",
	Short: "Show an expression on the LED matrix",
	Long: `Show an expression on the robot's face.

Accepts a name (happy, sad, curious, ...) or a numeric id 0-15.
A non-zero --duration reverts to the previous expression afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runExpression,
}

func init() {
	expressionCmd.Flags().Uint8Var(&exprBrightness, "brightness", 0, "Brightness 0-255 (0 = firmware default)")
	expressionCmd.Flags().Uint16Var(&exprDurationMS, "duration", 0, "Revert after this many milliseconds (0 = hold)")
	rootCmd.AddCommand(expressionCmd)
}

func parseExpression(arg string) (uint8, error) {
	if id, ok := core.ExpressionByName(arg); ok {
		return id, nil
	}
	n, err := strconv.ParseUint(arg, 0, 8)
	if err != nil || n > 0x0F {
		return 0, fmt.Errorf("unknown expression %q", arg)
	}
	return uint8(n), nil
}

func runExpression(cmd *cobra.Command, args []string) error {
	id, err := parseExpression(args[0])
	if err != nil {
		return err
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.SetExpression(id, exprBrightness, exprDurationMS); err != nil {
		return err
	}
	fmt.Printf("Expression: %s\n", core.ExpressionName(id))
	return nil
}
