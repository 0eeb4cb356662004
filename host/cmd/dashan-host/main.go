// dashan-host is a companion tool for the dashan robot firmware. It
// speaks the robot's framed serial protocol over a local serial port
// or a WebSocket relay, and provides one-shot commands, a live
// monitor TUI, and a NATS bridge for home automation.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dashan/host/conn"
	"dashan/host/robot"
)

var (
	// Connection flags
	portName string
	baudRate int
	wsURL    string

	// General flags
	configPath string
	robotID    string
)

var rootCmd = &cobra.Command{
	Use:   "dashan-host",
	Short: "Host tool for the dashan companion robot",
	Long: `dashan-host - control and monitor a dashan robot over its serial protocol.

Connection modes:
  Serial:    --port /dev/ttyACM0 [--baud 115200]
  WebSocket: --url ws://robot.local:8765/serial

Flags override values from the config file (see 'dashan-host config').`,
	Version:           "1.0.0",
	PersistentPreRunE: applyConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&robotID, "robot-id", "", "Robot identifier for NATS subjects")
}

// applyConfig fills in flags the user did not set from the config
// file, so saved defaults and explicit flags compose.
func applyConfig(cmd *cobra.Command, args []string) error {
	cfg := LoadConfig(configPath)
	flags := cmd.Flags()
	if !flags.Changed("port") && cfg.Port != "" {
		portName = cfg.Port
	}
	if !flags.Changed("baud") && cfg.Baud != 0 {
		baudRate = cfg.Baud
	}
	if !flags.Changed("url") && cfg.URL != "" {
		wsURL = cfg.URL
	}
	if !flags.Changed("robot-id") && cfg.RobotID != "" {
		robotID = cfg.RobotID
	}
	if !flags.Changed("nats-url") && cfg.NATSURL != "" {
		natsURL = cfg.NATSURL
	}
	return nil
}

// openConnection dials whichever endpoint the flags select.
func openConnection() (conn.Connection, string, error) {
	if portName == "" && wsURL == "" {
		return nil, "", fmt.Errorf("no connection specified: use --port or --url")
	}
	return conn.Dial(portName, baudRate, wsURL)
}

// dialRobot dials the endpoint and wraps it in a client WITHOUT
// starting the read loop, for commands that register push callbacks
// first. Callers must Start and Close the client.
func dialRobot() (*robot.Client, string, error) {
	cn, info, err := openConnection()
	if err != nil {
		return nil, "", err
	}
	return robot.NewClient(cn), info, nil
}

// openClient dials the robot and starts the protocol read loop, for
// one-shot commands with no push callbacks. Callers must Close the
// returned client.
func openClient() (*robot.Client, string, error) {
	c, info, err := dialRobot()
	if err != nil {
		return nil, "", err
	}
	c.Start()
	return c, info, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
