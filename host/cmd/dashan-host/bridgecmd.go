package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dashan/host/bridge"
)

var natsURL string

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Bridge the robot to NATS",
	Long: `Run a long-lived bridge between the robot and a NATS server.

Robot events are published as JSON on robot.<id>.status, .sensor,
.error, .audio and .image; commands arrive on robot.<id>.cmd.*.`,
	RunE: runBridge,
}

func init() {
	bridgeCmd.Flags().StringVar(&natsURL, "nats-url", "nats://localhost:4222", "NATS server URL")
	rootCmd.AddCommand(bridgeCmd)
}

func runBridge(cmd *cobra.Command, args []string) error {
	if robotID == "" {
		robotID = "dashan"
	}

	c, info, err := dialRobot()
	if err != nil {
		return err
	}
	defer c.Close()

	nc, err := bridge.Connect(natsURL)
	if err != nil {
		return err
	}
	defer nc.Close()

	br := bridge.New(nc, c, robotID)
	c.OnStatus(br.HandleStatus)
	c.OnSensor(br.HandleSensor)
	c.OnErrorReport(br.HandleErrorReport)
	c.OnAudio(br.HandleAudio)
	c.OnImage(br.HandleImage)
	c.OnProtocolFault(func(cmd uint8, err error) {
		log.Printf("[bridge] protocol fault on 0x%02X: %v", cmd, err)
	})
	c.Start()

	if err := br.Start(); err != nil {
		return err
	}

	fmt.Printf("Bridging %s (robot %q) to %s\n", info, robotID, natsURL)
	fmt.Println("Press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	fmt.Println("Shutting down")
	return nil
}
