package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dashan/host/capture"
	"dashan/host/robot"
)

var (
	captureDurationS int
	capturePollS     int
)

var captureCmd = &cobra.Command{
	Use:   "capture <file.cbor>",
	Short: "Record a session of raw frames to a CBOR file",
	Long: `Record every frame crossing the link to a CBOR capture file,
with timestamps and directions, for later inspection or replay.

With --poll the tool also issues a status request at a fixed interval
so sparse sessions still carry a baseline.`,
	Args: cobra.ExactArgs(1),
	RunE: runCapture,
}

func init() {
	captureCmd.Flags().IntVar(&captureDurationS, "duration", 0, "Stop after this many seconds (0 = until Ctrl+C)")
	captureCmd.Flags().IntVar(&capturePollS, "poll", 0, "Request status every N seconds (0 = off)")
	rootCmd.AddCommand(captureCmd)
}

func runCapture(cmd *cobra.Command, args []string) error {
	out, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer out.Close()

	w, err := capture.NewWriter(out, robotID)
	if err != nil {
		return err
	}

	cn, info, err := openConnection()
	if err != nil {
		return err
	}

	c := robot.NewClient(capture.NewTap(cn, w))
	defer c.Close()
	c.Start()

	stop := make(chan struct{})
	if capturePollS > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(capturePollS) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stop:
					return
				case <-ticker.C:
					if _, err := c.GetStatus(); err != nil {
						log.Printf("[capture] status poll failed: %v", err)
					}
				}
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Printf("Capturing %s to %s (Ctrl+C to stop)...\n", info, args[0])
	if captureDurationS > 0 {
		select {
		case <-time.After(time.Duration(captureDurationS) * time.Second):
		case <-sig:
		}
	} else {
		<-sig
	}
	close(stop)

	if fi, err := out.Stat(); err == nil {
		fmt.Printf("Wrote %d bytes to %s\n", fi.Size(), args[0])
	}
	return nil
}
