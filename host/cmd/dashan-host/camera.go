package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"dashan/host/robot"
)

var (
	cameraIntervalS uint8
	cameraCount     int
)

var cameraCmd = &cobra.Command{
	Use:   "camera <out-dir>",
	Short: "Capture camera frames to JPEG files",
	Long: `Start periodic camera capture and save each received frame as
frame_NNNN.jpg in the output directory. Stops after --count frames
or on Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runCamera,
}

func init() {
	cameraCmd.Flags().Uint8Var(&cameraIntervalS, "interval", 2, "Seconds between captures")
	cameraCmd.Flags().IntVar(&cameraCount, "count", 5, "Number of frames to save (0 = until Ctrl+C)")
	rootCmd.AddCommand(cameraCmd)
}

func runCamera(cmd *cobra.Command, args []string) error {
	outDir := args[0]
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	c, _, err := dialRobot()
	if err != nil {
		return err
	}
	defer c.Close()

	type frame struct {
		id   uint16
		data []byte
	}
	frames := make(chan frame, 4)
	var asm robot.FrameAssembler
	c.OnImage(func(ch robot.ImageChunk) {
		if id, data, done := asm.Add(ch); done {
			select {
			case frames <- frame{id, data}:
			default:
			}
		}
	})
	c.Start()

	if err := c.StartCamera(cameraIntervalS); err != nil {
		return err
	}
	defer func() {
		if err := c.StopCamera(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: camera stop failed: %v\n", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	fmt.Printf("Capturing every %ds to %s (Ctrl+C to stop)...\n", cameraIntervalS, outDir)
	saved := 0
	for cameraCount == 0 || saved < cameraCount {
		select {
		case f := <-frames:
			name := filepath.Join(outDir, fmt.Sprintf("frame_%04d.jpg", f.id))
			if err := os.WriteFile(name, f.data, 0644); err != nil {
				return err
			}
			saved++
			fmt.Printf("Saved %s (%d bytes)\n", name, len(f.data))
		case <-sig:
			fmt.Printf("Stopped, %d frame(s) saved\n", saved)
			return nil
		}
	}
	fmt.Printf("Done, %d frame(s) saved\n", saved)
	return nil
}
