package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dashan/host/capture"
	"dashan/protocol"
)

var (
	replaySpeed  float64
	replayDryRun bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <file.cbor>",
	Short: "Replay a captured session against the robot",
	Long: `Replay the host-to-robot frames of a capture file, paced by their
recorded timestamps. With --dry-run the timeline is printed instead
of sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Pacing multiplier (0 = no delays)")
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "Print the timeline without sending")
	rootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := capture.NewReader(f)
	if err != nil {
		return err
	}

	hdr := r.Header()
	fmt.Printf("Session: robot %q, recorded %s\n", hdr.RobotID,
		time.Unix(hdr.Started, 0).Format("2006-01-02 15:04:05"))

	if replayDryRun {
		return printTimeline(r)
	}

	cn, info, err := openConnection()
	if err != nil {
		return err
	}
	defer cn.Close()

	fmt.Printf("Replaying to %s at %.1fx...\n", info, replaySpeed)
	sent, err := capture.Replay(r, cn, replaySpeed)
	if err != nil {
		return err
	}
	fmt.Printf("Sent %d frame(s)\n", sent)
	return nil
}

func printTimeline(r *capture.Reader) error {
	dirs := map[uint8]string{capture.DirIn: "<-", capture.DirOut: "->"}
	count := 0
	for {
		rec, err := r.Next()
		if err == io.EOF {
			fmt.Printf("%d record(s)\n", count)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Printf("%8.3fs %s %-15s %4d bytes\n",
			float64(rec.T)/1000, dirs[rec.Dir], protocol.CmdName(rec.Cmd), len(rec.Data))
		count++
	}
}
