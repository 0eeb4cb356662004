package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dashan/host/hostaudio"
	"dashan/host/robot"
)

var talkDurationS int

var audioTalkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Stream the host microphone to the robot's speaker",
	Long: `Stream the host microphone to the robot's speaker, intercom style.

Capture runs until --duration elapses or Ctrl+C.`,
	Args: cobra.NoArgs,
	RunE: runAudioTalk,
}

func init() {
	audioTalkCmd.Flags().IntVar(&talkDurationS, "duration", 10, "Stop after this many seconds (0 = until Ctrl+C)")
	audioCmd.AddCommand(audioTalkCmd)
}

func runAudioTalk(cmd *cobra.Command, args []string) error {
	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	rec := hostaudio.NewRecorder(hostaudio.NewPortAudioBackend())

	// The microphone already paces capture in real time, so each chunk
	// is forwarded as soon as it is full; no extra sleeps like the
	// file-streaming path uses.
	sink := func(pcm []byte) error {
		for len(pcm) > 0 {
			n := len(pcm)
			if n > robot.MaxPlayChunk {
				n = robot.MaxPlayChunk
			}
			if err := c.PlayAudio(pcm[:n]); err != nil {
				return err
			}
			pcm = pcm[n:]
		}
		return nil
	}
	if err := rec.Start(sink); err != nil {
		return fmt.Errorf("failed to open microphone: %w", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	if talkDurationS > 0 {
		fmt.Printf("Talking for %ds (Ctrl+C to stop)...\n", talkDurationS)
		select {
		case <-time.After(time.Duration(talkDurationS) * time.Second):
		case <-sig:
		}
	} else {
		fmt.Println("Talking (Ctrl+C to stop)...")
		<-sig
	}

	if err := rec.Stop(); err != nil {
		return err
	}
	if err := rec.Err(); err != nil {
		return fmt.Errorf("capture stopped early: %w", err)
	}
	fmt.Println("Done")
	return nil
}
