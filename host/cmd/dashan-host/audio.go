package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"dashan/core"
	"dashan/host/hostaudio"
	"dashan/host/robot"
)

var (
	recordMaxS   uint8
	recordListen bool
)

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Play audio on the robot or record from its microphone",
}

var audioPlayCmd = &cobra.Command{
	Use:   "play <file.pcm>",
	Short: "Stream a raw PCM file to the robot's speaker",
	Long: `Stream audio to the robot's speaker.

The file must be raw signed 16-bit little-endian mono PCM at 16 kHz
(convert with: sox in.wav -r 16000 -c 1 -t s16 out.pcm). Chunks are
paced at playback rate so each arrives as the previous one drains.`,
	Args: cobra.ExactArgs(1),
	RunE: runAudioPlay,
}

var audioRecordCmd = &cobra.Command{
	Use:   "record <file.pcm>",
	Short: "Record from the robot's microphone to a raw PCM file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAudioRecord,
}

func init() {
	audioRecordCmd.Flags().Uint8Var(&recordMaxS, "max-duration", 10, "Stop recording after this many seconds")
	audioRecordCmd.Flags().BoolVar(&recordListen, "listen", false, "Play the audio on the host speakers while recording")
	audioCmd.AddCommand(audioPlayCmd)
	audioCmd.AddCommand(audioRecordCmd)
	rootCmd.AddCommand(audioCmd)
}

func runAudioPlay(cmd *cobra.Command, args []string) error {
	pcm, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	if len(pcm) == 0 {
		return fmt.Errorf("%s is empty", args[0])
	}
	if len(pcm)%2 != 0 {
		return fmt.Errorf("%s is not 16-bit PCM (odd size)", args[0])
	}

	c, _, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()

	seconds := float64(len(pcm)) / float64(core.SampleRate*2)
	fmt.Printf("Streaming %d bytes (%.1fs)...\n", len(pcm), seconds)
	if err := c.StreamAudio(pcm); err != nil {
		return err
	}
	fmt.Println("Done")
	return nil
}

func runAudioRecord(cmd *cobra.Command, args []string) error {
	out, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer out.Close()

	c, _, err := dialRobot()
	if err != nil {
		return err
	}
	defer c.Close()

	var player *hostaudio.Player
	if recordListen {
		player = hostaudio.NewPlayer(hostaudio.NewPortAudioBackend())
		if err := player.Open(); err != nil {
			return fmt.Errorf("failed to open host audio: %w", err)
		}
		defer player.Close()
	}

	chunks := make(chan robot.AudioChunk, 64)
	c.OnAudio(func(a robot.AudioChunk) {
		select {
		case chunks <- a:
		default:
			log.Printf("[audio] dropped a chunk, disk or player too slow")
		}
	})
	c.Start()

	if err := c.StartRecording(recordMaxS); err != nil {
		return err
	}
	fmt.Printf("Recording up to %ds...\n", recordMaxS)

	// The robot stops on its own at max duration; we stop writing
	// once the chunk stream goes quiet.
	deadline := time.After(time.Duration(recordMaxS)*time.Second + 2*time.Second)
	written := 0
loop:
	for {
		select {
		case a := <-chunks:
			if _, err := out.Write(a.PCM); err != nil {
				return err
			}
			written += len(a.PCM)
			if player != nil {
				if err := player.Play(a.PCM); err != nil {
					log.Printf("[audio] playback error: %v", err)
					player = nil
				}
			}
		case <-deadline:
			break loop
		case <-time.After(2 * time.Second):
			if written > 0 {
				break loop
			}
		}
	}

	if err := c.StopRecording(); err != nil {
		log.Printf("[audio] stop failed: %v", err)
	}
	if player != nil {
		if err := player.Flush(); err != nil {
			log.Printf("[audio] flush failed: %v", err)
		}
	}

	seconds := float64(written) / float64(core.SampleRate*2)
	fmt.Printf("Wrote %d bytes (%.1fs) to %s\n", written, seconds, args[0])
	return nil
}
