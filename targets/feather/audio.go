//go:build rp2040

package main

// silentAudio stands in for the codec: captures read nothing and
// playback is discarded. The carry board routes no I2S hardware yet,
// so record and play commands succeed without producing sound.
type silentAudio struct{}

func (silentAudio) ReadPCM(buf []byte) (int, error) { return 0, nil }

func (silentAudio) WritePCM(buf []byte) (int, error) { return len(buf), nil }
