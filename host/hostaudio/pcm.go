package hostaudio

// PCM16ToFloat32 converts little-endian 16-bit PCM bytes to float32
// samples in [-1, 1]. A trailing odd byte is dropped.
func PCM16ToFloat32(pcm []byte) []float32 {
	n := len(pcm) / 2
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		v := int16(uint16(pcm[i*2]) | uint16(pcm[i*2+1])<<8)
		out[i] = float32(v) / 32767.0
	}
	return out
}

// Float32ToPCM16 converts float32 samples to little-endian 16-bit PCM
// bytes. Values are scaled by 32768 and clamped to ±32767 so full
// scale stays symmetric.
func Float32ToPCM16(samples []float32) []byte {
	out := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := sample * 32768
		var v int16
		switch {
		case scaled > 32767:
			v = 32767
		case scaled <= -32768:
			v = -32767
		default:
			v = int16(scaled)
		}
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}
