package core

import "fmt"

// EnsureLen returns a slice with the requested length, reusing buf capacity if possible.
func EnsureLen(buf []float64, n int) []float64 {
	if n <= 0 {
		return buf[:0]
	}

	if cap(buf) >= n {
		return buf[:n]
	}

	return make([]float64, n)
}

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	clear(buf)
}

// MakePlanar allocates channels slices of frames samples each.
func MakePlanar(channels, frames int) [][]float64 {
	out := make([][]float64, channels)
	for ch := range out {
		out[ch] = make([]float64, frames)
	}

	return out
}

// Deinterleave splits interleaved float32 frames into planar channels.
// It converts min(len(src)/len(dst), len(dst[ch])) frames and returns that count.
func Deinterleave(dst [][]float64, src []float32) int {
	channels := len(dst)
	if channels == 0 {
		return 0
	}

	frames := len(src) / channels
	for _, ch := range dst {
		frames = min(frames, len(ch))
	}

	for i := range frames {
		frame := src[i*channels : (i+1)*channels]
		for ch, s := range frame {
			dst[ch][i] = float64(s)
		}
	}

	return frames
}

// Interleave writes frames samples of every planar channel into dst.
func Interleave(dst []float32, src [][]float64, frames int) error {
	channels := len(src)
	if len(dst) < frames*channels {
		return fmt.Errorf("interleave: destination holds %d samples, need %d", len(dst), frames*channels)
	}

	for ch, samples := range src {
		if len(samples) < frames {
			return fmt.Errorf("interleave: channel %d holds %d frames, need %d", ch, len(samples), frames)
		}

		for i := range frames {
			dst[i*channels+ch] = float32(samples[i])
		}
	}

	return nil
}
