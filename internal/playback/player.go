package playback

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Start after Close.
var ErrClosed = errors.New("playback: player closed")

// Options configures the output device.
type Options struct {
	SampleRate int
	Channels   int
	// BufferSize in frames; 0 lets the backend choose.
	BufferSize int
}

func (o Options) validate() error {
	if o.SampleRate <= 0 {
		return fmt.Errorf("playback sample rate must be > 0: %d", o.SampleRate)
	}
	if o.Channels < 1 || o.Channels > 2 {
		return fmt.Errorf("playback channels must be 1 or 2: %d", o.Channels)
	}
	if o.BufferSize < 0 {
		return fmt.Errorf("playback buffer size must be >= 0: %d", o.BufferSize)
	}
	return nil
}
