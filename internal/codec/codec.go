// Package codec reads and writes audio files for offline rendering.
//
// Supported formats, chosen by file extension:
//
//	.wav          PCM WAV (8, 16, 24 or 32 bit in, 16 bit out)
//	.opus, .ogg   Opus in an Ogg container (mono or stereo, any rate)
package codec

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/xpcrash/dsp/dither"
)

// ErrUnsupportedFormat is returned for unknown file extensions.
var ErrUnsupportedFormat = errors.New("codec: unsupported format")

// Audio is decoded planar audio with samples nominally in [-1, 1].
type Audio struct {
	SampleRate int
	Channels   [][]float64
}

// NumChannels returns the channel count.
func (a *Audio) NumChannels() int { return len(a.Channels) }

// Frames returns the length in frames.
func (a *Audio) Frames() int {
	if len(a.Channels) == 0 {
		return 0
	}
	return len(a.Channels[0])
}

// Validate checks that a holds at least one channel of equal-length data
// at a positive sample rate.
func (a *Audio) Validate() error {
	if a.SampleRate <= 0 {
		return fmt.Errorf("audio sample rate must be > 0: %d", a.SampleRate)
	}
	if len(a.Channels) == 0 {
		return errors.New("audio has no channels")
	}
	for ch, d := range a.Channels {
		if len(d) != len(a.Channels[0]) {
			return fmt.Errorf("audio channel %d has %d frames, want %d", ch, len(d), len(a.Channels[0]))
		}
	}
	return nil
}

// Options controls encoding.
type Options struct {
	// Bitrate in bits per second for lossy formats; 0 keeps the encoder default.
	Bitrate int
	// Dither applies to PCM output. The zero value rounds without noise.
	Dither dither.Type
}

// Format identifies a container by extension.
type Format int

// Known formats.
const (
	FormatUnknown Format = iota
	FormatWAV
	FormatOpus
)

// FormatFor returns the format of path based on its extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		return FormatWAV
	case ".opus", ".ogg", ".oga":
		return FormatOpus
	default:
		return FormatUnknown
	}
}

// ReadFile decodes the audio file at path.
func ReadFile(path string) (*Audio, error) {
	format := FormatFor(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var a *Audio
	switch format {
	case FormatWAV:
		a, err = DecodeWAV(f)
	case FormatOpus:
		a, err = DecodeOpus(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	return a, nil
}

// WriteFile encodes a to path, replacing any existing file.
func WriteFile(path string, a *Audio, opts Options) (err error) {
	format := FormatFor(path)
	if format == FormatUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	if err := a.Validate(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	switch format {
	case FormatWAV:
		err = EncodeWAV(f, a, opts.Dither)
	case FormatOpus:
		err = EncodeOpus(f, a, opts.Bitrate)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	return nil
}
