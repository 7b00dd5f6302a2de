package effects

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/xpcrash/dsp/loop"
)

const (
	// DefaultCrashLength is the loop length a new Crash starts with.
	DefaultCrashLength = 1024
	// MinCrashLength is the shortest loop SetLength accepts.
	MinCrashLength = 128
	// MaxCrashLength is the longest loop and the per-channel capacity.
	MaxCrashLength = 65536
)

// ErrChannelMismatch is returned when a block does not carry one slice
// per configured channel.
var ErrChannelMismatch = errors.New("crash: channel count mismatch")

// Crash freezes a multichannel stream into a short stuttering loop, the
// sound of an audio driver stuck on its last buffer.
//
// Each channel owns an independent loop.Buffer. Length and freeze changes
// are staged by the setters and applied to every channel at the start of
// the next ProcessBlock or ProcessInterleaved call, so all channels stay
// sample-aligned and a block never sees a half-applied configuration.
//
// Crash is not thread-safe. Hosts that change controls from another
// goroutine hand them over at block boundaries.
type Crash struct {
	sampleRate float64
	loops      []*loop.Buffer

	length int
	freeze bool
	hold   bool
}

type crashConfig struct {
	length     int
	legacyWrap bool
}

// CrashOption configures NewCrash.
type CrashOption func(*crashConfig)

// WithCrashLength sets the initial loop length in samples.
func WithCrashLength(n int) CrashOption {
	return func(cfg *crashConfig) {
		cfg.length = n
	}
}

// WithCrashLegacyWrap makes every channel loop use the legacy wrap period.
// See loop.WithLegacyWrap.
func WithCrashLegacyWrap() CrashOption {
	return func(cfg *crashConfig) {
		cfg.legacyWrap = true
	}
}

// NewCrash creates a crash effect for the given channel count.
func NewCrash(sampleRate float64, channels int, opts ...CrashOption) (*Crash, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("crash sample rate must be > 0: %f", sampleRate)
	}

	if channels < 1 {
		return nil, fmt.Errorf("crash channels must be >= 1: %d", channels)
	}

	cfg := crashConfig{length: DefaultCrashLength}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := validateCrashLength(cfg.length); err != nil {
		return nil, err
	}

	var loopOpts []loop.Option
	if cfg.legacyWrap {
		loopOpts = append(loopOpts, loop.WithLegacyWrap())
	}

	c := &Crash{
		sampleRate: sampleRate,
		loops:      make([]*loop.Buffer, channels),
		length:     cfg.length,
	}

	for ch := range c.loops {
		b, err := loop.New(MaxCrashLength, cfg.length, loopOpts...)
		if err != nil {
			return nil, fmt.Errorf("crash channel %d: %w", ch, err)
		}

		c.loops[ch] = b
	}

	return c, nil
}

// SetLength stages a new loop length in samples.
func (c *Crash) SetLength(n int) error {
	if err := validateCrashLength(n); err != nil {
		return err
	}

	c.length = n

	return nil
}

// SetTime stages a new loop length given in seconds.
func (c *Crash) SetTime(seconds float64) error {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("crash time must be finite: %f", seconds)
	}

	n := int(math.Round(seconds * c.sampleRate))
	if n < MinCrashLength || n > MaxCrashLength {
		return fmt.Errorf("crash time must be in [%f, %f]: %f",
			float64(MinCrashLength)/c.sampleRate, float64(MaxCrashLength)/c.sampleRate, seconds)
	}

	c.length = n

	return nil
}

// SetFreeze sets the user freeze control.
func (c *Crash) SetFreeze(freeze bool) { c.freeze = freeze }

// SetHold sets the external hold signal, for example a held key.
func (c *Crash) SetHold(hold bool) { c.hold = hold }

// Frozen reports whether the next block will replay the loop.
func (c *Crash) Frozen() bool { return c.freeze || c.hold }

// Freeze returns the user freeze control.
func (c *Crash) Freeze() bool { return c.freeze }

// Hold returns the external hold signal.
func (c *Crash) Hold() bool { return c.hold }

// Length returns the staged loop length in samples.
func (c *Crash) Length() int { return c.length }

// Time returns the staged loop length in seconds.
func (c *Crash) Time() float64 { return float64(c.length) / c.sampleRate }

// Channels returns the channel count.
func (c *Crash) Channels() int { return len(c.loops) }

// SampleRate returns sample rate in Hz.
func (c *Crash) SampleRate() float64 { return c.sampleRate }

// Loop returns the buffer of channel ch, or nil when ch is out of range.
func (c *Crash) Loop(ch int) *loop.Buffer {
	if ch < 0 || ch >= len(c.loops) {
		return nil
	}

	return c.loops[ch]
}

// Reset clears every channel loop. Controls are kept.
func (c *Crash) Reset() {
	for _, b := range c.loops {
		b.Reset()
	}
}

// ProcessBlock applies staged controls and processes one planar block in
// place. block must hold exactly one slice per channel; slices may differ
// in length.
func (c *Crash) ProcessBlock(block [][]float64) error {
	if len(block) != len(c.loops) {
		return fmt.Errorf("%w: block has %d channels, effect has %d",
			ErrChannelMismatch, len(block), len(c.loops))
	}

	c.apply()

	for ch, b := range c.loops {
		b.ProcessInPlace(block[ch])
	}

	return nil
}

// ProcessInterleaved applies staged controls and processes interleaved
// frames in place.
func (c *Crash) ProcessInterleaved(buf []float64) error {
	channels := len(c.loops)
	if len(buf)%channels != 0 {
		return fmt.Errorf("%w: %d samples is not a multiple of %d channels",
			ErrChannelMismatch, len(buf), channels)
	}

	c.apply()

	for i := 0; i < len(buf); i += channels {
		frame := buf[i : i+channels]
		for ch, b := range c.loops {
			frame[ch] = b.ProcessSample(frame[ch])
		}
	}

	return nil
}

func (c *Crash) apply() {
	frozen := c.Frozen()

	for _, b := range c.loops {
		if b.Len() != c.length {
			b.Resize(c.length)
		}

		b.SetFrozen(frozen)
	}
}

func validateCrashLength(n int) error {
	if n < MinCrashLength || n > MaxCrashLength {
		return fmt.Errorf("crash length must be in [%d, %d]: %d", MinCrashLength, MaxCrashLength, n)
	}

	return nil
}
