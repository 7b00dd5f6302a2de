package host

import (
	"math"
	"sync/atomic"

	"github.com/cwbudde/xpcrash/dsp/core"
	"github.com/cwbudde/xpcrash/dsp/effects"
)

// ControlState is one consistent reading of the effect controls.
type ControlState struct {
	Freeze bool
	Hold   bool
	Length int
}

// Frozen reports whether the state replays the loop.
func (s ControlState) Frozen() bool { return s.Freeze || s.Hold }

// Controls holds the effect controls shared between control goroutines
// (keyboard, config watcher) and the audio thread. All methods are
// lock-free and safe for concurrent use.
type Controls struct {
	freeze atomic.Bool
	hold   atomic.Bool
	length atomic.Int64
}

// NewControls returns controls with the given initial length (clamped to
// the effect range) and freeze state.
func NewControls(length int, freeze bool) *Controls {
	c := &Controls{}
	c.SetLength(length)
	c.freeze.Store(freeze)
	return c
}

// SetFreeze sets the user freeze control.
func (c *Controls) SetFreeze(v bool) { c.freeze.Store(v) }

// ToggleFreeze flips the freeze control and returns the new value.
func (c *Controls) ToggleFreeze() bool {
	for {
		old := c.freeze.Load()
		if c.freeze.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetHold sets the external hold signal.
func (c *Controls) SetHold(v bool) { c.hold.Store(v) }

// ToggleHold flips the hold signal and returns the new value.
func (c *Controls) ToggleHold() bool {
	for {
		old := c.hold.Load()
		if c.hold.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// SetLength sets the loop length, clamped to the effect range, and returns
// the stored value.
func (c *Controls) SetLength(n int) int {
	n = core.ClampInt(n, effects.MinCrashLength, effects.MaxCrashLength)
	c.length.Store(int64(n))
	return n
}

// AddLength shifts the loop length by delta samples.
func (c *Controls) AddLength(delta int) int {
	for {
		old := c.length.Load()
		n := int64(core.ClampInt(int(old)+delta, effects.MinCrashLength, effects.MaxCrashLength))
		if c.length.CompareAndSwap(old, n) {
			return int(n)
		}
	}
}

// ScaleLength multiplies the loop length by factor, rounding to the
// nearest sample.
func (c *Controls) ScaleLength(factor float64) int {
	for {
		old := c.length.Load()
		scaled := int(math.Round(float64(old) * factor))
		n := int64(core.ClampInt(scaled, effects.MinCrashLength, effects.MaxCrashLength))
		if c.length.CompareAndSwap(old, n) {
			return int(n)
		}
	}
}

// State returns the current controls.
func (c *Controls) State() ControlState {
	return ControlState{
		Freeze: c.freeze.Load(),
		Hold:   c.hold.Load(),
		Length: int(c.length.Load()),
	}
}

// Apply stores every field of st.
func (c *Controls) Apply(st ControlState) {
	c.freeze.Store(st.Freeze)
	c.hold.Store(st.Hold)
	c.SetLength(st.Length)
}
