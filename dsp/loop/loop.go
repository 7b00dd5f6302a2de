package loop

import (
	"fmt"

	"github.com/cwbudde/xpcrash/dsp/core"
)

// Buffer is a circular sample store that either records live input or,
// when frozen, replays the captured ring.
//
// Samples at indices >= Len() are always zero, so growing the logical
// length never resurrects audio recorded before an earlier shrink.
//
// Buffer is mono and not thread-safe.
type Buffer struct {
	samples []float64
	length  int
	cursor  int
	frozen  bool

	legacyWrap bool
}

// Option configures a Buffer.
type Option func(*Buffer)

// WithLegacyWrap wraps the cursor modulo Len()-1 instead of Len() and starts
// it at index 0. The last slot of the ring is only reached transiently, which
// matches the output of earlier releases sample for sample.
func WithLegacyWrap() Option {
	return func(b *Buffer) {
		b.legacyWrap = true
	}
}

// New returns a buffer with the given physical capacity and initial logical
// length. The first processed sample is written to index 0.
func New(capacity, length int, opts ...Option) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("loop capacity must be > 0: %d", capacity)
	}

	if length < 1 || length > capacity {
		return nil, fmt.Errorf("loop length must be in [1, %d]: %d", capacity, length)
	}

	b := &Buffer{
		samples: make([]float64, capacity),
		length:  length,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	b.cursor = b.initialCursor()
	b.check()

	return b, nil
}

// Len returns the logical loop length in samples.
func (b *Buffer) Len() int { return b.length }

// Cap returns the physical capacity in samples.
func (b *Buffer) Cap() int { return len(b.samples) }

// Cursor returns the index of the most recently written or replayed sample.
func (b *Buffer) Cursor() int { return b.cursor }

// Frozen reports whether the buffer is replaying its captured loop.
func (b *Buffer) Frozen() bool { return b.frozen }

// LegacyWrap reports whether the buffer uses the Len()-1 wrap period.
func (b *Buffer) LegacyWrap() bool { return b.legacyWrap }

// SetFrozen switches between recording (false) and looping (true).
// The cursor and the stored samples are left untouched.
func (b *Buffer) SetFrozen(frozen bool) { b.frozen = frozen }

// Freeze starts replaying the captured loop.
func (b *Buffer) Freeze() { b.frozen = true }

// Unfreeze resumes live capture from the current cursor position.
func (b *Buffer) Unfreeze() { b.frozen = false }

// ProcessSample advances the cursor and either records x and passes it
// through, or ignores x and returns the stored sample under the cursor.
func (b *Buffer) ProcessSample(x float64) float64 {
	b.advance()

	if b.frozen {
		b.check()
		return b.samples[b.cursor]
	}

	b.samples[b.cursor] = x
	b.check()

	return x
}

// ProcessInPlace runs ProcessSample over buf.
func (b *Buffer) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = b.ProcessSample(buf[i])
	}
}

// Resize changes the logical loop length. n is clamped to [1, Cap()].
//
// Samples at indices >= n are zeroed and the cursor is clamped to n-1.
// Shrinking while frozen shortens the audible loop from the next sample on;
// growing while frozen exposes silence until the loop is recorded again.
func (b *Buffer) Resize(n int) {
	n = core.ClampInt(n, 1, len(b.samples))

	if n < b.length {
		core.Zero(b.samples[n:b.length])
	}

	b.cursor = min(b.cursor, n-1)
	b.length = n
	b.check()
}

// Reset clears the stored loop and restores the initial cursor. Length and
// freeze state are kept.
func (b *Buffer) Reset() {
	core.Zero(b.samples[:b.length])
	b.cursor = b.initialCursor()
	b.check()
}

// Snapshot copies the loop into dst in the order it would be replayed,
// starting with the sample after the cursor. dst is reused when it has
// enough capacity. Snapshot does not change the buffer state.
func (b *Buffer) Snapshot(dst []float64) []float64 {
	period := b.period()
	dst = core.EnsureLen(dst, period)

	start := b.cursor + 1
	if start >= period {
		start %= period
	}

	n := copy(dst, b.samples[start:period])
	copy(dst[n:], b.samples[:start])

	return dst
}

func (b *Buffer) advance() {
	b.cursor++

	if period := b.period(); b.cursor >= period {
		b.cursor %= period
	}
}

// period is the number of distinct cursor positions visited while looping.
func (b *Buffer) period() int {
	if b.legacyWrap && b.length > 1 {
		return b.length - 1
	}

	return b.length
}

func (b *Buffer) initialCursor() int {
	if b.legacyWrap {
		return 0
	}

	return b.length - 1
}
