package host

import (
	"errors"
	"fmt"
	"io"

	"github.com/cwbudde/xpcrash/dsp/signal"
)

// Source supplies planar input blocks.
//
// ReadBlock fills up to len(block[0]) frames of every channel and returns
// the number of frames written. It returns 0, io.EOF once the source is
// drained.
type Source interface {
	Channels() int
	ReadBlock(block [][]float64) (int, error)
}

// SliceSource plays planar samples held in memory, optionally looping.
type SliceSource struct {
	data [][]float64
	pos  int
	loop bool
}

// NewSliceSource wraps data, one slice per channel. All channels must have
// the same, non-zero length.
func NewSliceSource(data [][]float64, loop bool) (*SliceSource, error) {
	if len(data) == 0 {
		return nil, errors.New("source needs at least one channel")
	}

	frames := len(data[0])
	if frames == 0 {
		return nil, errors.New("source channels must not be empty")
	}

	for ch, d := range data {
		if len(d) != frames {
			return nil, fmt.Errorf("source channel %d has %d frames, want %d", ch, len(d), frames)
		}
	}

	return &SliceSource{data: data, loop: loop}, nil
}

// Channels returns the channel count.
func (s *SliceSource) Channels() int { return len(s.data) }

// Frames returns the length of the material in frames.
func (s *SliceSource) Frames() int { return len(s.data[0]) }

// Seek moves the read position, clamped to [0, Frames()].
func (s *SliceSource) Seek(frame int) {
	s.pos = min(max(frame, 0), s.Frames())
}

// ReadBlock implements Source.
func (s *SliceSource) ReadBlock(block [][]float64) (int, error) {
	if len(block) != len(s.data) {
		return 0, fmt.Errorf("source has %d channels, block has %d", len(s.data), len(block))
	}

	want := len(block[0])
	frames := s.Frames()
	n := 0

	for n < want {
		if s.pos >= frames {
			if !s.loop {
				break
			}
			s.pos = 0
		}

		c := min(want-n, frames-s.pos)
		for ch, d := range s.data {
			copy(block[ch][n:n+c], d[s.pos:s.pos+c])
		}

		n += c
		s.pos += c
	}

	if n == 0 && want > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// NewGeneratorSource renders one second of a synthetic signal per channel
// and loops it forever.
func NewGeneratorSource(gen *signal.Generator, kind signal.Kind, amplitude float64, channels int) (*SliceSource, error) {
	if channels < 1 {
		return nil, fmt.Errorf("generator source channels must be >= 1: %d", channels)
	}

	samples := int(gen.Config().SampleRate)

	data := make([][]float64, channels)
	for ch := range data {
		d, err := gen.Generate(kind, amplitude, samples)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", kind, err)
		}
		data[ch] = d
	}

	return NewSliceSource(data, true)
}

// LimitedSource stops an inner source after a fixed number of frames.
type LimitedSource struct {
	src       Source
	remaining int
	view      [][]float64
}

// Limit returns a source that yields at most frames frames of src.
func Limit(src Source, frames int) *LimitedSource {
	return &LimitedSource{
		src:       src,
		remaining: max(frames, 0),
		view:      make([][]float64, src.Channels()),
	}
}

// Channels implements Source.
func (l *LimitedSource) Channels() int { return l.src.Channels() }

// ReadBlock implements Source.
func (l *LimitedSource) ReadBlock(block [][]float64) (int, error) {
	if l.remaining == 0 {
		return 0, io.EOF
	}
	if len(block) != len(l.view) {
		return 0, fmt.Errorf("source has %d channels, block has %d", len(l.view), len(block))
	}

	want := min(len(block[0]), l.remaining)
	for ch := range block {
		l.view[ch] = block[ch][:want]
	}

	n, err := l.src.ReadBlock(l.view)
	l.remaining -= n

	return n, err
}
