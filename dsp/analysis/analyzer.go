package analysis

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/xpcrash/dsp/window"
)

const (
	// MinFrameSize is the smallest FFT frame NewAnalyzer accepts.
	MinFrameSize = 64

	// SilenceDB is reported for levels at or below silenceFloor.
	SilenceDB = -120.0

	silenceFloor = 1e-6
)

// ErrEmptyLoop is returned when Analyze is called without samples.
var ErrEmptyLoop = errors.New("analysis: empty loop")

// Report summarizes one captured loop.
type Report struct {
	Length     int
	Peak       float64
	PeakDB     float64
	RMS        float64
	RMSDB      float64
	CrestDB    float64
	RepeatHz   float64
	DominantHz float64
}

// String formats the report on a single line.
func (r Report) String() string {
	return fmt.Sprintf("len=%d peak=%.1fdB rms=%.1fdB crest=%.1fdB repeat=%.2fHz dominant=%.1fHz",
		r.Length, r.PeakDB, r.RMSDB, r.CrestDB, r.RepeatHz, r.DominantHz)
}

// Analyzer computes loop reports with preallocated FFT state.
//
// Analyzer is not thread-safe.
type Analyzer struct {
	sampleRate float64
	frameSize  int

	plan     *algofft.Plan[complex128]
	window   []float64
	frame    []float64
	spectrum []complex128
	re       []float64
	im       []float64
	mag      []float64
}

// Option configures an Analyzer.
type Option func(*options)

type options struct {
	window window.Type
}

// WithWindow selects the spectrum window. The default is Hann.
func WithWindow(t window.Type) Option {
	return func(o *options) {
		o.window = t
	}
}

// NewAnalyzer creates an analyzer. frameSize must be a power of two >= MinFrameSize.
func NewAnalyzer(sampleRate float64, frameSize int, opts ...Option) (*Analyzer, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("analyzer sample rate must be > 0: %f", sampleRate)
	}

	if frameSize < MinFrameSize || frameSize&(frameSize-1) != 0 {
		return nil, fmt.Errorf("analyzer frame size must be a power of two >= %d: %d", MinFrameSize, frameSize)
	}

	o := options{window: window.TypeHann}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	win := window.Generate(o.window, frameSize, window.WithPeriodic())
	if win == nil {
		return nil, fmt.Errorf("analyzer window: unknown type %v", o.window)
	}

	plan, err := algofft.NewPlan64(frameSize)
	if err != nil {
		return nil, fmt.Errorf("analyzer fft plan: %w", err)
	}

	bins := frameSize/2 + 1
	a := &Analyzer{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		plan:       plan,
		window:     win,
		frame:      make([]float64, frameSize),
		spectrum:   make([]complex128, frameSize),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
	}

	return a, nil
}

// SampleRate returns sample rate in Hz.
func (a *Analyzer) SampleRate() float64 { return a.sampleRate }

// FrameSize returns the FFT size.
func (a *Analyzer) FrameSize() int { return a.frameSize }

// Analyze measures loop. The loop is treated as periodic: for the spectrum
// it is tiled to the frame size, so a frozen loop reports the content it
// actually repeats.
func (a *Analyzer) Analyze(loop []float64) (Report, error) {
	n := len(loop)
	if n == 0 {
		return Report{}, ErrEmptyLoop
	}

	peak := vecmath.MaxAbs(loop)
	rms := mathSqrt(vecmath.DotProduct(loop, loop) / float64(n))

	r := Report{
		Length:   n,
		Peak:     peak,
		PeakDB:   levelDB(peak),
		RMS:      rms,
		RMSDB:    levelDB(rms),
		RepeatHz: a.sampleRate / float64(n),
	}

	if peak <= silenceFloor {
		return r, nil
	}

	r.CrestDB = r.PeakDB - r.RMSDB

	dominant, err := a.dominant(loop)
	if err != nil {
		return Report{}, err
	}

	r.DominantHz = dominant

	return r, nil
}

func (a *Analyzer) dominant(loop []float64) (float64, error) {
	for i := range a.frame {
		a.frame[i] = loop[i%len(loop)]
	}

	vecmath.MulBlockInPlace(a.frame, a.window)

	for i, v := range a.frame {
		a.spectrum[i] = complex(v, 0)
	}

	if err := a.plan.Forward(a.spectrum, a.spectrum); err != nil {
		return 0, fmt.Errorf("analyzer fft: %w", err)
	}

	for k := range a.re {
		a.re[k] = real(a.spectrum[k])
		a.im[k] = imag(a.spectrum[k])
	}

	vecmath.Magnitude(a.mag, a.re, a.im)

	best := 1
	for k := 2; k < len(a.mag); k++ {
		if a.mag[k] > a.mag[best] {
			best = k
		}
	}

	return float64(best) * a.sampleRate / float64(a.frameSize), nil
}

func levelDB(x float64) float64 {
	if x <= silenceFloor {
		return SilenceDB
	}

	return 20 * mathLog10(x)
}
