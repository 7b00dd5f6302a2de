package signal

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/cwbudde/algo-vecmath"
	"github.com/cwbudde/xpcrash/dsp/core"
)

// Kind names a synthetic test signal.
type Kind string

// Supported signal kinds.
const (
	KindSine  Kind = "sine"
	KindNoise Kind = "noise"
	KindPulse Kind = "pulse"
	KindChord Kind = "chord"
)

// Kinds lists every supported signal kind.
var Kinds = []Kind{KindSine, KindNoise, KindPulse, KindChord}

// ParseKind parses a signal kind name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}

	return "", fmt.Errorf("unknown signal kind %q", s)
}

// Generator creates deterministic signals from a shared configuration.
type Generator struct {
	cfg  core.ProcessorConfig
	seed int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets deterministic random seed for noise generation.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a configured signal generator.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a configured signal generator with signal-specific options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the generator processor configuration.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() int64 { return g.seed }

// SetSeed changes the noise seed.
func (g *Generator) SetSeed(seed int64) { g.seed = seed }

// Generate renders samples of the given kind at amplitude with the
// default parameters used for demo material: a 220 Hz sine, white noise,
// a 4 Hz click train and an A minor triad.
func (g *Generator) Generate(kind Kind, amplitude float64, samples int) ([]float64, error) {
	switch kind {
	case KindSine:
		return g.Sine(220, amplitude, samples)
	case KindNoise:
		return g.WhiteNoise(amplitude, samples)
	case KindPulse:
		return g.Pulse(4, amplitude, samples)
	case KindChord:
		return g.Chord([]float64{220, 261.63, 329.63}, amplitude, samples)
	default:
		return nil, fmt.Errorf("unknown signal kind %q", kind)
	}
}

// Sine generates a sine wave.
func (g *Generator) Sine(freqHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("sine samples must be > 0: %d", samples)
	}
	if g.cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("sine sample rate must be > 0: %f", g.cfg.SampleRate)
	}
	out := make([]float64, samples)
	step := 2 * math.Pi * freqHz / g.cfg.SampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out, nil
}

// WhiteNoise generates deterministic white noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}
	out := make([]float64, samples)
	rng := rand.New(rand.NewSource(g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Pulse generates a click train: single-sample impulses of the given
// amplitude repeating at rateHz, the first one at sample 0.
func (g *Generator) Pulse(rateHz, amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("pulse samples must be > 0: %d", samples)
	}
	if rateHz <= 0 || rateHz > g.cfg.SampleRate {
		return nil, fmt.Errorf("pulse rate must be in (0, %f]: %f", g.cfg.SampleRate, rateHz)
	}
	out := make([]float64, samples)
	period := g.cfg.SampleRate / rateHz
	for next := 0.0; int(next) < samples; next += period {
		out[int(next)] = amplitude
	}
	return out, nil
}

// Chord sums equal-level sines at freqsHz and scales the result so its
// peak equals amplitude.
func (g *Generator) Chord(freqsHz []float64, amplitude float64, samples int) ([]float64, error) {
	if len(freqsHz) == 0 {
		return nil, fmt.Errorf("chord needs at least one frequency")
	}

	out := make([]float64, samples)
	for _, f := range freqsHz {
		tone, err := g.Sine(f, 1, samples)
		if err != nil {
			return nil, fmt.Errorf("chord tone %f: %w", f, err)
		}
		vecmath.AddBlockInPlace(out, tone)
	}

	return Normalize(out, amplitude)
}

// Normalize scales data to target peak amplitude and returns a new slice.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	out := make([]float64, len(data))
	maxAbs := vecmath.MaxAbs(data)
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	vecmath.ScaleBlock(out, data, targetPeak/maxAbs)
	return out, nil
}
