package dither

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	defaultBitDepth = 16
	minBitDepth     = 2
	maxBitDepth     = 24
)

type config struct {
	bitDepth   int
	ditherType Type
	seed       uint64
	seeded     bool
}

// Option configures a Quantizer.
type Option func(*config) error

// WithBitDepth sets the target bit depth (2-24, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithType sets the dither noise type (default TypeNone).
func WithType(t Type) Option {
	return func(cfg *config) error {
		if !t.Valid() {
			return fmt.Errorf("dither: invalid type: %d", t)
		}

		cfg.ditherType = t

		return nil
	}
}

// WithSeed makes the dither noise reproducible.
func WithSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		cfg.seeded = true

		return nil
	}
}

// Quantizer maps samples in [-1, 1] to integers in
// [-(2^(bits-1)-1), 2^(bits-1)-1]. A Quantizer is not safe for concurrent use.
type Quantizer struct {
	bitDepth   int
	ditherType Type
	rng        *rand.Rand

	scale float64
	limit int
}

// NewQuantizer creates a quantizer. The default is 16 bit without dither.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := config{bitDepth: defaultBitDepth}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	seed := cfg.seed
	if !cfg.seeded {
		seed = rand.Uint64()
	}

	q := &Quantizer{
		bitDepth:   cfg.bitDepth,
		ditherType: cfg.ditherType,
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	q.limit = 1<<(q.bitDepth-1) - 1
	q.scale = float64(q.limit)

	return q, nil
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// Type returns the dither type.
func (q *Quantizer) Type() Type { return q.ditherType }

// Quantize converts one sample. Out-of-range input is clipped.
func (q *Quantizer) Quantize(x float64) int {
	if math.IsNaN(x) {
		return 0
	}

	v := int(math.Round(x*q.scale + q.noise()))

	return max(-q.limit, min(q.limit, v))
}

// QuantizeBlock converts src into dst. dst must be at least as long as src.
func (q *Quantizer) QuantizeBlock(dst []int, src []float64) {
	for i, x := range src {
		dst[i] = q.Quantize(x)
	}
}

func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case TypeRectangular:
		return q.rng.Float64() - 0.5
	case TypeTriangular:
		return q.rng.Float64() - q.rng.Float64()
	default:
		return 0
	}
}
