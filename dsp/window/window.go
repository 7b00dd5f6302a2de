package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeFlatTop
)

type definition struct {
	name   string
	coeffs []float64
}

var definitions = map[Type]definition{
	TypeRectangular: {"rectangular", []float64{1}},
	TypeHann:        {"hann", []float64{0.5, -0.5}},
	TypeHamming:     {"hamming", []float64{0.54, -0.46}},
	TypeBlackman:    {"blackman", []float64{0.42, -0.5, 0.08}},
	TypeFlatTop:     {"flattop", []float64{0.21557895, -0.41663158, 0.277263158, -0.083578947, 0.006947368}},
}

// Types lists the known windows in declaration order.
var Types = []Type{TypeRectangular, TypeHann, TypeHamming, TypeBlackman, TypeFlatTop}

// String returns the lower-case window name.
func (t Type) String() string {
	if d, ok := definitions[t]; ok {
		return d.name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType parses a window name, case-insensitively.
func ParseType(s string) (Type, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, t := range Types {
		if definitions[t].name == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown window %q", s)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	periodic bool
}

// WithPeriodic selects the periodic form (FFT framing) instead of the
// symmetric form.
func WithPeriodic() Option {
	return func(c *config) {
		c.periodic = true
	}
}

// Generate returns length coefficients of window t. Unknown types and
// non-positive lengths yield nil.
func Generate(t Type, length int, opts ...Option) []float64 {
	d, ok := definitions[t]
	if !ok || length <= 0 {
		return nil
	}

	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	for i := range out {
		out[i] = cosineSum(samplePosition(i, length, cfg.periodic), d.coeffs)
	}

	return out
}

// Apply multiplies buf in place by window t.
func Apply(t Type, buf []float64, opts ...Option) {
	coeffs := Generate(t, len(buf), opts...)
	if len(coeffs) != len(buf) {
		return
	}

	vecmath.MulBlockInPlace(buf, coeffs)
}

// CoherentGain returns sum(w)/N, the DC gain of coeffs.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}

// EquivalentNoiseBandwidth returns the ENBW of coeffs in bins.
func EquivalentNoiseBandwidth(coeffs []float64) (float64, error) {
	if len(coeffs) == 0 {
		return 0, fmt.Errorf("window coefficients must not be empty")
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}
	if sum == 0 {
		return 0, fmt.Errorf("window coherent gain is zero")
	}

	return float64(len(coeffs)) * vecmath.DotProduct(coeffs, coeffs) / (sum * sum), nil
}

func cosineSum(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}

	return sum
}

func samplePosition(n, size int, periodic bool) float64 {
	if size <= 1 {
		return 0
	}

	den := float64(size - 1)
	if periodic {
		den = float64(size)
	}

	return float64(n) / den
}
