package resample

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRate indicates a non-positive sample rate.
var ErrInvalidRate = errors.New("resample: invalid sample rate")

// Quality controls the anti-aliasing filter.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// Profile holds the filter parameters of a quality mode.
type Profile struct {
	TapsPerPhase int
	CutoffScale  float64
	KaiserBeta   float64
}

// QualityProfile returns the parameters used by quality mode q.
func QualityProfile(q Quality) Profile {
	switch q {
	case QualityFast:
		return Profile{TapsPerPhase: 16, CutoffScale: 0.88, KaiserBeta: 5.0}
	case QualityBest:
		return Profile{TapsPerPhase: 64, CutoffScale: 0.96, KaiserBeta: 9.0}
	default:
		return Profile{TapsPerPhase: 32, CutoffScale: 0.92, KaiserBeta: 7.5}
	}
}

// Option configures a Resampler.
type Option func(*Profile)

// WithQuality selects a predefined quality mode.
func WithQuality(q Quality) Option {
	return func(p *Profile) {
		*p = QualityProfile(q)
	}
}

// Resampler converts from one fixed rate to another.
type Resampler struct {
	up     int
	down   int
	center int
	phases [][]float64
}

// New designs a resampler from inRate to outRate Hz.
func New(inRate, outRate int, opts ...Option) (*Resampler, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d", ErrInvalidRate, inRate, outRate)
	}

	p := QualityProfile(QualityBalanced)
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}

	g := gcd(inRate, outRate)
	r := &Resampler{up: outRate / g, down: inRate / g}

	if r.up == 1 && r.down == 1 {
		r.phases = [][]float64{{1}}
		return r, nil
	}

	taps := design(r.up, r.down, p)
	r.center = len(taps) / 2

	r.phases = make([][]float64, r.up)
	for ph := range r.phases {
		for i := ph; i < len(taps); i += r.up {
			r.phases[ph] = append(r.phases[ph], taps[i])
		}
	}

	return r, nil
}

// Ratio returns the reduced up/down factors.
func (r *Resampler) Ratio() (up, down int) {
	return r.up, r.down
}

// OutputLen returns the number of samples Convert produces for n inputs.
func (r *Resampler) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*r.up + r.down - 1) / r.down
}

// Convert resamples x into a new slice.
func (r *Resampler) Convert(x []float64) []float64 {
	out := make([]float64, r.OutputLen(len(x)))

	for m := range out {
		u := m*r.down + r.center
		i, ph := u/r.up, u%r.up

		var y float64
		for k, c := range r.phases[ph] {
			j := i - k
			if j < 0 {
				break
			}
			if j < len(x) {
				y += c * x[j]
			}
		}

		out[m] = y
	}

	return out
}

// ConvertPlanar resamples every channel of a planar signal. Equal rates
// return the input unchanged.
func ConvertPlanar(channels [][]float64, inRate, outRate int, opts ...Option) ([][]float64, error) {
	if inRate == outRate && inRate > 0 {
		return channels, nil
	}

	r, err := New(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, len(channels))
	for ch, x := range channels {
		out[ch] = r.Convert(x)
	}

	return out, nil
}

// design returns an odd-length lowpass prototype at the upsampled rate
// with DC gain up.
func design(up, down int, p Profile) []float64 {
	n := p.TapsPerPhase*up + 1
	fc := 0.5 / float64(max(up, down)) * p.CutoffScale
	center := float64(n / 2)

	taps := make([]float64, n)
	sum := 0.0
	for i := range taps {
		t := float64(i) - center
		taps[i] = 2 * fc * sinc(2*fc*t) * kaiser(i, n, p.KaiserBeta)
		sum += taps[i]
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}

	return taps
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}

	pix := math.Pi * x

	return math.Sin(pix) / pix
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 || beta == 0 {
		return 1
	}

	t := 2*float64(i)/float64(n-1) - 1
	a := math.Sqrt(math.Max(0, 1-t*t))

	return i0(beta*a) / i0(beta)
}

// i0 is the zeroth-order modified Bessel function (power series).
func i0(x float64) float64 {
	sum := 1.0
	term := 1.0

	x2 := (x * x) / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)

		sum += term
		if term < 1e-16*sum {
			break
		}
	}

	return sum
}
