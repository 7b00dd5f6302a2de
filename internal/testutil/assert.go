package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t on a length mismatch or on the first
// index where got and want differ by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()

	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}

	if i := FirstMismatch(got, want, eps); i >= 0 {
		t.Fatalf("[%d] = %v, want %v (eps %v)", i, got[i], want[i], eps)
	}
}

// RequireFinite fails t on the first NaN or Inf in data.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()

	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("[%d] = %v, want finite", i, v)
		}
	}
}

// RequirePeriodic fails t unless x[from:] repeats every period samples
// within eps.
func RequirePeriodic(t *testing.T, x []float64, period, from int, eps float64) {
	t.Helper()

	if i := periodBreak(x, period, from, eps); i >= 0 {
		t.Fatalf("not periodic at %d: %v != %v (period %d)", i, x[i], x[i-period], period)
	}
}

// IsPeriodic reports whether x[from:] repeats every period samples within
// eps. A section shorter than two periods is not periodic.
func IsPeriodic(x []float64, period, from int, eps float64) bool {
	if period <= 0 || from < 0 || len(x)-from < 2*period {
		return false
	}
	return periodBreak(x, period, from, eps) < 0
}

// FirstMismatch returns the first index where a and b differ by more than
// eps, or -1. Only the common prefix is compared.
func FirstMismatch(a, b []float64, eps float64) int {
	n := min(len(a), len(b))
	for i := range n {
		if math.Abs(a[i]-b[i]) > eps {
			return i
		}
	}
	return -1
}

func periodBreak(x []float64, period, from int, eps float64) int {
	if period <= 0 {
		return max(from, 0)
	}
	for i := max(from, 0) + period; i < len(x); i++ {
		if math.Abs(x[i]-x[i-period]) > eps {
			return i
		}
	}
	return -1
}
