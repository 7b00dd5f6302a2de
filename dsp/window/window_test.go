package window

import (
	"math"
	"testing"

	"github.com/cwbudde/xpcrash/internal/testutil"
)

func TestGenerateFinite(t *testing.T) {
	for _, typ := range Types {
		t.Run(typ.String(), func(t *testing.T) {
			w := Generate(typ, 64)
			if len(w) != 64 {
				t.Fatalf("len=%d, want 64", len(w))
			}
			testutil.RequireFinite(t, w)
		})
	}
}

func TestGenerateInvalid(t *testing.T) {
	if w := Generate(TypeHann, 0); w != nil {
		t.Errorf("zero length = %v, want nil", w)
	}
	if w := Generate(Type(99), 8); w != nil {
		t.Errorf("unknown type = %v, want nil", w)
	}
}

func TestSymmetricEndpoints(t *testing.T) {
	for _, typ := range []Type{TypeHann, TypeBlackman} {
		w := Generate(typ, 33)
		if math.Abs(w[0]) > 1e-12 || math.Abs(w[32]) > 1e-12 {
			t.Errorf("%s endpoints = %v, %v; want 0", typ, w[0], w[32])
		}
		if math.Abs(w[16]-1) > 1e-12 {
			t.Errorf("%s center = %v, want 1", typ, w[16])
		}
	}
}

func TestPeriodicHannSumsToHalf(t *testing.T) {
	w := Generate(TypeHann, 1024, WithPeriodic())
	if g := CoherentGain(w); math.Abs(g-0.5) > 1e-12 {
		t.Errorf("coherent gain = %v, want 0.5", g)
	}
}

func TestEquivalentNoiseBandwidth(t *testing.T) {
	tests := []struct {
		typ  Type
		want float64
	}{
		{TypeRectangular, 1},
		{TypeHann, 1.5},
		{TypeHamming, 1.3628},
		{TypeBlackman, 1.7268},
	}

	for _, tt := range tests {
		got, err := EquivalentNoiseBandwidth(Generate(tt.typ, 4096, WithPeriodic()))
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("%s ENBW = %v, want %v", tt.typ, got, tt.want)
		}
	}

	if _, err := EquivalentNoiseBandwidth(nil); err == nil {
		t.Error("empty coefficients expected error")
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(" " + typ.String() + " ")
		if err != nil || got != typ {
			t.Errorf("ParseType(%q) = %v, %v", typ, got, err)
		}
	}
	if _, err := ParseType("kaiser"); err == nil {
		t.Error("unknown window expected error")
	}
}
