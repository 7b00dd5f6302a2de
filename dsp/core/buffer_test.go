package core

import "testing"

func TestEnsureLenReuse(t *testing.T) {
	buf := make([]float64, 4, 8)

	out := EnsureLen(buf, 6)
	if len(out) != 6 {
		t.Fatalf("len = %d, want 6", len(out))
	}

	if cap(out) != cap(buf) {
		t.Fatalf("cap = %d, want %d", cap(out), cap(buf))
	}

	if got := EnsureLen(buf, 0); len(got) != 0 {
		t.Fatalf("EnsureLen(0) len = %d", len(got))
	}

	if got := EnsureLen(nil, 3); len(got) != 3 {
		t.Fatalf("EnsureLen(nil, 3) len = %d", len(got))
	}
}

func TestZero(t *testing.T) {
	buf := []float64{1, 2, 3}
	Zero(buf)

	for i, v := range buf {
		if v != 0 {
			t.Fatalf("buf[%d] = %v, want 0", i, v)
		}
	}
}

func TestDeinterleave(t *testing.T) {
	dst := MakePlanar(2, 3)
	src := []float32{1, -1, 2, -2, 3, -3, 4}

	n := Deinterleave(dst, src)
	if n != 3 {
		t.Fatalf("frames = %d, want 3", n)
	}

	for i := range 3 {
		if dst[0][i] != float64(i+1) || dst[1][i] != -float64(i+1) {
			t.Fatalf("frame %d = (%v, %v)", i, dst[0][i], dst[1][i])
		}
	}
}

func TestDeinterleaveShortChannel(t *testing.T) {
	dst := [][]float64{make([]float64, 4), make([]float64, 2)}

	if n := Deinterleave(dst, make([]float32, 8)); n != 2 {
		t.Fatalf("frames = %d, want 2", n)
	}

	if n := Deinterleave(nil, make([]float32, 8)); n != 0 {
		t.Fatalf("frames with no channels = %d, want 0", n)
	}
}

func TestInterleave(t *testing.T) {
	src := [][]float64{{1, 2, 3}, {-1, -2, -3}}
	dst := make([]float32, 6)

	if err := Interleave(dst, src, 3); err != nil {
		t.Fatal(err)
	}

	want := []float32{1, -1, 2, -2, 3, -3}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestInterleaveErrors(t *testing.T) {
	src := [][]float64{{1, 2}, {1}}

	if err := Interleave(make([]float32, 3), src, 2); err == nil {
		t.Fatal("expected error for short destination")
	}

	if err := Interleave(make([]float32, 4), src, 2); err == nil {
		t.Fatal("expected error for short channel")
	}
}
