package loop

import (
	"testing"

	"github.com/cwbudde/xpcrash/internal/testutil"
)

func BenchmarkProcessInPlaceRecording(b *testing.B) {
	buf, _ := New(65536, 1024)
	block := testutil.DeterministicNoise(1, 1, 512)
	b.SetBytes(int64(len(block) * 8))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf.ProcessInPlace(block)
	}
}

func BenchmarkProcessInPlaceFrozen(b *testing.B) {
	buf, _ := New(65536, 1024)
	buf.ProcessInPlace(testutil.DeterministicNoise(1, 1, 1024))
	buf.Freeze()

	block := make([]float64, 512)
	b.SetBytes(int64(len(block) * 8))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		buf.ProcessInPlace(block)
	}
}

func BenchmarkResizeSweep(b *testing.B) {
	buf, _ := New(65536, 65536)

	for i := 0; i < b.N; i++ {
		buf.Resize(128 + i%65408)
	}
}
