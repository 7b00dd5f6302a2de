package loop_test

import (
	"fmt"

	"github.com/cwbudde/xpcrash/dsp/loop"
)

func ExampleBuffer() {
	b, err := loop.New(16, 4)
	if err != nil {
		panic(err)
	}

	rec := []float64{1, 2, 3, 4, 5, 6}
	b.ProcessInPlace(rec)

	b.Freeze()

	out := make([]float64, 6)
	b.ProcessInPlace(out)

	fmt.Println(rec)
	fmt.Println(out)

	// Output:
	// [1 2 3 4 5 6]
	// [3 4 5 6 3 4]
}

func ExampleBuffer_Resize() {
	b, err := loop.New(16, 4)
	if err != nil {
		panic(err)
	}

	b.ProcessInPlace([]float64{1, 2, 3, 4})
	b.Freeze()
	b.Resize(2)

	out := make([]float64, 4)
	b.ProcessInPlace(out)

	fmt.Println(b.Len(), out)

	// Output:
	// 2 [1 2 1 2]
}
