package dither_test

import (
	"fmt"

	"github.com/cwbudde/xpcrash/dsp/dither"
)

func ExampleNewQuantizer() {
	q, err := dither.NewQuantizer(dither.WithBitDepth(8))
	if err != nil {
		panic(err)
	}

	out := make([]int, 4)
	q.QuantizeBlock(out, []float64{-1, -0.5, 0.5, 1})
	fmt.Println(out)
	// Output: [-127 -64 64 127]
}
