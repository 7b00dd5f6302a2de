package analysis_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/xpcrash/dsp/analysis"
)

func ExampleAnalyzer_Analyze() {
	a, err := analysis.NewAnalyzer(48000, 1024)
	if err != nil {
		panic(err)
	}

	loop := make([]float64, 1200)
	for i := range loop {
		loop[i] = 0.5 * math.Sin(2*math.Pi*400*float64(i)/48000)
	}

	r, err := a.Analyze(loop)
	if err != nil {
		panic(err)
	}

	fmt.Printf("repeat=%.0fHz peak=%.1fdB\n", r.RepeatHz, r.PeakDB)

	// Output:
	// repeat=40Hz peak=-6.0dB
}
