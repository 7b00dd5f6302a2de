// Package resample converts whole signals between integer sample rates with
// a windowed-sinc polyphase FIR.
//
// Output is aligned with the input: the filter delay is compensated, so
// sample m of the output sits at time m/outRate like sample n of the input
// sits at n/inRate. Conversion is one-shot; there is no streaming state.
//
// Default quality/performance matrix:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
