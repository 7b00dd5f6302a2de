// Package window generates cosine-sum window functions for spectral
// analysis.
//
// Windows come in symmetric form (filter design) and periodic form (FFT
// framing, WithPeriodic). Only the cosine-sum family is provided; every
// window is a short list of coefficients a_k in
//
//	w(x) = sum_k a_k cos(2 pi k x),  x in [0, 1]
package window
