// Package dither quantizes normalized samples to signed integer PCM with
// optional dither noise.
//
// Without dither the quantizer rounds to the nearest code, so repeating
// input repeats output exactly. Rectangular and triangular (TPDF) dither
// decorrelate the rounding error from the signal at the cost of a small,
// constant noise floor.
package dither
