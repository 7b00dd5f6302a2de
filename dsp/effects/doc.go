// Package effects provides multichannel effect processors built on the
// dsp kernels.
//
//   - Crash: per-channel loop capture with freeze and hold controls. While
//     frozen it replays the last captured loop in place of the live input,
//     the stutter of an audio driver stuck on its last buffer.
//
// Processors have zero-allocation hot paths and take control changes at
// block boundaries.
package effects
