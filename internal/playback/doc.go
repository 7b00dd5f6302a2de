// Package playback sends a float32 interleaved stream to the default audio
// device.
//
// Builds with the headless tag replace the device with a stub that accepts
// the stream but never reads it, for CI machines without audio hardware.
package playback
