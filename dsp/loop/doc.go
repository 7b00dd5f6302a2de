// Package loop provides a fixed-capacity loop capture buffer.
//
// A Buffer records the trailing Len() samples of a mono stream while
// recording and replays them as a seamless loop while frozen. Storage is
// allocated once at construction; the logical length can change at runtime
// without reallocation, which keeps every processing call free of
// allocations and safe for real-time audio callbacks.
//
// Build with the loopdebug tag to check the cursor and length invariants
// after every mutating call.
package loop
