// Package analysis measures captured loops: level statistics, the repeat
// rate of the loop itself and the dominant frequency of its content.
//
// Build with the fastmath tag to use approximate square root and logarithm
// kernels for the level statistics.
package analysis
