// SPDX-License-Identifier: EPL-2.0

// Package utils holds sample conversion helpers shared by the decoders and the
// resampler.
package utils

import "math"

// Float32ToInt16 maps a normalized sample in [-1,1] to int16. Out of range
// input is clamped. Negative values scale by 32768 so -1 reaches MinInt16.
func Float32ToInt16(x float32) int16 {
	if x >= 1 {
		return math.MaxInt16
	}
	if x <= -1 {
		return math.MinInt16
	}
	if x < 0 {
		return int16(x * 32768)
	}

	return int16(x * 32767)
}

// ClampInt16 saturates v to the int16 range. NaN maps to 0.
func ClampInt16(v float64) int16 {
	switch {
	case math.IsNaN(v):
		return 0
	case v >= math.MaxInt16:
		return math.MaxInt16
	case v <= math.MinInt16:
		return math.MinInt16
	}

	return int16(v)
}

// ScaleToInt16 rescales an integer sample of the given bit depth to 16 bits.
// Depths below 16 are shifted up, depths above are shifted down.
func ScaleToInt16(v, bitDepth int) int16 {
	switch {
	case bitDepth <= 0 || bitDepth == 16:
		return ClampInt16(float64(v))
	case bitDepth < 16:
		return ClampInt16(float64(v << (16 - bitDepth)))
	default:
		return ClampInt16(float64(v >> (bitDepth - 16)))
	}
}
