// SPDX-License-Identifier: EPL-2.0

package utils

import (
	"math"
	"testing"
)

func TestFloat32ToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input float32
		want  int16
	}{
		{"zero", 0.0, 0},
		{"max positive", 1.0, math.MaxInt16},
		{"max negative", -1.0, math.MinInt16},
		{"half positive", 0.5, 16383},
		{"half negative", -0.5, -16384},
		{"clamp above", 1.5, math.MaxInt16},
		{"clamp below", -3, math.MinInt16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Float32ToInt16(tt.input); got != tt.want {
				t.Errorf("Float32ToInt16(%v) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestClampInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input float64
		want  int16
	}{
		{0, 0},
		{123.9, 123},
		{-123.9, -123},
		{32767, 32767},
		{40000, 32767},
		{-32768, -32768},
		{-1e9, -32768},
		{math.Inf(1), 32767},
		{math.Inf(-1), -32768},
		{math.NaN(), 0},
	}

	for _, tt := range tests {
		if got := ClampInt16(tt.input); got != tt.want {
			t.Errorf("ClampInt16(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestScaleToInt16(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		v     int
		depth int
		want  int16
	}{
		{"16-bit passthrough", -1234, 16, -1234},
		{"unknown depth passthrough", 99, 0, 99},
		{"8-bit max", 127, 8, 127 << 8},
		{"8-bit min", -128, 8, math.MinInt16},
		{"24-bit max", 1<<23 - 1, 24, math.MaxInt16},
		{"24-bit min", -(1 << 23), 24, math.MinInt16},
		{"32-bit half", 1 << 30, 32, 1 << 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ScaleToInt16(tt.v, tt.depth); got != tt.want {
				t.Errorf("ScaleToInt16(%d, %d) = %d, want %d", tt.v, tt.depth, got, tt.want)
			}
		})
	}
}

func BenchmarkFloat32ToInt16(b *testing.B) {
	for b.Loop() {
		_ = Float32ToInt16(0.123)
	}
}
