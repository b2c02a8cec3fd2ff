// Package testutil provides reusable test helpers for the signal-path
// tests: deterministic test signals, level measurement and numeric guards.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/simd/f32"
)

// Default tolerances for signal-path assertions.
const (
	// SampleTolerance is the per-sample comparison tolerance for
	// float32 signal paths.
	SampleTolerance = 1e-6

	// LevelToleranceDB is the tolerance for level comparisons in dB.
	LevelToleranceDB = 0.1
)

// Sine returns n samples of a unit-amplitude sine at freq Hz.
func Sine(n int, freq, sampleRate float64) []float32 {
	out := make([]float32, n)
	w := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = float32(math.Sin(w * float64(i)))
	}
	return out
}

// SineSweep returns n samples of a linear frequency sweep from f0 to f1 Hz.
func SineSweep(n int, f0, f1, sampleRate float64) []float32 {
	out := make([]float32, n)
	phase := 0.0
	for i := range out {
		frac := float64(i) / float64(n)
		freq := f0 + (f1-f0)*frac
		phase += 2 * math.Pi * freq / sampleRate
		out[i] = float32(math.Sin(phase))
	}
	return out
}

// Impulse returns n samples that are zero except for a unit sample at
// index 0.
func Impulse(n int) []float32 {
	out := make([]float32, n)
	out[0] = 1
	return out
}

// Silence returns n zero samples.
func Silence(n int) []float32 {
	return make([]float32, n)
}

// RMS returns the root-mean-square level of a signal.
func RMS(s []float32) float64 {
	if len(s) == 0 {
		return 0
	}
	sum := f32.DotProductUnsafe(s, s)
	return math.Sqrt(float64(sum) / float64(len(s)))
}

// AssertNoNaNOrInf verifies that no samples are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllZero verifies that every sample is exactly zero.
func AssertAllZero(t *testing.T, s []float32) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "nonzero sample",
				"s[%d] = %v, want exactly 0", i, v)
		}
	}
	return true
}

// AssertMaxAbsBelow verifies that the peak absolute sample stays under
// bound.
func AssertMaxAbsBelow(t *testing.T, s []float32, bound float64) bool {
	t.Helper()
	for i, v := range s {
		if math.Abs(float64(v)) >= bound {
			return assert.Fail(t, "sample above bound",
				"s[%d] = %v, bound %v", i, v, bound)
		}
	}
	return true
}
