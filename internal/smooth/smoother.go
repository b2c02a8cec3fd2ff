// Package smooth provides a one-pole parameter smoother for the audio
// thread. A raw parameter jump applied per-sample produces an audible click
// or zipper noise; running the target through a first-order lag spreads the
// transition over the configured time constant.
package smooth

import "math"

const (
	// DefaultTimeConstantMs is the smoothing time constant used by the
	// gain stage. 20 ms is long enough to suppress zipper noise under
	// continuous automation and short enough to feel immediate.
	DefaultTimeConstantMs = 20.0

	msPerSecond = 1000.0
)

// Smoother is a one-pole exponential lag:
//
//	y[n] = b*target + a*y[n-1],  a = exp(-2π / (tc_ms/1000 * rate)),  b = 1-a
//
// The output converges monotonically toward a constant target with no
// overshoot. Process is O(1), allocation-free and lock-free, and is the
// only method that may be called from the audio thread.
type Smoother struct {
	timeConstantMs float64
	a              float64
	b              float64
	z              float64
}

// New creates a smoother for the given time constant and sample rate.
func New(timeConstantMs, sampleRate float64) *Smoother {
	s := &Smoother{timeConstantMs: timeConstantMs}
	s.SetSampleRate(sampleRate)
	return s
}

// SetSampleRate recomputes the pole coefficient for a new sample rate.
// Must not be called concurrently with Process; the host guarantees
// sample-rate changes only happen while processing is inactive.
func (s *Smoother) SetSampleRate(sampleRate float64) {
	s.a = math.Exp(-2 * math.Pi / (s.timeConstantMs / msPerSecond * sampleRate))
	s.b = 1 - s.a
}

// Flush discards all history. The next Process call starts its lag from
// zero, so no residual swing from a previous activation bleeds into the
// next block.
func (s *Smoother) Flush() {
	s.z = 0
}

// Process advances the lag by one sample toward target and returns the new
// smoothed value. Call exactly once per output sample.
func (s *Smoother) Process(target float64) float64 {
	s.z = target*s.b + s.z*s.a
	return s.z
}

// Current returns the present smoothed value without advancing the lag.
func (s *Smoother) Current() float64 {
	return s.z
}

// TimeConstantMs returns the configured time constant.
func (s *Smoother) TimeConstantMs() float64 {
	return s.timeConstantMs
}
