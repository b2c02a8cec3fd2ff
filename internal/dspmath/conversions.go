// Package dspmath provides pure, stateless conversion functions shared by
// the control path and the coefficient maker.
//
// Everything here is scalar math with an explicitly documented domain; none
// of it allocates or keeps state, so it is safe to call from the audio
// thread.
package dspmath

import "math"

const (
	// MinGainDB is the hard floor of the gain parameter. Values at or
	// below this collapse to exactly zero linear gain (digital silence)
	// rather than following the exponential curve.
	MinGainDB = -90.0

	// MaxGainDB is the upper bound of the gain parameter.
	MaxGainDB = 30.0

	// dbPerDecade converts between decibels and base-10 exponents for
	// amplitude: linear = 10^(dB/20).
	dbPerDecade = 20.0

	// referenceFrequency is the frequency of the note offset origin.
	// A cutoff note of 0 maps to 440 Hz (concert A), matching the
	// note-relative convention of the filter library.
	referenceFrequency = 440.0

	// semitonesPerOctave is the equal-temperament octave division.
	semitonesPerOctave = 12.0
)

// DBToLinear converts a gain in decibels to a linear amplitude factor.
//
// Domain: any finite dB value. Values at or below MinGainDB return exactly
// 0. The -90 dB floor is defined behavior, not an approximation, so a
// host sweeping the gain fully down reaches true digital silence.
func DBToLinear(db float64) float64 {
	if db <= MinGainDB {
		return 0
	}
	return math.Pow(10, db/dbPerDecade)
}

// LinearToDB converts a linear amplitude factor to decibels.
// Non-positive input returns MinGainDB (the silence floor).
func LinearToDB(linear float64) float64 {
	if linear <= 0 {
		return MinGainDB
	}
	return dbPerDecade * math.Log10(linear)
}

// Clamp limits v to the closed interval [lo, hi].
// lo must not exceed hi; that is a programming error, not a runtime case.
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NoteToFrequency converts a note-relative pitch offset in semitones to a
// frequency in Hz: 440 * 2^(note/12).
//
// Note 0 is 440 Hz, -12 is 220 Hz, +12 is 880 Hz. The declared cutoff
// range of [-60, 64] maps to roughly 13.8 Hz .. 17.7 kHz.
func NoteToFrequency(note float64) float64 {
	return referenceFrequency * math.Pow(2, note/semitonesPerOctave)
}
