// Package quadfilter implements the vectorized filter-evaluation library
// consumed by the block processor: a four-lane state object, a coefficient
// maker with block-rate interpolation targets, and a factory of per-sample
// evaluation functions.
//
// The lane group models a 4×float32 SIMD register: lanes advance in
// lockstep through the same instruction sequence, and a stereo effect uses
// lanes 0 and 1 while leaving the remaining lanes inactive. All storage is
// fixed at construction; nothing in this package allocates, locks or
// blocks after NewState returns.
package quadfilter

// Published layout constants. The state struct is sized by these and the
// block processor may rely on them when pre-sizing its own buffers.
const (
	// NumLanes is the SIMD lane-group width.
	NumLanes = 4

	// NumRegisters is the per-lane filter register count. Each
	// evaluation unit documents which registers it uses; the rest stay
	// zero.
	NumRegisters = 16

	// NumCoeffs is the per-lane coefficient slot count.
	NumCoeffs = 8

	// MaxFBComb bounds the feedback-comb delay in samples.
	MaxFBComb = 2048

	// FIRipolN is the interpolation kernel width in samples; the delay
	// line carries this much slack past the maximum comb delay.
	FIRipolN = 12

	// DelayLineLen is the per-lane delay-line capacity.
	DelayLineLen = MaxFBComb + FIRipolN
)

// LaneVec is one SIMD-width group of samples, one value per lane.
type LaneVec [NumLanes]float32

// State is the per-lane-group filter state: coefficient slots with their
// per-sample interpolation increments, filter registers, delay lines and
// write pointers. It is advanced exactly one sample position per
// evaluation call, in strictly increasing sample order: the evaluation is
// a stateful IIR recurrence, and reordering or skipping calls corrupts the
// history.
//
// The delay lines are owned exclusively by the State: they are sized at
// construction, never resized, and never aliased. Evaluation units receive
// read/write capability for the duration of a call only.
type State struct {
	// Coeff holds the current coefficient values. Under per-sample
	// interpolation the evaluation function advances Coeff by DCoeff
	// once per sample, reaching the block's target on its final sample.
	Coeff [NumCoeffs]LaneVec

	// DCoeff holds the per-sample coefficient increments.
	DCoeff [NumCoeffs]LaneVec

	// Reg holds the filter registers (integrator states, feedback
	// memory).
	Reg [NumRegisters]LaneVec

	// WritePos holds the per-lane delay-line write pointers.
	WritePos [NumLanes]int

	// Active marks which lanes carry signal. Inactive lanes still
	// execute (lockstep), but their input is zero and their output is
	// ignored.
	Active [NumLanes]bool

	delay [NumLanes][DelayLineLen]float32
}

// NewState returns a fully zeroed state with no active lanes.
func NewState() *State {
	return &State{}
}

// Reset zeroes every register, coefficient slot, increment, delay-line
// sample and write pointer. The lane mask is preserved. Must be called
// before the first block after construction, after a sample-rate change,
// and on every activation; stale history must never leak across
// activation boundaries.
func (s *State) Reset() {
	for i := range s.Coeff {
		s.Coeff[i] = LaneVec{}
		s.DCoeff[i] = LaneVec{}
	}
	for i := range s.Reg {
		s.Reg[i] = LaneVec{}
	}
	for l := range NumLanes {
		s.WritePos[l] = 0
		clear(s.delay[l][:])
	}
}

// SetLaneActive sets one lane's position in the active mask.
// Out-of-range lanes are ignored.
func (s *State) SetLaneActive(lane int, active bool) {
	if lane < 0 || lane >= NumLanes {
		return
	}
	s.Active[lane] = active
}

// ActiveLanes returns the number of active lanes.
func (s *State) ActiveLanes() int {
	n := 0
	for _, a := range s.Active {
		if a {
			n++
		}
	}
	return n
}

// HistoryQuiescent reports whether all registers, delay-line contents and
// write pointers are zero, the condition required before the first block
// of an activation. Coefficient slots are checked separately because an
// activation legitimately installs initial coefficients before processing.
func (s *State) HistoryQuiescent() bool {
	for i := range s.Reg {
		for l := range NumLanes {
			if s.Reg[i][l] != 0 {
				return false
			}
		}
	}
	for l := range NumLanes {
		if s.WritePos[l] != 0 {
			return false
		}
		for _, v := range s.delay[l] {
			if v != 0 {
				return false
			}
		}
	}
	return true
}

// CoefficientsZero reports whether all coefficient slots and increments
// are zero.
func (s *State) CoefficientsZero() bool {
	for i := range s.Coeff {
		for l := range NumLanes {
			if s.Coeff[i][l] != 0 || s.DCoeff[i][l] != 0 {
				return false
			}
		}
	}
	return true
}

// stepCoefficients advances the per-sample coefficient interpolation by
// one step. Evaluation units call this exactly once per sample before
// reading any coefficient.
func (s *State) stepCoefficients() {
	for i := range s.Coeff {
		for l := range NumLanes {
			s.Coeff[i][l] += s.DCoeff[i][l]
		}
	}
}
