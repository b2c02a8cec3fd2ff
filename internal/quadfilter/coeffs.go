package quadfilter

import (
	"math"

	"github.com/Simon-L/go-filtergain/internal/dspmath"
)

// InterpolationPolicy selects how a block's new coefficients reach the
// evaluation function.
type InterpolationPolicy int

const (
	// InterpPerSample ramps each coefficient linearly across the block:
	// the maker installs a start value and a per-sample increment, and
	// the evaluation function advances the coefficient every sample.
	// This is the default; it tracks parameter automation without a
	// step discontinuity at the block boundary.
	InterpPerSample InterpolationPolicy = iota

	// InterpBlockStep applies the block's target coefficients once at
	// block start with zero increments. Cheaper, but audible as zipper
	// noise under fast cutoff automation.
	InterpBlockStep
)

// Coefficient slot assignments per filter type.
const (
	// Ladder lowpass slots.
	coeffLadderAlpha    = 0 // one-pole gain G = g/(1+g)
	coeffLadderFeedback = 1 // resonance feedback amount, 0..ladderFeedbackMax
	coeffLadderComp     = 2 // passband makeup gain

	// Feedback comb slots.
	coeffCombDelay    = 0 // delay in samples, fractional
	coeffCombFeedback = 1 // feedback gain magnitude
)

// Coefficient derivation constants.
const (
	// minCutoffHz keeps tan() well away from zero.
	minCutoffHz = 5.0

	// maxCutoffFraction bounds the cutoff below Nyquist so the bilinear
	// prewarp stays finite.
	maxCutoffFraction = 0.49

	// ladderFeedbackMax maps resonance 1.0 just below the ladder's
	// self-oscillation boundary of 4.
	ladderFeedbackMax = 3.95

	// ladderCompPerFeedback restores passband level lost to the
	// resonance feedback: makeup = 1 + k * this.
	ladderCompPerFeedback = 0.5

	// combFeedbackMax keeps the comb decaying; unity feedback would
	// ring forever.
	combFeedbackMax = 0.95

	// minCombDelay keeps the fractional read clear of the write
	// pointer by the interpolation kernel width.
	minCombDelay = FIRipolN

	// maxCombDelay leaves one guard sample for fractional reads.
	maxCombDelay = MaxFBComb - 1
)

// CoefficientMaker derives coefficient targets from control parameters and
// folds them into a State at block rate.
//
// The maker holds the interpolation start point and the current targets.
// The intended per-block sequence is:
//
//	maker.FromState(state)        // pull the previous block's final values
//	maker.MakeCoeffs(...)         // only when a control parameter changed
//	maker.UpdateState(state)      // rebuild increments, fold into lanes
//
// FromState before every block keeps the ramp continuous: each block's
// interpolation starts from wherever the previous block actually ended,
// never from a fixed baseline.
type CoefficientMaker struct {
	sampleRate   float64
	blockSize    int
	blockSizeInv float64
	policy       InterpolationPolicy

	current  [NumCoeffs]float64
	target   [NumCoeffs]float64
	firstRun bool
}

// NewCoefficientMaker returns a maker with the given interpolation policy.
// SetSampleRateAndBlockSize must be called before the first MakeCoeffs.
func NewCoefficientMaker(policy InterpolationPolicy) *CoefficientMaker {
	return &CoefficientMaker{policy: policy, firstRun: true}
}

// SetSampleRateAndBlockSize configures the interpolation stepping. Called
// on activation and on sample-rate changes, never while processing.
func (m *CoefficientMaker) SetSampleRateAndBlockSize(sampleRate float64, blockSize int) {
	m.sampleRate = sampleRate
	m.blockSize = blockSize
	m.blockSizeInv = 1.0 / float64(blockSize)
}

// Reset zeroes the coefficient history and marks the next MakeCoeffs as a
// first run, so its targets apply immediately instead of ramping up from
// zero. Called together with State.Reset.
func (m *CoefficientMaker) Reset() {
	m.current = [NumCoeffs]float64{}
	m.target = [NumCoeffs]float64{}
	m.firstRun = true
}

// MakeCoeffs derives a new coefficient target from the control parameters.
// Call at most once per processing block; recomputing per sample would be
// correct but wastes the trigonometry on values the interpolation already
// tracks at block granularity.
func (m *CoefficientMaker) MakeCoeffs(cutoffNote, resonance float64, ft Type, st SubType) {
	switch ft {
	case TypeLadderLP:
		m.makeLadderCoeffs(cutoffNote, resonance)
	case TypeComb:
		m.makeCombCoeffs(cutoffNote, resonance)
	}
	_ = st // the subtype selects the evaluation tap, not the coefficients
}

func (m *CoefficientMaker) makeLadderCoeffs(cutoffNote, resonance float64) {
	fc := dspmath.Clamp(dspmath.NoteToFrequency(cutoffNote),
		minCutoffHz, maxCutoffFraction*m.sampleRate)
	g := math.Tan(math.Pi * fc / m.sampleRate)
	k := ladderFeedbackMax * dspmath.Clamp(resonance, 0, 1)

	m.target[coeffLadderAlpha] = g / (1 + g)
	m.target[coeffLadderFeedback] = k
	m.target[coeffLadderComp] = 1 + ladderCompPerFeedback*k
}

func (m *CoefficientMaker) makeCombCoeffs(cutoffNote, resonance float64) {
	fc := dspmath.Clamp(dspmath.NoteToFrequency(cutoffNote),
		minCutoffHz, maxCutoffFraction*m.sampleRate)
	delay := dspmath.Clamp(m.sampleRate/fc, minCombDelay, maxCombDelay)

	m.target[coeffCombDelay] = delay
	m.target[coeffCombFeedback] = combFeedbackMax * dspmath.Clamp(resonance, 0, 1)
}

// FromState pulls the state's current coefficient values back into the
// maker as the next interpolation start point. Lane 0 is representative;
// all lanes advance in lockstep.
func (m *CoefficientMaker) FromState(s *State) {
	if m.firstRun {
		return
	}
	for i := range m.current {
		m.current[i] = float64(s.Coeff[i][0])
	}
}

// UpdateState folds the maker's start values and freshly computed
// increments into every lane of the state. After this call the state's
// coefficient slots are fully consistent for the coming block.
func (m *CoefficientMaker) UpdateState(s *State) {
	immediate := m.firstRun || m.policy == InterpBlockStep
	for i := range m.target {
		var start, step float64
		if immediate {
			start = m.target[i]
		} else {
			start = m.current[i]
			step = (m.target[i] - m.current[i]) * m.blockSizeInv
		}
		for l := range NumLanes {
			s.Coeff[i][l] = float32(start)
			s.DCoeff[i][l] = float32(step)
		}
	}
	if m.firstRun {
		m.firstRun = false
		m.current = m.target
	}
}

// SampleRate returns the configured sample rate.
func (m *CoefficientMaker) SampleRate() float64 { return m.sampleRate }

// BlockSize returns the configured block size.
func (m *CoefficientMaker) BlockSize() int { return m.blockSize }

// Policy returns the interpolation policy.
func (m *CoefficientMaker) Policy() InterpolationPolicy { return m.policy }
