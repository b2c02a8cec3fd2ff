package quadfilter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	coeffSampleRate = 48000.0
	coeffBlockSize  = 64
)

func newPreparedMaker(policy InterpolationPolicy) *CoefficientMaker {
	m := NewCoefficientMaker(policy)
	m.SetSampleRateAndBlockSize(coeffSampleRate, coeffBlockSize)
	return m
}

// TestMaker_FirstRunAppliesImmediately verifies the first MakeCoeffs after
// a reset installs targets directly with zero increments, so activation
// does not ramp the filter up from silence coefficients.
func TestMaker_FirstRunAppliesImmediately(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)
	s := NewState()

	m.MakeCoeffs(-12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	require.False(t, s.CoefficientsZero())
	for l := range NumLanes {
		assert.Zero(t, s.DCoeff[coeffLadderAlpha][l],
			"first run must not install increments (lane %d)", l)
	}

	// All lanes receive identical values.
	for i := range NumCoeffs {
		for l := 1; l < NumLanes; l++ {
			assert.Equal(t, s.Coeff[i][0], s.Coeff[i][l])
		}
	}
}

// TestMaker_InterpolationReachesTarget verifies that after exactly one
// block of per-sample steps the state coefficient lands on the new target.
func TestMaker_InterpolationReachesTarget(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)
	s := NewState()

	m.MakeCoeffs(-12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)
	startAlpha := s.Coeff[coeffLadderAlpha][0]

	// Retarget to a higher cutoff and run one block of steps.
	m.FromState(s)
	m.MakeCoeffs(12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	for range coeffBlockSize {
		s.stepCoefficients()
	}

	endAlpha := s.Coeff[coeffLadderAlpha][0]
	assert.Greater(t, endAlpha, startAlpha, "higher cutoff means larger alpha")
	assert.InDelta(t, m.target[coeffLadderAlpha], float64(endAlpha), 1e-4,
		"coefficient should land on target after one block")
}

// TestMaker_PullBackContinuity verifies FromState makes the next block's
// ramp start where the previous block ended, not at a fixed baseline.
func TestMaker_PullBackContinuity(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)
	s := NewState()

	m.MakeCoeffs(-12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	// Begin ramping toward a new target but stop mid-block.
	m.FromState(s)
	m.MakeCoeffs(24, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)
	const partial = coeffBlockSize / 2
	for range partial {
		s.stepCoefficients()
	}
	midAlpha := s.Coeff[coeffLadderAlpha][0]

	// Next block: unchanged parameters. The ramp must resume from the
	// mid-block value, continuous to within one interpolation step.
	m.FromState(s)
	m.UpdateState(s)
	step := math.Abs(float64(s.DCoeff[coeffLadderAlpha][0]))
	assert.InDelta(t, float64(midAlpha), float64(s.Coeff[coeffLadderAlpha][0]), step+1e-7)

	// And it still converges onto the held target.
	for range coeffBlockSize {
		s.stepCoefficients()
	}
	assert.InDelta(t, m.target[coeffLadderAlpha], float64(s.Coeff[coeffLadderAlpha][0]), 1e-4)
}

// TestMaker_BlockStepPolicy verifies the step policy applies targets at
// block start with zero increments.
func TestMaker_BlockStepPolicy(t *testing.T) {
	m := newPreparedMaker(InterpBlockStep)
	s := NewState()

	m.MakeCoeffs(-12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	m.FromState(s)
	m.MakeCoeffs(12, 0.9, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	for i := range NumCoeffs {
		for l := range NumLanes {
			assert.Equal(t, float32(m.target[i]), s.Coeff[i][l])
			assert.Zero(t, s.DCoeff[i][l])
		}
	}
}

// TestMaker_LadderCoefficientRanges sanity-checks the derivation across
// the declared parameter domain.
func TestMaker_LadderCoefficientRanges(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)

	for _, note := range []float64{-60, -12, 0, 32, 64} {
		for _, res := range []float64{0, 0.5, 1} {
			m.MakeCoeffs(note, res, TypeLadderLP, Ladder24)

			alpha := m.target[coeffLadderAlpha]
			assert.Greater(t, alpha, 0.0, "note %v", note)
			assert.Less(t, alpha, 1.0, "note %v", note)

			k := m.target[coeffLadderFeedback]
			assert.GreaterOrEqual(t, k, 0.0)
			assert.LessOrEqual(t, k, ladderFeedbackMax)
		}
	}
}

// TestMaker_CombDelayBounds verifies the comb delay honors the delay-line
// guard bounds across the full cutoff range.
func TestMaker_CombDelayBounds(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)

	for _, note := range []float64{-60, -12, 0, 64} {
		m.MakeCoeffs(note, 0.5, TypeComb, CombPositive)
		d := m.target[coeffCombDelay]
		assert.GreaterOrEqual(t, d, float64(minCombDelay), "note %v", note)
		assert.LessOrEqual(t, d, float64(maxCombDelay), "note %v", note)
	}
}

// TestMaker_ResetRestoresFirstRun verifies Reset discards history so the
// next target applies immediately again.
func TestMaker_ResetRestoresFirstRun(t *testing.T) {
	m := newPreparedMaker(InterpPerSample)
	s := NewState()

	m.MakeCoeffs(-12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)
	m.FromState(s)
	m.MakeCoeffs(12, 0.5, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	m.Reset()
	s.Reset()
	m.MakeCoeffs(0, 0.2, TypeLadderLP, Ladder24)
	m.UpdateState(s)

	for l := range NumLanes {
		assert.Zero(t, s.DCoeff[coeffLadderAlpha][l])
	}
	assert.InDelta(t, m.target[coeffLadderAlpha], float64(s.Coeff[coeffLadderAlpha][0]), 1e-7)
}
