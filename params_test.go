package filtergain

import (
	"bytes"
	"log"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(logger *log.Logger) *paramStore {
	ps := &paramStore{}
	ps.init(logger)
	return ps
}

// TestParams_Defaults verifies construction installs the declared
// defaults.
func TestParams_Defaults(t *testing.T) {
	ps := newStore(nil)

	assert.Equal(t, GainDefault, ps.get(ParamGain))
	assert.Equal(t, CutoffDefault, ps.get(ParamCutoff))
	assert.Equal(t, ResonanceDefault, ps.get(ParamResonance))
	assert.Equal(t, 1.0, ps.gainLinear.load(), "0 dB is unity gain")
	assert.False(t, ps.takeFilterDirty(), "fresh store is clean")
}

// TestParams_GainLinearInvariant verifies the derived linear gain always
// matches the dB transform of the clamped stored value.
func TestParams_GainLinearInvariant(t *testing.T) {
	testCases := []struct {
		name string
		db   float64
		want float64
	}{
		{"unity", 0, 1.0},
		{"minus_20", -20, 0.1},
		{"at_floor", -90, 0},
		{"below_floor", -90.5, 0},
		{"far_below_floor", -400, 0},
		{"max", 30, math.Pow(10, 1.5)},
		{"above_max_clamped", 45, math.Pow(10, 1.5)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ps := newStore(nil)
			ps.set(ParamGain, tc.db)

			// The raw dB value is stored as given; only the
			// derived factor clamps.
			assert.Equal(t, tc.db, ps.get(ParamGain))
			assert.InDelta(t, tc.want, ps.gainLinear.load(), 1e-12)
		})
	}
}

// TestParams_GainDoesNotDirtyFilter verifies the gain path never raises
// the filter recompute flag.
func TestParams_GainDoesNotDirtyFilter(t *testing.T) {
	ps := newStore(nil)
	ps.set(ParamGain, -6)
	assert.False(t, ps.takeFilterDirty())
}

// TestParams_DirtyFlagHandoff verifies cutoff/resonance writes raise the
// flag and that consuming it clears it exactly once.
func TestParams_DirtyFlagHandoff(t *testing.T) {
	ps := newStore(nil)

	ps.set(ParamCutoff, 5)
	require.True(t, ps.takeFilterDirty(), "cutoff write must raise the flag")
	assert.False(t, ps.takeFilterDirty(), "flag is consumed on read")

	ps.set(ParamResonance, 0.8)
	require.True(t, ps.takeFilterDirty(), "resonance write must raise the flag")

	// Multiple writes coalesce into one recompute.
	ps.set(ParamCutoff, 1)
	ps.set(ParamCutoff, 2)
	ps.set(ParamResonance, 0.1)
	assert.True(t, ps.takeFilterDirty())
	assert.False(t, ps.takeFilterDirty())
}

// TestParams_OutOfRangeIndex verifies unknown indices are inert.
func TestParams_OutOfRangeIndex(t *testing.T) {
	ps := newStore(nil)

	assert.Zero(t, ps.get(ParamCount))
	assert.Zero(t, ps.get(-1))

	ps.set(ParamCount, 123)
	ps.set(-1, 123)
	assert.False(t, ps.takeFilterDirty())
}

// TestParams_ControlPathDiagnostics verifies value changes emit through
// the configured logger, and that a nil logger is silent and safe.
func TestParams_ControlPathDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	ps := newStore(log.New(&buf, "", 0))

	ps.set(ParamGain, -6)
	ps.set(ParamCutoff, 0)
	ps.set(ParamResonance, 0.25)

	out := buf.String()
	assert.Contains(t, out, "gain: -6.00 dB")
	assert.Contains(t, out, "cutoff note: 0.00 (440.0 Hz)")
	assert.Contains(t, out, "resonance: 0.250")

	// Nil logger path must not panic.
	silent := newStore(nil)
	silent.set(ParamGain, 3)
}

// TestParameterInfos verifies the host-facing metadata table.
func TestParameterInfos(t *testing.T) {
	infos := ParameterInfos()
	require.Len(t, infos, ParamCount)

	for i, info := range infos {
		assert.Equal(t, i, info.Index, "metadata must be ordered by index")
		assert.True(t, info.Automatable)
		assert.Less(t, info.Min, info.Max)
		assert.GreaterOrEqual(t, info.Default, info.Min)
		assert.LessOrEqual(t, info.Default, info.Max)
	}

	assert.Equal(t, "dB", infos[ParamGain].Unit)
	assert.Equal(t, -90.0, infos[ParamGain].Min)
	assert.Equal(t, 30.0, infos[ParamGain].Max)
	assert.Equal(t, -12.0, infos[ParamCutoff].Default)
	assert.Equal(t, 0.5, infos[ParamResonance].Default)
}
