package filtergain

import (
	"log"
	"math"
	"sync/atomic"

	"github.com/Simon-L/go-filtergain/internal/dspmath"
)

// Parameter indices. The host addresses automatable parameters by these
// values; they are stable across versions.
const (
	// ParamGain is the output gain in dB.
	ParamGain = iota

	// ParamCutoff is the filter cutoff as a note-relative pitch offset
	// in semitones (0 = 440 Hz).
	ParamCutoff

	// ParamResonance is the normalized filter resonance.
	ParamResonance

	// ParamCount is the number of automatable parameters.
	ParamCount
)

// Parameter ranges and defaults.
const (
	GainMinDB   = dspmath.MinGainDB
	GainMaxDB   = dspmath.MaxGainDB
	GainDefault = 0.0

	CutoffMinNote = -60.0
	CutoffMaxNote = 64.0
	CutoffDefault = -12.0

	ResonanceMin     = 0.0
	ResonanceMax     = 1.0
	ResonanceDefault = 0.5
)

// ParameterInfo describes one automatable parameter for host registration.
type ParameterInfo struct {
	Index       int
	Name        string
	Symbol      string
	Unit        string
	Min         float64
	Max         float64
	Default     float64
	Automatable bool
}

// ParameterInfos returns the metadata for every parameter, indexed by
// parameter index.
func ParameterInfos() []ParameterInfo {
	return []ParameterInfo{
		{ParamGain, "Gain", "gain", "dB", GainMinDB, GainMaxDB, GainDefault, true},
		{ParamCutoff, "Cutoff", "cutoff", "semitones", CutoffMinNote, CutoffMaxNote, CutoffDefault, true},
		{ParamResonance, "Resonance", "resonance", "", ResonanceMin, ResonanceMax, ResonanceDefault, true},
	}
}

// paramStore holds the automatable control values. Every field is a plain
// scalar behind an atomic 64-bit word, so reads and writes are safe from
// any context, including the audio thread, without locks or allocation.
//
// The gain value and its derived linear factor are both recomputed inside
// the same SetParameter call, so the audio thread never observes a gain/dB
// pair that is inconsistent beyond single-call granularity.
type paramStore struct {
	gainDB     atomicFloat
	gainLinear atomicFloat
	cutoffNote atomicFloat
	resonance  atomicFloat

	// filterDirty is the block-rate recompute handoff: set by cutoff and
	// resonance writes, consumed exactly once by the block processor at
	// the start of its per-block recompute.
	filterDirty atomic.Bool

	// logger receives informational diagnostics on control-path value
	// changes. Nil disables. Never touched from Run.
	logger *log.Logger
}

func (ps *paramStore) init(logger *log.Logger) {
	ps.logger = logger
	ps.gainDB.store(GainDefault)
	ps.gainLinear.store(dspmath.DBToLinear(GainDefault))
	ps.cutoffNote.store(CutoffDefault)
	ps.resonance.store(ResonanceDefault)
}

// get returns the stored value for a parameter index. Safe from any
// context; never blocks, never allocates. An out-of-range index is a
// programming error and returns 0.
func (ps *paramStore) get(index int) float64 {
	switch index {
	case ParamGain:
		return ps.gainDB.load()
	case ParamCutoff:
		return ps.cutoffNote.load()
	case ParamResonance:
		return ps.resonance.load()
	default:
		return 0
	}
}

// set stores a parameter value. Safe from any context, including the
// audio thread under parameter automation. The gain parameter recomputes
// its linear factor synchronously; cutoff and resonance only store the
// scalar and raise the dirty flag. Coefficient recomputation is deferred
// to the block processor's once-per-block step, never performed here.
func (ps *paramStore) set(index int, value float64) {
	switch index {
	case ParamGain:
		ps.gainDB.store(value)
		ps.gainLinear.store(dspmath.DBToLinear(dspmath.Clamp(value, GainMinDB, GainMaxDB)))
		ps.logf("gain: %.2f dB", value)
	case ParamCutoff:
		ps.cutoffNote.store(value)
		ps.filterDirty.Store(true)
		ps.logf("cutoff note: %.2f (%.1f Hz)", value, dspmath.NoteToFrequency(value))
	case ParamResonance:
		ps.resonance.store(value)
		ps.filterDirty.Store(true)
		ps.logf("resonance: %.3f", value)
	}
}

// takeFilterDirty consumes the recompute flag, returning whether any
// filter parameter changed since the last block.
func (ps *paramStore) takeFilterDirty() bool {
	return ps.filterDirty.Swap(false)
}

func (ps *paramStore) logf(format string, args ...any) {
	if ps.logger != nil {
		ps.logger.Printf(format, args...)
	}
}

// atomicFloat is a float64 stored in an atomic word via its bit pattern.
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat) store(v float64) {
	a.bits.Store(math.Float64bits(v))
}
