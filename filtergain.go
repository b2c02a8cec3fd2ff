package filtergain

import (
	"errors"
	"fmt"
	"log"

	"github.com/tphakala/simd/cpu"

	"github.com/Simon-L/go-filtergain/internal/quadfilter"
	"github.com/Simon-L/go-filtergain/internal/smooth"
)

// Processing constants.
const (
	// NumChannels is the stereo channel count. The left and right
	// channels occupy lanes 0 and 1 of the filter's lane group.
	NumChannels = 2

	laneLeft  = 0
	laneRight = 1

	// DefaultSmoothingTimeMs is the gain smoothing time constant used
	// when Config.SmoothingTimeMs is zero.
	DefaultSmoothingTimeMs = smooth.DefaultTimeConstantMs
)

// Config validation bounds.
const (
	minSampleRate = 8000.0
	maxSampleRate = 384000.0
	minBlockSize  = 1
	maxBlockSize  = 8192
)

// ErrInvalidConfig indicates invalid processor configuration.
var ErrInvalidConfig = errors.New("invalid processor configuration")

// Filter selection. These alias the evaluation package's types so callers
// outside the module can configure a processor.
type (
	// FilterType selects the filter family.
	FilterType = quadfilter.Type

	// FilterSubType selects the variant within a family.
	FilterSubType = quadfilter.SubType

	// InterpolationPolicy selects how coefficients move between blocks.
	InterpolationPolicy = quadfilter.InterpolationPolicy
)

// Filter families, variants and interpolation policies.
const (
	LadderLP = quadfilter.TypeLadderLP
	Comb     = quadfilter.TypeComb

	Ladder6  = quadfilter.Ladder6
	Ladder12 = quadfilter.Ladder12
	Ladder18 = quadfilter.Ladder18
	Ladder24 = quadfilter.Ladder24

	CombPositive = quadfilter.CombPositive
	CombNegative = quadfilter.CombNegative

	InterpPerSample = quadfilter.InterpPerSample
	InterpBlockStep = quadfilter.InterpBlockStep
)

// Config holds the processor configuration. The filter type and subtype
// are fixed for the processor's lifetime; sample rate may later change
// through SampleRateChanged while deactivated.
type Config struct {
	// SampleRate is the initial sample rate in Hz.
	SampleRate float64

	// BlockSize is the nominal processing block length in frames. Run
	// accepts shorter blocks; coefficient interpolation steps are sized
	// for this length.
	BlockSize int

	// FilterType and FilterSubType select the evaluation unit.
	FilterType    quadfilter.Type
	FilterSubType quadfilter.SubType

	// SmoothingTimeMs is the gain smoothing time constant in
	// milliseconds. Zero selects DefaultSmoothingTimeMs.
	SmoothingTimeMs float64

	// Interpolation selects the coefficient interpolation policy.
	// The zero value is per-sample interpolation.
	Interpolation quadfilter.InterpolationPolicy

	// Logger receives informational diagnostics from the control path
	// (parameter changes). Nil disables logging. The audio path never
	// logs.
	Logger *log.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.SampleRate < minSampleRate || c.SampleRate > maxSampleRate {
		return fmt.Errorf("%w: sample rate %v Hz out of range [%v, %v]",
			ErrInvalidConfig, c.SampleRate, minSampleRate, maxSampleRate)
	}
	if c.BlockSize < minBlockSize || c.BlockSize > maxBlockSize {
		return fmt.Errorf("%w: block size %d out of range [%d, %d]",
			ErrInvalidConfig, c.BlockSize, minBlockSize, maxBlockSize)
	}
	if c.SmoothingTimeMs < 0 {
		return fmt.Errorf("%w: negative smoothing time", ErrInvalidConfig)
	}
	return nil
}

// Processor is the block processor: it owns the parameter store, the gain
// smoother, the coefficient maker and the filter state, and orchestrates
// them once per audio block.
//
// Lifecycle: New → Activate → Run… → Deactivate → (Activate again or
// SampleRateChanged while deactivated). The host guarantees Run is never
// concurrent with Activate or SampleRateChanged and that Run calls are
// serialized; parameter Get/Set are safe from any context at any time.
// Calling Run before Activate is a host-contract violation with undefined
// results.
type Processor struct {
	cfg    Config
	params paramStore

	gain  *smooth.Smoother
	maker *quadfilter.CoefficientMaker
	state *quadfilter.State
	unit  quadfilter.ProcessFunc

	sampleRate float64
	activated  bool
}

// New creates a processor from the configuration. All state the audio
// path touches is allocated here; Run itself never allocates.
func New(cfg *Config) (*Processor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	unit, err := quadfilter.GetUnit(cfg.FilterType, cfg.FilterSubType)
	if err != nil {
		return nil, err
	}

	c := *cfg
	if c.SmoothingTimeMs == 0 {
		c.SmoothingTimeMs = DefaultSmoothingTimeMs
	}

	p := &Processor{
		cfg:        c,
		gain:       smooth.New(c.SmoothingTimeMs, c.SampleRate),
		maker:      quadfilter.NewCoefficientMaker(c.Interpolation),
		state:      quadfilter.NewState(),
		unit:       unit,
		sampleRate: c.SampleRate,
	}
	p.params.init(c.Logger)
	p.state.SetLaneActive(laneLeft, true)
	p.state.SetLaneActive(laneRight, true)
	return p, nil
}

// GetParameter returns the stored value of an automatable parameter.
// Safe from any context, including the audio thread.
func (p *Processor) GetParameter(index int) float64 {
	return p.params.get(index)
}

// SetParameter stores an automatable parameter value. Safe from any
// context. Gain recomputes its linear factor in the same call; cutoff and
// resonance defer coefficient recomputation to the next block.
func (p *Processor) SetParameter(index int, value float64) {
	p.params.set(index, value)
}

// Activate prepares the processor for Run calls: flushes the gain
// smoother, zeroes the filter state and coefficient history, configures
// interpolation stepping for the current rate and block size, and installs
// initial coefficients from the current parameters (applied immediately,
// not ramped).
func (p *Processor) Activate() {
	p.gain.Flush()
	p.state.Reset()
	p.maker.Reset()
	p.maker.SetSampleRateAndBlockSize(p.sampleRate, p.cfg.BlockSize)

	p.params.takeFilterDirty()
	p.maker.MakeCoeffs(p.params.get(ParamCutoff), p.params.get(ParamResonance),
		p.cfg.FilterType, p.cfg.FilterSubType)
	p.maker.UpdateState(p.state)

	p.activated = true
}

// Deactivate marks the processor inactive. The host must deactivate
// before calling SampleRateChanged.
func (p *Processor) Deactivate() {
	p.activated = false
}

// Activated reports whether the processor is between Activate and
// Deactivate.
func (p *Processor) Activated() bool {
	return p.activated
}

// SampleRateChanged installs a new sample rate. Only valid while
// deactivated (the host guarantees this). The gain smoother is retuned
// and all filter history is discarded; the next Activate installs fresh
// coefficients for the new rate.
func (p *Processor) SampleRateChanged(rate float64) {
	p.sampleRate = rate
	p.gain.SetSampleRate(rate)
	p.state.Reset()
	p.maker.Reset()
	p.maker.SetSampleRateAndBlockSize(rate, p.cfg.BlockSize)
}

// SampleRate returns the current sample rate.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// Run processes one audio block. inputs and outputs must each hold at
// least NumChannels slices of equal length no longer than the configured
// block size; violating that is a host-contract bug, as is calling Run
// before Activate.
//
// Once per call the filter coefficients are brought up to date: the
// previous block's final values are pulled back out of the state as the
// interpolation start, new targets are derived only if a filter parameter
// changed, and the per-sample increments are rebuilt. Then each frame, in
// increasing index order, pulls one smoothed gain value and one filtered
// lane group, scales and writes the outputs.
//
// Run performs no allocation, takes no locks, never blocks and never
// logs. Within one call, output frame i depends only on input frame i and
// filter history from frames 0..i-1 plus carry-over state, a strict
// sequential recurrence.
func (p *Processor) Run(inputs, outputs [][]float32) {
	inL, inR := inputs[laneLeft], inputs[laneRight]
	outL, outR := outputs[laneLeft], outputs[laneRight]

	if p.params.takeFilterDirty() {
		p.maker.FromState(p.state)
		p.maker.MakeCoeffs(p.params.get(ParamCutoff), p.params.get(ParamResonance),
			p.cfg.FilterType, p.cfg.FilterSubType)
		p.maker.UpdateState(p.state)
	} else {
		// Unchanged parameters: re-aim the ramp at the held target
		// so a ramp interrupted by a short block still converges.
		p.maker.FromState(p.state)
		p.maker.UpdateState(p.state)
	}

	for i := range inL {
		gain := float32(p.gain.Process(p.params.gainLinear.load()))
		y := p.unit(p.state, quadfilter.LaneVec{inL[i], inR[i]})
		outL[i] = y[laneLeft] * gain
		outR[i] = y[laneRight] * gain
	}
}

// Info describes the processor's runtime configuration.
type Info struct {
	// Filter names the evaluation unit, e.g. "ladder-lowpass/24dB".
	Filter string

	// SampleRate and BlockSize echo the active processing format.
	SampleRate float64
	BlockSize  int

	// SmoothingTimeMs is the gain smoothing time constant.
	SmoothingTimeMs float64

	// PerSampleInterpolation reports whether coefficients ramp per
	// sample or step at block boundaries.
	PerSampleInterpolation bool

	// SIMDType describes the SIMD instruction set available to the
	// lane math.
	SIMDType string
}

// GetInfo returns information about the processor.
func (p *Processor) GetInfo() Info {
	return Info{
		Filter: p.cfg.FilterType.String() + "/" +
			quadfilter.SubTypeName(p.cfg.FilterType, p.cfg.FilterSubType),
		SampleRate:             p.sampleRate,
		BlockSize:              p.cfg.BlockSize,
		SmoothingTimeMs:        p.cfg.SmoothingTimeMs,
		PerSampleInterpolation: p.cfg.Interpolation == quadfilter.InterpPerSample,
		SIMDType:               cpu.Info(),
	}
}
