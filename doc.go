// Package filtergain implements the real-time signal path of an audio
// effect: a per-sample gain stage with smoothed parameter transitions
// composed with a resonant filter whose coefficients are recomputed once
// per audio block and interpolated per sample through a four-lane
// filter-state object.
//
// # Architecture
//
//	control thread                audio thread
//	SetParameter ──► store ──►  Run: recompute (block rate)
//	                              │   └─ coefficient maker → quad state
//	                              └─ per sample: smoothed gain × filter
//
// The parameter store is lock-free and may be written from any context,
// including the audio thread. Run performs no allocation, takes no locks
// and never blocks: everything it touches is pre-sized when the processor
// is constructed or activated.
//
// # Quick start
//
//	cfg := &filtergain.Config{
//	    SampleRate:    48000,
//	    BlockSize:     512,
//	    FilterType:    filtergain.LadderLP,
//	    FilterSubType: filtergain.Ladder24,
//	}
//	p, err := filtergain.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	p.Activate()
//
//	// audio callback
//	p.Run(inputs, outputs)
//
//	// automation, any thread
//	p.SetParameter(filtergain.ParamGain, -6)
//
// # Lifecycle
//
// The host drives the processor through a fixed call ordering:
// construction, Activate, any number of Run calls, Deactivate, and
// optionally SampleRateChanged while deactivated. Run is never invoked
// concurrently with Activate or SampleRateChanged, and Run calls are
// serialized. Violating that ordering is a host-contract bug and is not
// defended against.
//
// On every activation and sample-rate change the filter state is zeroed:
// registers, delay lines and write pointers all reset, so no history
// leaks across activation boundaries.
//
// # Coefficient interpolation
//
// Filter coefficients are recomputed at most once per block from the
// current cutoff and resonance, then interpolated linearly across the
// block inside the evaluation function (per-sample policy, the default)
// or applied as a step at block start. Each block's ramp starts from the
// previous block's final values, pulled back out of the filter state, so
// unchanged parameters never cause a discontinuity at block boundaries.
package filtergain
