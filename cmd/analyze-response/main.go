// Command analyze-response measures the magnitude response of a filter
// configuration by rendering an impulse through the processor and taking
// its FFT.
//
// Usage:
//
//	analyze-response -filter ladder24 -cutoff -12 -res 0.7
//	analyze-response -filter comb+ -cutoff 0 -rate 96000
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"

	filtergain "github.com/Simon-L/go-filtergain"
	"github.com/Simon-L/go-filtergain/internal/dspmath"
)

const (
	// Analysis parameters
	defaultRate      = 48000.0
	defaultFFTLen    = 8192
	defaultRows      = 30
	analysisBlock    = 512
	impulseAmplitude = 0.25 // small enough to keep the feedback saturation near-linear

	// Gain smoothing settle time before the impulse is injected.
	warmupSeconds = 0.2

	// Display range
	minDisplayHz = 20.0
	barScaleDB   = 2.0 // one bar character per 2 dB above the bar floor
	barFloorDB   = -60.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	filterName := flag.String("filter", "ladder24", "Filter: ladder6, ladder12, ladder18, ladder24, comb+, comb-")
	cutoff := flag.Float64("cutoff", filtergain.CutoffDefault, "Cutoff as note offset in semitones (0 = 440 Hz)")
	resonance := flag.Float64("res", filtergain.ResonanceDefault, "Resonance [0, 1]")
	rate := flag.Float64("rate", defaultRate, "Sample rate in Hz")
	fftLen := flag.Int("n", defaultFFTLen, "Impulse response length / FFT size")
	rows := flag.Int("points", defaultRows, "Number of log-spaced frequency rows")
	flag.Parse()

	ft, st, err := parseFilter(*filterName)
	if err != nil {
		return err
	}

	proc, err := filtergain.New(&filtergain.Config{
		SampleRate:    *rate,
		BlockSize:     analysisBlock,
		FilterType:    ft,
		FilterSubType: st,
	})
	if err != nil {
		return err
	}
	proc.SetParameter(filtergain.ParamCutoff, *cutoff)
	proc.SetParameter(filtergain.ParamResonance, *resonance)
	proc.Activate()

	response := impulseResponse(proc, *fftLen)

	fft := fourier.NewFFT(*fftLen)
	coeffs := fft.Coefficients(nil, response)

	fmt.Println("=== Filter Magnitude Response ===")
	fmt.Printf("Filter:    %s\n", proc.GetInfo().Filter)
	fmt.Printf("Cutoff:    %.2f st (%.1f Hz)\n", *cutoff, dspmath.NoteToFrequency(*cutoff))
	fmt.Printf("Resonance: %.3f\n", *resonance)
	fmt.Printf("Rate:      %.0f Hz, FFT %d\n\n", *rate, *fftLen)

	printResponseTable(coeffs, *rate, *fftLen, *rows)
	printSummary(coeffs, *rate, *fftLen)
	return nil
}

// impulseResponse drives the processor with a unit-scaled impulse and
// returns n output samples. The gain smoother is settled on silence first
// so the measured response is the filter's alone.
func impulseResponse(proc *filtergain.Processor, n int) []float64 {
	inL := make([]float32, analysisBlock)
	inR := make([]float32, analysisBlock)
	outL := make([]float32, analysisBlock)
	outR := make([]float32, analysisBlock)
	inputs := [][]float32{inL, inR}
	outputs := [][]float32{outL, outR}

	warmupBlocks := int(math.Ceil(warmupSeconds * proc.SampleRate() / analysisBlock))
	for range warmupBlocks {
		proc.Run(inputs, outputs)
	}

	response := make([]float64, 0, n)
	inL[0] = impulseAmplitude
	inR[0] = impulseAmplitude
	for len(response) < n {
		proc.Run(inputs, outputs)
		inL[0] = 0
		inR[0] = 0
		for _, s := range outL {
			if len(response) == n {
				break
			}
			response = append(response, float64(s)/impulseAmplitude)
		}
	}
	return response
}

// printResponseTable prints log-spaced magnitude rows from minDisplayHz to
// Nyquist with a crude bar rendering.
func printResponseTable(coeffs []complex128, rate float64, fftLen, rows int) {
	nyquist := rate / 2
	logMin := math.Log10(minDisplayHz)
	logMax := math.Log10(nyquist)

	fmt.Printf("%10s  %9s\n", "Freq (Hz)", "Mag (dB)")
	for r := range rows {
		frac := float64(r) / float64(rows-1)
		freq := math.Pow(10, logMin+frac*(logMax-logMin))
		bin := int(math.Round(freq * float64(fftLen) / rate))
		if bin >= len(coeffs) {
			bin = len(coeffs) - 1
		}
		db := magnitudeDB(coeffs[bin])
		fmt.Printf("%10.1f  %9.2f  %s\n", freq, db, bar(db))
	}
	fmt.Println()
}

// printSummary reports the peak bin and the -3 dB point relative to the
// low-frequency passband level.
func printSummary(coeffs []complex128, rate float64, fftLen int) {
	peakDB := math.Inf(-1)
	peakBin := 0
	for bin := 1; bin < len(coeffs); bin++ {
		if db := magnitudeDB(coeffs[bin]); db > peakDB {
			peakDB = db
			peakBin = bin
		}
	}
	fmt.Printf("Peak: %.2f dB at %.1f Hz\n", peakDB, binFreq(peakBin, rate, fftLen))

	refDB := magnitudeDB(coeffs[1])
	for bin := 1; bin < len(coeffs); bin++ {
		if magnitudeDB(coeffs[bin]) <= refDB-3 {
			fmt.Printf("-3 dB (re %.2f dB passband): %.1f Hz\n", refDB, binFreq(bin, rate, fftLen))
			return
		}
	}
	fmt.Println("-3 dB point: none below Nyquist")
}

// magnitudeDB converts a bin to decibels. Zero magnitude reports the
// conversion's silence floor rather than negative infinity.
func magnitudeDB(c complex128) float64 {
	return dspmath.LinearToDB(cmplx.Abs(c))
}

func binFreq(bin int, rate float64, fftLen int) float64 {
	return float64(bin) * rate / float64(fftLen)
}

func bar(db float64) string {
	n := int((db - barFloorDB) / barScaleDB)
	if n < 0 {
		n = 0
	}
	return strings.Repeat("#", n)
}

// parseFilter maps a CLI filter name to a type/subtype pair.
func parseFilter(name string) (filtergain.FilterType, filtergain.FilterSubType, error) {
	switch strings.ToLower(name) {
	case "ladder6":
		return filtergain.LadderLP, filtergain.Ladder6, nil
	case "ladder12":
		return filtergain.LadderLP, filtergain.Ladder12, nil
	case "ladder18":
		return filtergain.LadderLP, filtergain.Ladder18, nil
	case "ladder24":
		return filtergain.LadderLP, filtergain.Ladder24, nil
	case "comb+":
		return filtergain.Comb, filtergain.CombPositive, nil
	case "comb-":
		return filtergain.Comb, filtergain.CombNegative, nil
	default:
		return 0, 0, fmt.Errorf("unknown filter %q (ladder6, ladder12, ladder18, ladder24, comb+, comb-)", name)
	}
}
