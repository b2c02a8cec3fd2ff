package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/simd/f32"

	filtergain "github.com/Simon-L/go-filtergain"
)

// Sample format constants
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0
)

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

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file     *os.File
	decoder  *wav.Decoder
	rate     int
	channels int
	bitDepth int
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, verbose bool) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	if verbose {
		log.Printf("Input format: %d Hz, %d channels, %d-bit",
			format.SampleRate, format.NumChannels, decoder.BitDepth)
	}

	return &wavInputInfo{
		file:     inputFile,
		decoder:  decoder,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		bitDepth: int(decoder.BitDepth),
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// renderBuffers holds the preallocated conversion and processing buffers.
// Mono input is duplicated into both processor lanes and only the left
// lane's output is written back.
type renderBuffers struct {
	intBuffer *audio.IntBuffer
	outBuffer *audio.IntBuffer
	channels  int

	inL, inR    []float32
	outL, outR  []float32
	interleaved []float32

	maxVal    float64
	invMaxVal float64
}

func newRenderBuffers(input *wavInputInfo, blockSize int) *renderBuffers {
	maxVal := maxSampleValue(input.bitDepth)
	format := &audio.Format{
		NumChannels: input.channels,
		SampleRate:  input.rate,
	}
	return &renderBuffers{
		intBuffer:   &audio.IntBuffer{Data: make([]int, chunkFrames*input.channels), Format: format},
		outBuffer:   &audio.IntBuffer{Format: format, SourceBitDepth: input.bitDepth},
		channels:    input.channels,
		inL:         make([]float32, blockSize),
		inR:         make([]float32, blockSize),
		outL:        make([]float32, blockSize),
		outR:        make([]float32, blockSize),
		interleaved: make([]float32, blockSize*stereoChannels),
		maxVal:      maxVal,
		invMaxVal:   1.0 / maxVal,
	}
}

func (b *renderBuffers) inputs(n int) [][]float32 {
	return [][]float32{b.inL[:n], b.inR[:n]}
}

func (b *renderBuffers) outputs(n int) [][]float32 {
	return [][]float32{b.outL[:n], b.outR[:n]}
}

// deinterleave normalizes n frames starting at frame offset into the lane
// buffers.
func (b *renderBuffers) deinterleave(chunk []int, offset, n int) {
	if b.channels == monoChannels {
		src := chunk[offset : offset+n]
		for i, s := range src {
			v := float32(float64(s) * b.invMaxVal)
			b.inL[i] = v
			b.inR[i] = v
		}
		return
	}
	src := chunk[offset*stereoChannels:]
	for i := range n {
		b.inL[i] = float32(float64(src[i*stereoChannels]) * b.invMaxVal)
		b.inR[i] = float32(float64(src[i*stereoChannels+1]) * b.invMaxVal)
	}
}

// interleave clamps and denormalizes n processed frames back into the
// chunk at frame offset.
func (b *renderBuffers) interleave(chunk []int, offset, n int) {
	if b.channels == monoChannels {
		dst := chunk[offset : offset+n]
		for i := range n {
			dst[i] = denormalize(b.outL[i], b.maxVal)
		}
		return
	}
	f32.Interleave2(b.interleaved[:n*stereoChannels], b.outL[:n], b.outR[:n])
	dst := chunk[offset*stereoChannels:]
	for i, s := range b.interleaved[:n*stereoChannels] {
		dst[i] = denormalize(s, b.maxVal)
	}
}

func denormalize(s float32, maxVal float64) int {
	v := float64(s)
	if v > 1.0 {
		v = 1.0
	} else if v < -1.0 {
		v = -1.0
	}
	return int(v * maxVal)
}

func maxSampleValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}
