package pipeline

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// PostProcessor constants.
const (
	// DefaultVolume is the output volume in percent of full scale.
	DefaultVolume = 100

	percentDivisor = 100
	pcmFullScale   = 32767
	pcmMin         = -32768
	pcmMax         = 32767
)

// PostProcessor converts mono composite blocks to interleaved stereo
// PCM: volume scaling to the int16 range, hard clipping with a
// counter, and duplication of the single composite channel into both
// outputs. Buffers are reused between calls.
type PostProcessor struct {
	gain    float64
	scaled  []float64
	stereo  []float64
	pcm     []int16
	clipped uint64
}

// NewPostProcessor creates a post-processor with the given volume in
// percent of full scale. Zero selects DefaultVolume.
func NewPostProcessor(volumePercent float64) (*PostProcessor, error) {
	if volumePercent < 0 {
		return nil, fmt.Errorf("%w: volume %f%% (must not be negative)",
			ErrInvalidConfig, volumePercent)
	}
	if volumePercent == 0 {
		volumePercent = DefaultVolume
	}
	return &PostProcessor{
		gain: volumePercent / percentDivisor * pcmFullScale,
	}, nil
}

// Process converts one composite block. The returned slice is twice
// the input length and valid until the next call.
func (p *PostProcessor) Process(block []float64) []int16 {
	p.ensure(len(block))

	scaled := p.scaled[:len(block)]
	f64.Scale(scaled, block, p.gain)

	// Clipping never wraps; out-of-range samples saturate and count.
	for i, v := range scaled {
		switch {
		case v > pcmMax:
			scaled[i] = pcmMax
			p.clipped++
		case v < pcmMin:
			scaled[i] = pcmMin
			p.clipped++
		}
	}

	stereo := p.stereo[:2*len(block)]
	f64.Interleave2(stereo, scaled, scaled)

	pcm := p.pcm[:2*len(block)]
	for i, v := range stereo {
		pcm[i] = int16(v)
	}
	return pcm
}

// Clipped reports how many samples saturated so far.
func (p *PostProcessor) Clipped() uint64 {
	return p.clipped
}

func (p *PostProcessor) ensure(n int) {
	if cap(p.scaled) < n {
		p.scaled = make([]float64, n)
		p.stereo = make([]float64, 2*n)
		p.pcm = make([]int16, 2*n)
	}
}
