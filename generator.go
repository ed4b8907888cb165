package mpx

import (
	"errors"
	"fmt"
	"io"

	"github.com/tphakala/go-fm-mpx/internal/filter"
	"github.com/tphakala/go-fm-mpx/internal/rds"
)

// Generator synthesizes the composite FM multiplex signal sample by
// sample: the band-limited mono sum, the 19 kHz pilot, the 38 kHz DSB
// stereo difference when the source is stereo, and the optional 57 kHz
// RDS subcarrier. All oscillator, filter and encoder state persists
// across calls, so pulling the stream in blocks of any size produces
// identical output.
type Generator struct {
	source AudioSource
	rate   int

	audioLevel float64
	pilotLevel float64
	rdsLevel   float64

	pilot  *carrier
	stereo *carrier
	enc    *rds.Encoder
	rdsMod *rds.Modulator

	// Input pull state. The source runs at its own rate; a fractional
	// position accumulator advances by ratio per synthesis tick and
	// pulls the next frame each time it crosses one (zero-order hold).
	channels  int
	stereoIn  bool
	ratio     float64
	pos       float64
	held      []float64
	inBuf     []float64
	inLen     int
	inPos     int
	preemph   []*filter.Preemphasis
	lowpass   []*filter.FIR
	srcDone   bool
	drainLeft int

	err    error
	closed bool
}

// New creates a generator for the given configuration.
func New(config Config) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	rate := config.SynthesisRate
	if rate == 0 {
		rate = DefaultSynthesisRate
	}
	scale := rate / rds.BaseSampleRate

	g := &Generator{
		source:     config.Source,
		rate:       rate,
		audioLevel: levelOrDefault(config.AudioLevel, DefaultAudioLevel),
		pilotLevel: levelOrDefault(config.PilotLevel, DefaultPilotLevel),
		rdsLevel:   levelOrDefault(config.RDSLevel, DefaultRDSLevel),
		pilot:      newCarrier(pilotSamplesPerCycle * scale),
	}

	if config.RDS {
		enc, err := rds.NewEncoder(config.Station)
		if err != nil {
			return nil, err
		}
		mod, err := rds.NewModulator(enc, rate)
		if err != nil {
			return nil, err
		}
		g.enc = enc
		g.rdsMod = mod
	}

	if config.Source != nil {
		if err := g.setupAudioPath(config); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (g *Generator) setupAudioPath(config Config) error {
	inRate := config.Source.SampleRate()
	g.channels = config.Source.Channels()
	g.stereoIn = g.channels == 2

	// Start the accumulator so the very first tick pulls a frame.
	g.ratio = float64(inRate) / float64(g.rate)
	g.pos = 1 - g.ratio

	g.held = make([]float64, g.channels)
	g.inBuf = make([]float64, inputBlockSize)

	if g.stereoIn {
		scale := g.rate / rds.BaseSampleRate
		g.stereo = newCarrier(stereoSamplesPerCycle * scale)
	}

	cutoff := float64(audioCutoffHz)
	if inRate < minFullCutoffRate {
		cutoff = lowRateCutoffFraction * float64(inRate)
	}
	coeffs, err := filter.DesignLowPass(filter.LowPassParams{
		NumTaps:    audioFilterTaps,
		CutoffFreq: cutoff / float64(g.rate),
		Gain:       1.0,
	})
	if err != nil {
		return fmt.Errorf("failed to design audio filter: %w", err)
	}
	g.lowpass = make([]*filter.FIR, g.channels)
	for ch := range g.lowpass {
		f, err := filter.NewFIR(coeffs)
		if err != nil {
			return fmt.Errorf("failed to create audio filter: %w", err)
		}
		g.lowpass[ch] = f
	}

	if config.PreemphasisCutoff > 0 {
		g.preemph = make([]*filter.Preemphasis, g.channels)
		for ch := range g.preemph {
			p, err := filter.NewPreemphasis(config.PreemphasisCutoff, inRate)
			if err != nil {
				return fmt.Errorf("failed to create pre-emphasis filter: %w", err)
			}
			g.preemph[ch] = p
		}
	}

	return nil
}

// SampleRate returns the synthesis rate in Hz.
func (g *Generator) SampleRate() int {
	return g.rate
}

// GetSamples fills buf with composite samples and returns the count
// written. At the end of the audio stream it drains the filter tail,
// then returns io.EOF; a carrier-only generator never ends. Errors
// are sticky.
func (g *Generator) GetSamples(buf []float64) (int, error) {
	if g.err != nil {
		return 0, g.err
	}

	n := 0
	for n < len(buf) {
		s, err := g.nextSample()
		if err != nil {
			g.err = err
			if n > 0 && errors.Is(err, io.EOF) {
				return n, nil
			}
			return n, err
		}
		buf[n] = s
		n++
	}
	return n, nil
}

// QueueUpdate stages a station change for the next RDS group boundary.
func (g *Generator) QueueUpdate(u StationUpdate) error {
	if g.enc == nil {
		return ErrRDSDisabled
	}
	return g.enc.QueueUpdate(u)
}

// Close releases the audio source. Safe to call more than once.
func (g *Generator) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	if g.source != nil {
		return g.source.Close()
	}
	return nil
}

// nextSample synthesizes one composite sample.
func (g *Generator) nextSample() (float64, error) {
	var mono, side float64
	if g.source != nil {
		if err := g.advanceInput(); err != nil {
			return 0, err
		}
		left := g.lowpass[0].Filter(g.held[0])
		if g.stereoIn {
			right := g.lowpass[1].Filter(g.held[1])
			mono = (left + right) / 2
			side = (left - right) / 2
		} else {
			mono = left
		}
	}

	out := g.audioLevel * mono
	if g.stereoIn {
		out += g.audioLevel * side * g.stereo.Next()
	}
	out += g.pilotLevel * g.pilot.Next()
	if g.rdsMod != nil {
		out += g.rdsLevel * g.rdsMod.NextSample()
	}
	return out, nil
}

// advanceInput moves the fractional input position one synthesis tick
// forward, pulling source frames as the position crosses whole input
// samples. After the source ends the held frame is silence and the
// low-pass history drains before the stream reports io.EOF.
func (g *Generator) advanceInput() error {
	if g.srcDone {
		if g.drainLeft == 0 {
			return io.EOF
		}
		g.drainLeft--
		return nil
	}

	g.pos += g.ratio
	for g.pos >= 1 {
		g.pos--
		if err := g.pullFrame(); err != nil {
			if !errors.Is(err, io.EOF) {
				return fmt.Errorf("audio source: %w", err)
			}
			g.srcDone = true
			// This tick already pushes one silence sample through the
			// low-pass, so the flush needs one fewer.
			g.drainLeft = audioFilterTaps - 1
			for ch := range g.held {
				g.held[ch] = 0
			}
			return nil
		}
	}
	return nil
}

// pullFrame loads the next input frame into the hold registers,
// applying pre-emphasis at the input rate.
func (g *Generator) pullFrame() error {
	if g.inPos >= g.inLen {
		n, err := g.source.ReadBlock(g.inBuf)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.EOF
		}
		g.inLen = n
		g.inPos = 0
	}

	for ch := 0; ch < g.channels; ch++ {
		s := g.inBuf[g.inPos+ch]
		if g.preemph != nil {
			s = g.preemph[ch].Filter(s)
		}
		g.held[ch] = s
	}
	g.inPos += g.channels
	return nil
}
