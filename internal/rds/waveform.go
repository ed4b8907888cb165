package rds

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
)

// Biphase shaping constants. Each data bit becomes one band-limited
// Manchester symbol spanning three bit periods, so up to three symbols
// overlap at any instant.
const (
	symbolSpanBits = 3

	// shapingCutoffHz is the band edge of the 100% cosine-rolloff
	// data shaping filter, twice the bit rate (2375 Hz), keeping the
	// modulated subcarrier inside 57 kHz +/- 2.4 kHz.
	shapingCutoffHz = 2 * BitRate

	// shapingSingularityEps guards the removable singularity of the
	// shaping impulse at |t| = 1/(4F).
	shapingSingularityEps = 1e-9
)

// Modulator renders an encoder's bit stream as the biphase-shaped
// 57 kHz subcarrier. Symbols are overlap-added into a ring buffer one
// bit period apart; each output sample is then multiplied by the
// phase-locked carrier.
type Modulator struct {
	enc *Encoder

	samplesPerBit int
	symbol        []float64
	ring          []float64
	inPos         int
	outPos        int
	sinceBit      int

	carrier []float64
	phase   int
}

// NewModulator creates a subcarrier modulator at the given synthesis
// rate, which must be a positive multiple of BaseSampleRate so that
// carrier and bit clock stay on integer sample grids.
func NewModulator(enc *Encoder, sampleRate int) (*Modulator, error) {
	if enc == nil {
		return nil, fmt.Errorf("nil encoder")
	}
	if sampleRate <= 0 || sampleRate%BaseSampleRate != 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be a positive multiple of %d Hz)",
			sampleRate, BaseSampleRate)
	}

	multiple := sampleRate / BaseSampleRate
	spb := multiple * samplesPerBitBase

	m := &Modulator{
		enc:           enc,
		samplesPerBit: spb,
		symbol:        biphaseSymbol(spb, float64(sampleRate)),
		carrier:       sineTable(sampleRate / CarrierFrequency),
		sinceBit:      spb,
	}
	m.ring = make([]float64, spb+len(m.symbol))
	return m, nil
}

// NextSample returns the next subcarrier sample. The baseband waveform
// is normalized to unit symbol peak; the caller applies the mixing
// level.
func (m *Modulator) NextSample() float64 {
	if m.sinceBit == m.samplesPerBit {
		m.sinceBit = 0

		sign := 1.0
		if m.enc.NextBit() == 1 {
			sign = -1
		}
		idx := m.inPos
		for _, v := range m.symbol {
			m.ring[idx] += sign * v
			idx++
			if idx == len(m.ring) {
				idx = 0
			}
		}
		m.inPos += m.samplesPerBit
		if m.inPos >= len(m.ring) {
			m.inPos -= len(m.ring)
		}
	}

	s := m.ring[m.outPos]
	m.ring[m.outPos] = 0
	m.outPos++
	if m.outPos == len(m.ring) {
		m.outPos = 0
	}
	m.sinceBit++

	s *= m.carrier[m.phase]
	m.phase++
	if m.phase == len(m.carrier) {
		m.phase = 0
	}
	return s
}

// biphaseSymbol builds the band-limited Manchester symbol: the shaping
// impulse delayed by a quarter bit minus the same impulse advanced by
// a quarter bit, sampled over three bit periods and normalized to unit
// peak.
func biphaseSymbol(samplesPerBit int, sampleRate float64) []float64 {
	n := symbolSpanBits * samplesPerBit
	quarterBit := 1.0 / (4 * BitRate)

	sym := make([]float64, n)
	peak := 0.0
	for i := range sym {
		t := (float64(i) - float64(n)/2) / sampleRate
		sym[i] = shapingImpulse(t+quarterBit) - shapingImpulse(t-quarterBit)
		if a := math.Abs(sym[i]); a > peak {
			peak = a
		}
	}
	if peak > 0 {
		f64.Scale(sym, sym, 1/peak)
	}
	return sym
}

// shapingImpulse evaluates the impulse response of the data shaping
// filter H(f) = cos(pi*f/2F) band-limited to F = shapingCutoffHz:
//
//	h(t) = (4F/pi) * cos(2*pi*F*t) / (1 - (4Ft)^2)
//
// The removable singularity at |t| = 1/(4F) has the finite value F.
func shapingImpulse(t float64) float64 {
	x := 4 * shapingCutoffHz * t
	denom := 1 - x*x
	if math.Abs(denom) < shapingSingularityEps {
		return shapingCutoffHz
	}
	return 4 * shapingCutoffHz / math.Pi * math.Cos(2*math.Pi*shapingCutoffHz*t) / denom
}

// sineTable returns one full cycle of a unit sine sampled at n points.
func sineTable(n int) []float64 {
	table := make([]float64, n)
	for i := range table {
		table[i] = math.Sin(2 * math.Pi * float64(i) / float64(n))
	}
	return table
}
