package filter

import (
	"fmt"
	"math"
)

// Preemphasis boosts high audio frequencies ahead of FM modulation to
// compensate for the single-pole de-emphasis applied by receivers.
// It is the exact discrete inverse of that de-emphasis network:
//
//	p[n] = (s[n] - (1-α)·s[n-1]) / α, α = dt / (τ + dt)
//
// where τ is the network time constant for the configured corner
// frequency (τ = 1 / 2πf). Feeding the output through Deemphasis with
// the same corner recovers the input.
type Preemphasis struct {
	alpha float64
	prev  float64
}

// NewPreemphasis creates a pre-emphasis filter for the given corner
// frequency at the given sample rate.
func NewPreemphasis(cornerHz float64, sampleRate int) (*Preemphasis, error) {
	alpha, err := onePoleAlpha(cornerHz, sampleRate)
	if err != nil {
		return nil, err
	}
	return &Preemphasis{alpha: alpha}, nil
}

// Filter pushes one input sample and returns the pre-emphasized output.
func (p *Preemphasis) Filter(x float64) float64 {
	out := (x - (1-p.alpha)*p.prev) / p.alpha
	p.prev = x
	return out
}

// Reset clears the filter state.
func (p *Preemphasis) Reset() {
	p.prev = 0
}

// Deemphasis is the receiver-side single-pole low-pass network:
//
//	y[n] = y[n-1] + α·(x[n] - y[n-1])
//
// Provided for verification against the pre-emphasis path.
type Deemphasis struct {
	alpha float64
	prev  float64
}

// NewDeemphasis creates a de-emphasis filter for the given corner
// frequency at the given sample rate.
func NewDeemphasis(cornerHz float64, sampleRate int) (*Deemphasis, error) {
	alpha, err := onePoleAlpha(cornerHz, sampleRate)
	if err != nil {
		return nil, err
	}
	return &Deemphasis{alpha: alpha}, nil
}

// Filter pushes one input sample and returns the de-emphasized output.
func (d *Deemphasis) Filter(x float64) float64 {
	d.prev += d.alpha * (x - d.prev)
	return d.prev
}

// Reset clears the filter state.
func (d *Deemphasis) Reset() {
	d.prev = 0
}

func onePoleAlpha(cornerHz float64, sampleRate int) (float64, error) {
	if cornerHz <= 0 {
		return 0, fmt.Errorf("invalid corner frequency: %f Hz (must be positive)", cornerHz)
	}
	if sampleRate <= 0 {
		return 0, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}

	dt := 1.0 / float64(sampleRate)
	tau := 1.0 / (2 * math.Pi * cornerHz)
	return dt / (tau + dt), nil
}
