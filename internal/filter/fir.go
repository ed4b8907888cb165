package filter

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// FIR applies a designed FIR filter to a sample stream one sample at a
// time. Tap history persists across calls, so feeding a stream in blocks
// of any size produces the same output as feeding it whole.
type FIR struct {
	// coeffs holds the impulse response time-reversed, so the hot path
	// is a single contiguous dot product against the oldest-first history.
	coeffs []float64
	hist   []float64
}

// NewFIR creates a streaming filter from an impulse response.
// The filter keeps its own copy of the coefficients.
func NewFIR(coeffs []float64) (*FIR, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("empty coefficient set")
	}

	f := &FIR{
		coeffs: make([]float64, len(coeffs)),
		hist:   make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		f.coeffs[len(coeffs)-1-i] = c
	}

	return f, nil
}

// Filter pushes one input sample and returns the corresponding output
// sample y[n] = Σ h[k]·x[n-k].
func (f *FIR) Filter(x float64) float64 {
	copy(f.hist, f.hist[1:])
	f.hist[len(f.hist)-1] = x
	return f.DotHistory()
}

// DotHistory computes the output for the current history without
// consuming a new sample.
func (f *FIR) DotHistory() float64 {
	// Lengths are equal by construction.
	return f64.DotProductUnsafe(f.hist, f.coeffs)
}

// Len returns the filter length in taps.
func (f *FIR) Len() int {
	return len(f.coeffs)
}

// Reset clears the tap history.
func (f *FIR) Reset() {
	for i := range f.hist {
		f.hist[i] = 0
	}
}
