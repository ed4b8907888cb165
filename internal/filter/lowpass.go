// Package filter provides the audio-rate filters applied ahead of
// multiplexing: windowed-sinc low-pass design, streaming FIR application,
// and broadcast pre-emphasis.
package filter

import (
	"fmt"
	"math"

	"github.com/tphakala/simd/f64"
	"gonum.org/v1/gonum/dsp/window"
)

const (
	// Filter design constants
	minFilterTaps = 3
	maxFilterTaps = 8191

	// Sinc function constants
	sincZeroThreshold = 1e-10
)

// LowPassParams holds parameters for windowed-sinc low-pass design.
type LowPassParams struct {
	// NumTaps is the filter length (number of coefficients).
	// Must be odd so the filter is a symmetric linear-phase FIR.
	NumTaps int

	// CutoffFreq is the normalized cutoff frequency (0 to 0.5)
	// where 0.5 represents Nyquist (half the sample rate).
	CutoffFreq float64

	// Gain is the passband gain at DC (typically 1.0).
	Gain float64
}

// Validate checks if filter parameters are valid.
func (p *LowPassParams) Validate() error {
	if p.NumTaps < minFilterTaps {
		return fmt.Errorf("filter too short: %d taps (minimum %d)", p.NumTaps, minFilterTaps)
	}

	if p.NumTaps > maxFilterTaps {
		return fmt.Errorf("filter too long: %d taps (maximum %d)", p.NumTaps, maxFilterTaps)
	}

	if p.NumTaps%2 == 0 {
		return fmt.Errorf("filter length must be odd: %d taps", p.NumTaps)
	}

	if p.CutoffFreq <= 0 || p.CutoffFreq >= 0.5 {
		return fmt.Errorf("invalid cutoff frequency: %f (must be in (0, 0.5))", p.CutoffFreq)
	}

	if p.Gain <= 0 {
		return fmt.Errorf("invalid gain: %f (must be positive)", p.Gain)
	}

	return nil
}

// DesignLowPass designs a Hamming-windowed sinc low-pass FIR filter.
//
// Method:
//  1. Generate the ideal sinc impulse response for the cutoff
//  2. Truncate to the requested length
//  3. Apply a Hamming window to reduce Gibbs phenomenon
//  4. Normalize for the desired DC gain
//
// The resulting filter has linear phase (symmetric impulse response),
// which keeps the mono and stereo-difference paths time-aligned.
//
// Returns the filter coefficients (length = params.NumTaps) or an error
// if parameters are invalid.
func DesignLowPass(params LowPassParams) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	coeffs := make([]float64, params.NumTaps)
	center := float64(params.NumTaps-1) / 2

	for n := range coeffs {
		// Position relative to the filter center
		x := float64(n) - center

		// sinc: sin(2πfc·x) / (πx), with the x=0 limit of 2·fc
		if math.Abs(x) < sincZeroThreshold {
			coeffs[n] = 2 * params.CutoffFreq
		} else {
			coeffs[n] = math.Sin(2*math.Pi*params.CutoffFreq*x) / (math.Pi * x)
		}
	}

	window.Hamming(coeffs)

	// Normalize for the desired gain at DC.
	// Uses SIMD-accelerated sum and scale operations.
	sum := f64.Sum(coeffs)
	if math.Abs(sum) > sincZeroThreshold {
		f64.Scale(coeffs, coeffs, params.Gain/sum)
	}

	return coeffs, nil
}
