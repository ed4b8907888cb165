package source

import (
	"fmt"
	"io"
	"math"
	"time"
)

// ToneSource generates a mono sine wave. Used for alignment and level
// checks, and as a deterministic input in tests.
type ToneSource struct {
	freq      float64
	amplitude float64
	rate      int
	index     int64
	remaining int64 // samples left, -1 for endless
}

// NewTone creates an endless sine source.
func NewTone(freq, amplitude float64, sampleRate int) (*ToneSource, error) {
	return newTone(freq, amplitude, sampleRate, -1)
}

// NewTimedTone creates a sine source that ends after the given
// duration.
func NewTimedTone(freq, amplitude float64, sampleRate int, d time.Duration) (*ToneSource, error) {
	if d <= 0 {
		return nil, fmt.Errorf("invalid duration: %v (must be positive)", d)
	}
	return newTone(freq, amplitude, sampleRate, int64(d.Seconds()*float64(sampleRate)))
}

func newTone(freq, amplitude float64, sampleRate int, remaining int64) (*ToneSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}
	if freq <= 0 || freq >= float64(sampleRate)/2 {
		return nil, fmt.Errorf("invalid tone frequency: %f Hz (must be below Nyquist)", freq)
	}
	if amplitude < 0 || amplitude > 1 {
		return nil, fmt.Errorf("invalid amplitude: %f (must be in [0, 1])", amplitude)
	}
	return &ToneSource{
		freq:      freq,
		amplitude: amplitude,
		rate:      sampleRate,
		remaining: remaining,
	}, nil
}

// ReadBlock fills p with sine samples.
func (s *ToneSource) ReadBlock(p []float64) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}

	n := int64(len(p))
	if s.remaining > 0 && n > s.remaining {
		n = s.remaining
	}
	for i := int64(0); i < n; i++ {
		t := float64(s.index) / float64(s.rate)
		p[i] = s.amplitude * math.Sin(2*math.Pi*s.freq*t)
		s.index++
	}
	if s.remaining > 0 {
		s.remaining -= n
	}
	return int(n), nil
}

// SampleRate returns the configured sample rate in Hz.
func (s *ToneSource) SampleRate() int { return s.rate }

// Channels returns 1; tones are mono.
func (s *ToneSource) Channels() int { return 1 }

// Close is a no-op for synthetic sources.
func (s *ToneSource) Close() error { return nil }
