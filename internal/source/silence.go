package source

import (
	"fmt"
	"io"
	"time"
)

// SilenceSource produces zero samples, endless or for a fixed
// duration. A silent input keeps the pilot and RDS subcarriers on the
// air without program audio.
type SilenceSource struct {
	rate      int
	remaining int64 // samples left, -1 for endless
}

// NewSilence creates an endless silence source.
func NewSilence(sampleRate int) (*SilenceSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}
	return &SilenceSource{rate: sampleRate, remaining: -1}, nil
}

// NewTimedSilence creates a silence source that ends after the given
// duration.
func NewTimedSilence(sampleRate int, d time.Duration) (*SilenceSource, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}
	if d <= 0 {
		return nil, fmt.Errorf("invalid duration: %v (must be positive)", d)
	}
	return &SilenceSource{
		rate:      sampleRate,
		remaining: int64(d.Seconds() * float64(sampleRate)),
	}, nil
}

// ReadBlock fills p with zeros.
func (s *SilenceSource) ReadBlock(p []float64) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}

	n := int64(len(p))
	if s.remaining > 0 && n > s.remaining {
		n = s.remaining
	}
	for i := int64(0); i < n; i++ {
		p[i] = 0
	}
	if s.remaining > 0 {
		s.remaining -= n
	}
	return int(n), nil
}

// SampleRate returns the configured sample rate in Hz.
func (s *SilenceSource) SampleRate() int { return s.rate }

// Channels returns 1; silence is mono.
func (s *SilenceSource) Channels() int { return 1 }

// Close is a no-op for synthetic sources.
func (s *SilenceSource) Close() error { return nil }
