package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource streams normalized samples from a RIFF/WAVE file.
type WAVSource struct {
	file      *os.File
	decoder   *wav.Decoder
	buf       *audio.IntBuffer
	rate      int
	channels  int
	invMaxVal float64
}

// OpenWAV opens and validates a WAV file.
func OpenWAV(path string) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		_ = f.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	return &WAVSource{
		file:      f,
		decoder:   decoder,
		buf:       &audio.IntBuffer{Format: format},
		rate:      format.SampleRate,
		channels:  format.NumChannels,
		invMaxVal: 1 / maxSampleValue(int(decoder.BitDepth)),
	}, nil
}

// ReadBlock fills p with normalized interleaved samples. The decoder
// signals a clean end of stream with a zero-length read, which is
// mapped to io.EOF.
func (s *WAVSource) ReadBlock(p []float64) (int, error) {
	want := len(p) - len(p)%s.channels
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf.Data) < want {
		s.buf.Data = make([]int, want)
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.decoder.PCMBuffer(s.buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	// Whole frames only; a torn final frame is dropped.
	n -= n % s.channels
	for i := 0; i < n; i++ {
		p[i] = float64(s.buf.Data[i]) * s.invMaxVal
	}
	return n, nil
}

// SampleRate returns the file's native sample rate in Hz.
func (s *WAVSource) SampleRate() int { return s.rate }

// Channels returns the number of interleaved channels.
func (s *WAVSource) Channels() int { return s.channels }

// Close releases the underlying file.
func (s *WAVSource) Close() error { return s.file.Close() }
