package source

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// MP3 decoder output format: always 16 bit little endian stereo at the
// stream's native sample rate.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
	mp3FrameBytes     = mp3Channels * mp3BytesPerSample
)

// MP3Source streams normalized samples from an MPEG layer 3 file.
type MP3Source struct {
	file    *os.File
	decoder *mp3.Decoder
	buf     []byte
}

// OpenMP3 opens an MP3 file and prepares its decoder.
func OpenMP3(path string) (*MP3Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode MP3: %w", err)
	}

	return &MP3Source{file: f, decoder: decoder}, nil
}

// ReadBlock fills p with normalized interleaved stereo samples.
func (s *MP3Source) ReadBlock(p []float64) (int, error) {
	want := len(p) / mp3Channels * mp3FrameBytes
	if want == 0 {
		return 0, nil
	}

	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	buf := s.buf[:want]

	n, err := io.ReadFull(s.decoder, buf)
	switch {
	case errors.Is(err, io.EOF):
		return 0, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// Short final read, converted below.
	case err != nil:
		return 0, fmt.Errorf("failed to read audio data: %w", err)
	}

	samples := n / mp3BytesPerSample
	samples -= samples % mp3Channels
	if samples == 0 {
		return 0, io.EOF
	}
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(buf[i*mp3BytesPerSample:]))
		p[i] = float64(v) / maxInt16
	}
	return samples, nil
}

// SampleRate returns the stream's native sample rate in Hz.
func (s *MP3Source) SampleRate() int { return s.decoder.SampleRate() }

// Channels returns 2; the decoder always produces stereo.
func (s *MP3Source) Channels() int { return mp3Channels }

// Close releases the underlying file.
func (s *MP3Source) Close() error { return s.file.Close() }
