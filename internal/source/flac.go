package source

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mewkiz/flac"
)

// FLACSource streams normalized samples from a FLAC file. Decoded
// frames rarely line up with requested block sizes, so leftover
// samples from the current frame are carried between calls.
type FLACSource struct {
	file     *os.File
	stream   *flac.Stream
	rate     int
	channels int
	scale    float64

	frameBuf []float64
	framePos int
}

// OpenFLAC opens a FLAC file and parses its stream info.
func OpenFLAC(path string) (*FLACSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	stream, err := flac.New(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to decode FLAC: %w", err)
	}

	info := stream.Info
	return &FLACSource{
		file:     f,
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		scale:    1 / float64(int64(1)<<(info.BitsPerSample-1)-1),
	}, nil
}

// ReadBlock fills p with normalized interleaved samples, parsing as
// many FLAC frames as needed.
func (s *FLACSource) ReadBlock(p []float64) (int, error) {
	want := len(p) - len(p)%s.channels
	filled := 0

	for filled < want {
		if s.framePos == len(s.frameBuf) {
			if err := s.nextFrame(); err != nil {
				if errors.Is(err, io.EOF) && filled > 0 {
					return filled, nil
				}
				return filled, err
			}
		}
		n := copy(p[filled:want], s.frameBuf[s.framePos:])
		s.framePos += n
		filled += n
	}
	return filled, nil
}

// nextFrame decodes one FLAC frame into the interleaved carry buffer.
func (s *FLACSource) nextFrame() error {
	frame, err := s.stream.ParseNext()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.EOF
		}
		return fmt.Errorf("failed to parse FLAC frame: %w", err)
	}

	blockSize := int(frame.BlockSize)
	need := blockSize * s.channels
	if cap(s.frameBuf) < need {
		s.frameBuf = make([]float64, need)
	}
	s.frameBuf = s.frameBuf[:need]

	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < s.channels; ch++ {
			s.frameBuf[i*s.channels+ch] = float64(frame.Subframes[ch].Samples[i]) * s.scale
		}
	}
	s.framePos = 0
	return nil
}

// SampleRate returns the stream's native sample rate in Hz.
func (s *FLACSource) SampleRate() int { return s.rate }

// Channels returns the number of interleaved channels.
func (s *FLACSource) Channels() int { return s.channels }

// Close releases the underlying file.
func (s *FLACSource) Close() error { return s.file.Close() }
