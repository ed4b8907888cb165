// Package source provides block oriented audio inputs for the MPX
// generator: WAV, MP3 and FLAC file decoders plus synthetic tone and
// silence sources for testing and carrier-only operation.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Source is a block oriented audio input. ReadBlock fills p with
// interleaved samples normalized to [-1, 1] and returns the number of
// samples written, always a whole number of frames. Once the stream is
// exhausted it returns io.EOF.
type Source interface {
	ReadBlock(p []float64) (int, error)
	SampleRate() int
	Channels() int
	Close() error
}

// ErrUnsupportedFormat marks a file whose extension maps to no decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Open creates a source for the file at path, routed by extension.
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return OpenWAV(path)
	case ".mp3":
		return OpenMP3(path)
	case ".flac":
		return OpenFLAC(path)
	default:
		return nil, fmt.Errorf("%w: %q (supported: .wav, .mp3, .flac)",
			ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Sample normalization bounds per bit depth.
const (
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	maxInt16 = 32767
	maxInt24 = 8388607
	maxInt32 = 2147483647
)

// maxSampleValue returns the full-scale sample value for a bit depth.
func maxSampleValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}
