// Package sink provides the outputs fed by the MPX pipeline: a
// blocking PCM playback sink backed by oto and a WAV file sink for
// offline rendering. Both accept interleaved 16 bit stereo blocks.
package sink

import (
	"encoding/binary"
	"errors"
)

// Sink accepts interleaved stereo int16 blocks. Write may block until
// the output consumes the data; Close is safe to call more than once.
type Sink interface {
	Write(block []int16) error
	Close() error
}

// ErrSinkClosed is returned by Write after Close.
var ErrSinkClosed = errors.New("sink closed")

// Output format shared by both sinks.
const (
	sinkChannels   = 2
	bytesPerSample = 2
)

// encodePCM16 packs a block into little endian bytes. dst must hold
// len(block) * bytesPerSample bytes.
func encodePCM16(dst []byte, block []int16) {
	for i, v := range block {
		binary.LittleEndian.PutUint16(dst[i*bytesPerSample:], uint16(v))
	}
}
