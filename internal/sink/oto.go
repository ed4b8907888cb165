package sink

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
)

// Playback streams PCM to the default audio device. A persistent
// player reads from an in-process pipe, so Write blocks until the
// device consumes the data; that backpressure paces the synthesis loop
// to real time.
type Playback struct {
	otoCtx     *oto.Context
	player     *oto.Player
	pipeReader *io.PipeReader
	pipeWriter *io.PipeWriter
	buf        []byte
}

// NewPlayback opens the default playback device for 16 bit stereo at
// the given sample rate and starts the player.
func NewPlayback(sampleRate int) (*Playback, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d Hz (must be positive)", sampleRate)
	}

	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: sinkChannels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create audio context: %w", err)
	}
	<-ready

	p := &Playback{otoCtx: otoCtx}
	p.pipeReader, p.pipeWriter = io.Pipe()
	p.player = otoCtx.NewPlayer(p.pipeReader)
	p.player.Play()
	return p, nil
}

// Write pushes one block to the device, blocking until consumed.
func (p *Playback) Write(block []int16) error {
	if p.pipeWriter == nil {
		return ErrSinkClosed
	}

	need := len(block) * bytesPerSample
	if cap(p.buf) < need {
		p.buf = make([]byte, need)
	}
	buf := p.buf[:need]
	encodePCM16(buf, block)

	if _, err := p.pipeWriter.Write(buf); err != nil {
		return fmt.Errorf("device write failed: %w", err)
	}
	return nil
}

// Close stops the player and suspends the audio context. Safe to call
// more than once.
func (p *Playback) Close() error {
	if p.pipeWriter != nil {
		_ = p.pipeWriter.Close()
		p.pipeWriter = nil
	}
	if p.player != nil {
		_ = p.player.Close()
		p.player = nil
	}
	if p.pipeReader != nil {
		_ = p.pipeReader.Close()
		p.pipeReader = nil
	}
	if p.otoCtx != nil {
		_ = p.otoCtx.Suspend()
		p.otoCtx = nil
	}
	return nil
}
