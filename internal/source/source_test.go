package source

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Compile-time interface checks for every source implementation.
var (
	_ Source = (*WAVSource)(nil)
	_ Source = (*MP3Source)(nil)
	_ Source = (*FLACSource)(nil)
	_ Source = (*ToneSource)(nil)
	_ Source = (*SilenceSource)(nil)
)

func TestOpenRoutesByExtension(t *testing.T) {
	_, err := Open("/nonexistent/audio.ogg")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Open("/nonexistent/audio")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	// Known extensions route to their decoder, which then fails on
	// the missing file rather than on the format.
	for _, name := range []string{"audio.wav", "audio.mp3", "audio.flac", "AUDIO.WAV"} {
		_, err = Open(filepath.Join("/nonexistent", name))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrUnsupportedFormat, "extension of %s should be recognized", name)
	}
}

func TestOpenWAVRejectsGarbage(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "invalid.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := OpenWAV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

// writeTestWAV creates a 16-bit WAV file from interleaved samples.
func writeTestWAV(t *testing.T, path string, rate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, channels, 1)
	buf := &audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestWAVSourceRoundTrip(t *testing.T) {
	const (
		rate     = 48000
		channels = 2
		frames   = 1000
	)

	data := make([]int, frames*channels)
	for i := 0; i < frames; i++ {
		data[i*channels] = 16000
		data[i*channels+1] = -8000
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	writeTestWAV(t, path, rate, channels, data)

	src, err := OpenWAV(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	assert.Equal(t, rate, src.SampleRate())
	assert.Equal(t, channels, src.Channels())

	var got []float64
	block := make([]float64, 256)
	for {
		n, err := src.ReadBlock(block)
		got = append(got, block[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.Zero(t, n%channels, "reads must be whole frames")
	}

	require.Len(t, got, frames*channels)
	for i, v := range got {
		want := float64(data[i]) / maxInt16
		require.InDelta(t, want, v, 1e-9, "sample %d", i)
	}
}

func TestWAVSourceHonorsOddBlockSize(t *testing.T) {
	const rate = 44100
	data := make([]int, 20) // 10 stereo frames
	path := filepath.Join(t.TempDir(), "short.wav")
	writeTestWAV(t, path, rate, 2, data)

	src, err := OpenWAV(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	// An odd-sized request must still read whole frames.
	block := make([]float64, 7)
	n, err := src.ReadBlock(block)
	require.NoError(t, err)
	assert.Equal(t, 6, n)
}

func TestToneSourceValidation(t *testing.T) {
	tests := []struct {
		name    string
		freq    float64
		amp     float64
		rate    int
		wantErr bool
	}{
		{"valid", 1000, 0.5, 48000, false},
		{"zero_freq", 0, 0.5, 48000, true},
		{"above_nyquist", 24000, 0.5, 48000, true},
		{"negative_amp", 1000, -0.1, 48000, true},
		{"amp_above_one", 1000, 1.5, 48000, true},
		{"zero_rate", 1000, 0.5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTone(tt.freq, tt.amp, tt.rate)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToneSourceWaveform(t *testing.T) {
	const (
		rate = 48000
		freq = 1000.0
		amp  = 0.5
	)
	src, err := NewTone(freq, amp, rate)
	require.NoError(t, err)

	block := make([]float64, 480)
	n, err := src.ReadBlock(block)
	require.NoError(t, err)
	require.Equal(t, len(block), n)

	for i, v := range block {
		want := amp * math.Sin(2*math.Pi*freq*float64(i)/rate)
		require.InDelta(t, want, v, 1e-12, "sample %d", i)
	}
}

// TestToneSourcePhaseContinuity verifies block boundaries do not reset
// the oscillator.
func TestToneSourcePhaseContinuity(t *testing.T) {
	const rate = 48000
	whole, err := NewTone(997, 1.0, rate)
	require.NoError(t, err)
	split, err := NewTone(997, 1.0, rate)
	require.NoError(t, err)

	big := make([]float64, 1024)
	_, err = whole.ReadBlock(big)
	require.NoError(t, err)

	small := make([]float64, 128)
	for off := 0; off < len(big); off += len(small) {
		_, err = split.ReadBlock(small)
		require.NoError(t, err)
		for i, v := range small {
			require.Equal(t, big[off+i], v, "streams diverged at sample %d", off+i)
		}
	}
}

func TestTimedToneEnds(t *testing.T) {
	const rate = 8000
	src, err := NewTimedTone(440, 1.0, rate, 100*time.Millisecond)
	require.NoError(t, err)

	var total int
	block := make([]float64, 256)
	for {
		n, err := src.ReadBlock(block)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, rate/10, total)
}

func TestSilenceSource(t *testing.T) {
	src, err := NewSilence(48000)
	require.NoError(t, err)
	assert.Equal(t, 1, src.Channels())

	block := make([]float64, 512)
	block[5] = 42 // must be overwritten
	n, err := src.ReadBlock(block)
	require.NoError(t, err)
	require.Equal(t, len(block), n)
	for i, v := range block {
		require.Zero(t, v, "sample %d", i)
	}
}

func TestTimedSilenceEnds(t *testing.T) {
	const rate = 8000
	src, err := NewTimedSilence(rate, 250*time.Millisecond)
	require.NoError(t, err)

	var total int
	block := make([]float64, 300)
	for {
		n, err := src.ReadBlock(block)
		total += n
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, rate/4, total)

	// EOF is sticky.
	n, err := src.ReadBlock(block)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}

func TestTimedSourceValidation(t *testing.T) {
	_, err := NewTimedSilence(48000, -time.Second)
	assert.Error(t, err)
	_, err = NewTimedTone(440, 1.0, 48000, 0)
	assert.Error(t, err)
	_, err = NewTimedSilence(0, time.Second)
	assert.Error(t, err)
}
