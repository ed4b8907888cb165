package sink

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Sink = (*Playback)(nil)
	_ Sink = (*WAVFile)(nil)
)

func TestEncodePCM16(t *testing.T) {
	block := []int16{0, 1, -1, 32767, -32768}
	buf := make([]byte, len(block)*bytesPerSample)
	encodePCM16(buf, block)

	want := []byte{
		0x00, 0x00,
		0x01, 0x00,
		0xFF, 0xFF,
		0xFF, 0x7F,
		0x00, 0x80,
	}
	assert.Equal(t, want, buf)
}

func TestNewPlaybackRejectsBadRate(t *testing.T) {
	_, err := NewPlayback(0)
	assert.Error(t, err)
	_, err = NewPlayback(-192000)
	assert.Error(t, err)
}

func TestNewWAVFileValidation(t *testing.T) {
	_, err := NewWAVFile(filepath.Join(t.TempDir(), "out.wav"), 0)
	assert.Error(t, err)

	_, err = NewWAVFile("/nonexistent/dir/out.wav", 192000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestWAVFileRoundTrip(t *testing.T) {
	const rate = 192000
	path := filepath.Join(t.TempDir(), "out.wav")

	s, err := NewWAVFile(path, rate)
	require.NoError(t, err)

	blocks := [][]int16{
		{100, -100, 200, -200},
		{32767, -32768},
	}
	var want []int
	for _, b := range blocks {
		require.NoError(t, s.Write(b))
		for _, v := range b {
			want = append(want, int(v))
		}
	}
	require.NoError(t, s.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile(), "produced file must be a valid WAV")

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, rate, buf.Format.SampleRate)
	assert.Equal(t, sinkChannels, buf.Format.NumChannels)
	assert.Equal(t, want, buf.Data)
}

func TestWAVFileCloseIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := NewWAVFile(path, 192000)
	require.NoError(t, err)

	require.NoError(t, s.Write([]int16{1, 2}))
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close(), "second close must be a no-op")
}

func TestWAVFileWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	s, err := NewWAVFile(path, 192000)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.ErrorIs(t, s.Write([]int16{1, 2}), ErrSinkClosed)
}
