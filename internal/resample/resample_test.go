package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInRate  = 228000
	testOutRate = 192000
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		inRate  int
		outRate int
		wantErr error
	}{
		{"valid", testInRate, testOutRate, nil},
		{"identity", testInRate, testInRate, nil},
		{"zero_input", 0, testOutRate, ErrInvalidRate},
		{"negative_input", -1, testOutRate, ErrInvalidRate},
		{"zero_output", testInRate, 0, ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.inRate, tt.outRate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, c.Close())
		})
	}
}

func TestConverterRatio(t *testing.T) {
	c, err := New(testInRate, testOutRate)
	require.NoError(t, err)
	defer c.Close()

	assert.InDelta(t, float64(testOutRate)/float64(testInRate), c.Ratio(), 1e-12)
}

func TestConverterOutputLength(t *testing.T) {
	c, err := New(testInRate, testOutRate)
	require.NoError(t, err)
	defer c.Close()

	block := make([]float64, 1024)
	for i := range block {
		block[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / testInRate)
	}

	var in, out int
	for i := 0; i < 200; i++ {
		processed, err := c.Process(block)
		require.NoError(t, err)
		in += len(block)
		out += len(processed)
	}
	tail, err := c.Flush()
	require.NoError(t, err)
	out += len(tail)

	// Total output should track input scaled by the rate ratio, give
	// or take the filter transient at either end.
	want := float64(in) * c.Ratio()
	assert.InDelta(t, want, float64(out), 0.01*want,
		"cumulative output length should follow the rate ratio")
}

func TestConverterEmptyBlock(t *testing.T) {
	c, err := New(testInRate, testOutRate)
	require.NoError(t, err)
	defer c.Close()

	out, err := c.Process(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestConverterClosedSemantics(t *testing.T) {
	c, err := New(testInRate, testOutRate)
	require.NoError(t, err)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close(), "closing twice must be safe")

	_, err = c.Process(make([]float64, 16))
	assert.ErrorIs(t, err, ErrConverterClosed)

	_, err = c.Flush()
	assert.ErrorIs(t, err, ErrConverterClosed)

	assert.Zero(t, c.Latency())
}
